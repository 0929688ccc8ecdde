package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andywolf/loctreemap/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including commit hash and build date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(version.Get(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal version: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		if full, _ := cmd.Flags().GetBool("full"); full {
			fmt.Fprintln(out, version.Full())
		} else {
			fmt.Fprintln(out, version.Info())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("full", false, "print verbose version information")
	versionCmd.Flags().Bool("json", false, "print version information as JSON")
	rootCmd.AddCommand(versionCmd)
}
