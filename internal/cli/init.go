package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/loctreemap/internal/config"
	"github.com/andywolf/loctreemap/internal/language"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize project configuration",
	Long: `Initialize loctreemap configuration for the current project.

This creates a .loctreemap.yaml file listing every known language with its
default enabled state, plus the scan, layout and output defaults.

Example:
  loctreemap init
  loctreemap init --enable go,typescript --entire-repo`,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringSlice("enable", nil, "Languages to enable in addition to the defaults")
	initCmd.Flags().Bool("entire-repo", false, "Scan dependency and build directories too")
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

const configHeader = `# loctreemap configuration
# Languages set to false are not counted. Relative output paths resolve
# against the scanned root.

`

func initProject(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(".", config.FileName)

	force, _ := cmd.Flags().GetBool("force")
	enable, _ := cmd.Flags().GetStringSlice("enable")
	entireRepo, _ := cmd.Flags().GetBool("entire-repo")

	if err := writeStarterConfig(configPath, force, enable, entireRepo); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", configPath)
	printNextSteps(out)
	return nil
}

// writeStarterConfig writes a config file with the built-in defaults and
// every registry language listed under languages.
func writeStarterConfig(path string, force bool, enable []string, entireRepo bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	reg, _, err := language.Default()
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Scan.EntireRepo = entireRepo
	// Workers default to the CPU count of whoever runs the scan.
	cfg.Scan.Workers = 0
	cfg.Scan.Root = ""
	cfg.Languages = make(map[string]bool, len(reg.Languages))
	for _, lang := range reg.Languages {
		cfg.Languages[strings.ToLower(lang.Name)] = lang.Enabled
	}
	for _, name := range enable {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := reg.Lookup(key); !ok {
			return fmt.Errorf("unknown language: %s (run 'loctreemap languages' for the list)", name)
		}
		cfg.Languages[key] = true
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func printNextSteps(w io.Writer) {
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. Enable the languages your project uses")
	fmt.Fprintln(w, "  2. Add exclude patterns for generated code")
	fmt.Fprintln(w, "  3. Run 'loctreemap generate' to write the treemap")
}
