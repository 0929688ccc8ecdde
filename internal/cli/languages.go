package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andywolf/loctreemap/internal/config"
	"github.com/andywolf/loctreemap/internal/language"
	"github.com/andywolf/loctreemap/internal/layout"
	"github.com/andywolf/loctreemap/internal/pipeline"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List known languages and whether they are enabled",
	Long: `List the language registry after applying the configured registry file
and per-language settings. Enabled languages show their legend color.

Example:
  loctreemap languages
  loctreemap languages --enabled`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		reg, err := pipeline.ResolveRegistry(cfg, nil)
		if err != nil {
			return err
		}
		palette, err := cfg.Palette()
		if err != nil {
			return fmt.Errorf("invalid colors: %w", err)
		}
		onlyEnabled, _ := cmd.Flags().GetBool("enabled")
		return listLanguages(cmd.OutOrStdout(), reg, palette, onlyEnabled)
	},
}

func init() {
	languagesCmd.Flags().Bool("enabled", false, "Only list enabled languages")
	rootCmd.AddCommand(languagesCmd)
}

func listLanguages(w io.Writer, reg *language.Registry, palette *layout.Palette, onlyEnabled bool) error {
	classifier, err := language.NewClassifier(reg, palette.Len())
	if err != nil {
		return err
	}
	colors := make(map[string]string)
	for _, c := range classifier.Legend(reg) {
		colors[c.Language] = palette.ColorAt(c.ColorIndex)
	}

	for _, lang := range reg.Languages {
		if onlyEnabled && !lang.Enabled {
			continue
		}
		status := "disabled"
		if lang.Enabled {
			status = "enabled " + colors[lang.Name]
		}
		fmt.Fprintf(w, "%-12s %-16s %s\n", lang.Name, status, strings.Join(lang.Extensions, " "))
	}
	if len(reg.Extensions()) == 0 {
		fmt.Fprintln(w, "\nNo languages selected. Enable at least one language in settings.")
	}
	return nil
}
