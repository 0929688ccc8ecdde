package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andywolf/loctreemap/internal/cloud/gcp"
	"github.com/andywolf/loctreemap/internal/config"
	"github.com/andywolf/loctreemap/internal/pipeline"
	"github.com/andywolf/loctreemap/internal/tree"
)

var generateCmd = &cobra.Command{
	Use:   "generate [root]",
	Short: "Scan a repository and write its treemap",
	Long: `Scan a directory tree, count lines per enabled language and write a
self-contained HTML treemap (plus a JSON layout for hosts that hit-test
themselves). The document goes to .vscode/LOC-Treemap/treemap.html under the
scanned root unless --output says otherwise.

Example:
  loctreemap generate
  loctreemap generate ../service --enable go --disable powershell,csharp
  loctreemap generate --algorithm slice-and-dice --width 1600 --height 900`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("entire-repo", false, "Scan everything below the root, including dependency and build directories")
	cmd.Flags().Bool("include-dot-folders", false, "Descend into folders whose name starts with a dot")
	cmd.Flags().StringSlice("exclude", nil, "Glob patterns to exclude (e.g. '**/testdata/**')")
	cmd.Flags().StringSlice("enable", nil, "Languages to enable (comma-separated)")
	cmd.Flags().StringSlice("disable", nil, "Languages to disable (comma-separated)")
	cmd.Flags().String("algorithm", "", "Layout algorithm (squarified, slice-and-dice)")
	cmd.Flags().Float64("width", 0, "Canvas width in pixels")
	cmd.Flags().Float64("height", 0, "Canvas height in pixels")
	cmd.Flags().StringP("output", "o", "", "HTML output path (relative paths resolve against the root)")
	cmd.Flags().String("events-dir", "", "Directory for the JSONL events file")
	cmd.Flags().Int("workers", 0, "Concurrent line counters (default: one per CPU)")
	cmd.Flags().Bool("dry-run", false, "Scan and lay out without writing the document")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, stopping scan...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyGenerateFlags(cmd, cfg, args); err != nil {
		return err
	}

	logger := gcp.NewLogger(ctx, gcp.LoggerConfig{
		ProjectID: cfg.Logging.GCPProject,
		LogID:     cfg.Logging.LogID,
		Verbose:   cfg.Logging.Verbose,
	}, os.Stderr)
	defer func() { _ = logger.Close() }()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	res, err := pipeline.Run(ctx, cfg, logger, pipeline.Options{DryRun: dryRun})
	if err != nil {
		var empty *pipeline.EmptyResultError
		if errors.As(err, &empty) {
			logger.Warning(err.Error())
		} else {
			logger.Error(err.Error())
		}
		return err
	}

	printSummary(cmd.OutOrStdout(), res)
	return nil
}

// applyGenerateFlags overlays command-line flags onto cfg.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	flags := cmd.Flags()

	if len(args) == 1 {
		cfg.Scan.Root = args[0]
	}
	if flags.Changed("entire-repo") {
		cfg.Scan.EntireRepo, _ = flags.GetBool("entire-repo")
	}
	if flags.Changed("include-dot-folders") {
		include, _ := flags.GetBool("include-dot-folders")
		cfg.Scan.IgnoreDotFolders = !include
	}
	if exclude, _ := flags.GetStringSlice("exclude"); len(exclude) > 0 {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, exclude...)
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers, _ = flags.GetInt("workers")
	}

	enable, _ := flags.GetStringSlice("enable")
	disable, _ := flags.GetStringSlice("disable")
	if len(enable)+len(disable) > 0 && cfg.Languages == nil {
		cfg.Languages = make(map[string]bool)
	}
	for _, name := range enable {
		cfg.Languages[strings.ToLower(strings.TrimSpace(name))] = true
	}
	for _, name := range disable {
		cfg.Languages[strings.ToLower(strings.TrimSpace(name))] = false
	}

	if algo, _ := flags.GetString("algorithm"); algo != "" {
		cfg.Layout.Algorithm = algo
	}
	if flags.Changed("width") {
		cfg.Canvas.Width, _ = flags.GetFloat64("width")
	}
	if flags.Changed("height") {
		cfg.Canvas.Height, _ = flags.GetFloat64("height")
	}
	if out, _ := flags.GetString("output"); out != "" {
		cfg.Output.Path = out
	}
	if dir, _ := flags.GetString("events-dir"); dir != "" {
		cfg.Output.EventsDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	files := len(tree.Files(res.Root))
	fmt.Fprintf(w, "Run ID: %s\n", res.RunID)
	fmt.Fprintf(w, "Files:  %s\n", humanize.Comma(int64(files)))
	fmt.Fprintf(w, "Lines:  %s\n", res.Document.TotalLabel)
	for _, e := range res.Document.Legend {
		fmt.Fprintf(w, "  %-12s %s\n", e.Language, e.Label)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "Skipped: %d (see log for details)\n", len(res.Warnings))
	}
	if res.OutputPath != "" {
		fmt.Fprintf(w, "\nTreemap written to %s\n", res.OutputPath)
	} else {
		fmt.Fprintln(w, "\nDry run - no document written")
	}
	if res.EventsPath != "" {
		fmt.Fprintf(w, "Events: %s\n", res.EventsPath)
	}
}
