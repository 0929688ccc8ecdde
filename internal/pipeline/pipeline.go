// Package pipeline runs a treemap generation end to end: language
// resolution, scan, aggregation, layout and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/andywolf/loctreemap/internal/cloud/gcp"
	"github.com/andywolf/loctreemap/internal/config"
	"github.com/andywolf/loctreemap/internal/events"
	"github.com/andywolf/loctreemap/internal/language"
	"github.com/andywolf/loctreemap/internal/layout"
	"github.com/andywolf/loctreemap/internal/render"
	"github.com/andywolf/loctreemap/internal/scanner"
	"github.com/andywolf/loctreemap/internal/tree"
)

// layoutTolerance is the relative error allowed when verifying areas.
const layoutTolerance = 1e-6

// Result is a completed run.
type Result struct {
	RunID    string
	Root     *tree.Node
	Document *render.Document
	Warnings []scanner.Warning
	// OutputPath is the written HTML document, empty when not written.
	OutputPath string
	// EventsPath is the JSONL events file, empty when events are disabled.
	EventsPath string
}

// Options adjusts a run without changing its configuration.
type Options struct {
	// DryRun skips writing the document.
	DryRun bool
}

// Run generates the treemap described by cfg. Terminal failures return a
// *ConfigError, *EmptyResultError or *layout.InvariantViolation and write
// no document. Per-file problems are returned as Result.Warnings.
func Run(ctx context.Context, cfg *config.Config, logger gcp.Logger, opts ...Options) (*Result, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if cfg == nil {
		return nil, &ConfigError{Err: errors.New("configuration is required")}
	}
	if logger == nil {
		logger = gcp.NewFallbackLogger(os.Stderr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	rootAbs, err := filepath.Abs(cfg.Scan.Root)
	if err != nil {
		return nil, &ConfigError{Field: "scan.root", Err: err}
	}
	if fi, err := os.Stat(rootAbs); err != nil {
		return nil, &ConfigError{Field: "scan.root", Err: err}
	} else if !fi.IsDir() {
		return nil, &ConfigError{Field: "scan.root", Err: fmt.Errorf("%s is not a directory", rootAbs)}
	}

	runID := uuid.NewString()
	logger.SetRunID(runID)

	sink, err := openSink(config.ResolvePath(rootAbs, cfg.Output.EventsDir))
	if err != nil {
		return nil, &ConfigError{Field: "output.events_dir", Err: err}
	}
	if sink != nil {
		defer func() {
			if cerr := sink.Close(); cerr != nil {
				logger.Warning(fmt.Sprintf("failed to close events file: %v", cerr))
			}
		}()
	}

	res, err := run(ctx, cfg, rootAbs, runID, logger, sink, o)
	if err != nil {
		if sink != nil {
			_ = sink.Write(events.Event{RunID: runID, Type: events.EventError, Message: err.Error()})
		}
		return nil, err
	}
	if sink != nil {
		res.EventsPath = sink.Path()
	}
	return res, nil
}

func run(ctx context.Context, cfg *config.Config, rootAbs, runID string, logger gcp.Logger, sink *events.FileSink, o Options) (*Result, error) {
	reg, err := ResolveRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	exts := reg.Extensions()
	if len(exts) == 0 {
		return nil, &EmptyResultError{Err: ErrNoLanguages}
	}

	palette, err := cfg.Palette()
	if err != nil {
		return nil, &ConfigError{Field: "colors", Err: err}
	}
	classifier, err := language.NewClassifier(reg, palette.Len())
	if err != nil {
		return nil, &ConfigError{Field: "languages", Err: err}
	}

	logger.Log(gcp.SeverityDebug, "scanning", map[string]interface{}{
		"root":       rootAbs,
		"extensions": exts,
	})
	scan, err := scanner.New(rootAbs, scanner.Options{
		Extensions:       exts,
		ScanEntireRepo:   cfg.Scan.EntireRepo,
		IgnoreDotFolders: cfg.Scan.IgnoreDotFolders,
		Exclude:          cfg.Scan.Exclude,
		Workers:          cfg.Scan.Workers,
		Classifier:       classifier,
	}).Scan(ctx)
	if err != nil {
		if scan == nil {
			return nil, &ConfigError{Field: "scan.root", Err: err}
		}
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	for _, w := range scan.Warnings {
		logger.Log(gcp.SeverityWarning, "skipped during scan", map[string]interface{}{
			"path":    w.Path,
			"kind":    string(w.Kind),
			"message": w.Message,
		})
		if sink != nil {
			if err := sink.Write(events.FromWarning(runID, w)); err != nil {
				logger.Warning(fmt.Sprintf("failed to record warning: %v", err))
			}
		}
	}

	if scan.Empty() {
		return nil, &EmptyResultError{Root: rootAbs, Err: ErrNoFiles}
	}

	root := scan.Root
	tree.Aggregate(root)

	algo, err := cfg.Algorithm()
	if err != nil {
		return nil, &ConfigError{Field: "layout.algorithm", Err: err}
	}
	layout.Layout(root, tree.Rect{W: cfg.Canvas.Width, H: cfg.Canvas.Height}, layout.Options{Algorithm: algo})
	if err := layout.Verify(root, layoutTolerance); err != nil {
		return nil, err
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, err
	}
	var legend []render.LegendItem
	for _, c := range classifier.Legend(reg) {
		legend = append(legend, render.LegendItem{Language: c.Language, ColorIndex: c.ColorIndex})
	}
	doc, err := renderer.Render(root, render.Options{
		Palette: palette,
		Legend:  legend,
		Title:   root.Name,
		RunID:   runID,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Root:     root,
		Document: doc,
		Warnings: scan.Warnings,
	}
	if o.DryRun {
		return result, nil
	}

	out := config.ResolvePath(rootAbs, cfg.Output.Path)
	if result.OutputPath, err = render.WriteFiles(out, doc); err != nil {
		return nil, err
	}

	logger.Log(gcp.SeverityInfo, "treemap written", map[string]interface{}{
		"path":      result.OutputPath,
		"files":     scan.Files,
		"cells":     tree.Count(root),
		"languages": tree.Languages(root),
		"lines":     humanize.Comma(int64(root.LineCount)),
		"warnings":  len(scan.Warnings),
	})
	if sink != nil {
		ev := events.Event{
			RunID: runID,
			Type:  events.EventRunCompleted,
			Path:  result.OutputPath,
			Files: scan.Files,
			Lines: root.LineCount,
		}
		if err := sink.Write(ev); err != nil {
			logger.Warning(fmt.Sprintf("failed to record completion: %v", err))
		}
	}
	return result, nil
}

// ResolveRegistry merges the built-in registry with the configured registry
// file and applies the per-language enabled settings.
func ResolveRegistry(cfg *config.Config, logger gcp.Logger) (*language.Registry, error) {
	reg, warnings, err := language.Default()
	if err != nil {
		return nil, err
	}
	if cfg.Registry != "" {
		user, userWarnings, err := language.LoadFile(cfg.Registry)
		if err != nil {
			return nil, &ConfigError{Field: "registry", Err: err}
		}
		warnings = append(warnings, userWarnings...)
		reg = reg.Merge(user)
	}
	if logger != nil {
		for _, w := range warnings {
			logger.Warning(w)
		}
	}
	return reg.WithEnabled(cfg.Languages), nil
}

// Navigate maps a click at canvas coordinates to the navigation event of
// the deepest node under it. With revealParent set the click resolves to
// the folder enclosing that node, as an alt-click does in the document.
func Navigate(root *tree.Node, x, y float64, revealParent bool) (render.NavigationEvent, bool) {
	chain := layout.HitPath(root, x, y)
	if len(chain) == 0 {
		return render.NavigationEvent{}, false
	}
	n := chain[len(chain)-1]
	if revealParent && len(chain) > 1 {
		n = chain[len(chain)-2]
	}
	return render.EventFor(n), true
}

// RecordNavigation validates a navigation request and appends it to the
// events file in dir. runID, when set, must be a run identifier issued by Run.
func RecordNavigation(dir, runID string, nav render.NavigationEvent) error {
	if err := nav.Validate(); err != nil {
		return err
	}
	if runID != "" {
		if _, err := uuid.Parse(runID); err != nil {
			return fmt.Errorf("invalid run ID %q: %w", runID, err)
		}
	}
	sink, err := events.NewFileSink(dir)
	if err != nil {
		return err
	}
	if err := sink.Write(events.FromNavigation(runID, nav)); err != nil {
		_ = sink.Close()
		return err
	}
	return sink.Close()
}

func openSink(dir string) (*events.FileSink, error) {
	if dir == "" {
		return nil, nil
	}
	return events.NewFileSink(dir)
}
