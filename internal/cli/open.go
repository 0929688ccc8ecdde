package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andywolf/loctreemap/internal/config"
	"github.com/andywolf/loctreemap/internal/pipeline"
	"github.com/andywolf/loctreemap/internal/render"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Resolve a click on a written treemap to a navigation event",
	Long: `Hit-test a previously generated treemap at canvas coordinates and print the
navigation event a click there would post to the host, as JSON. --reveal
resolves the click to the enclosing folder, like an alt-click in the document.
--event accepts a message the document already posted instead of coordinates.
With --events-dir (or output.events_dir) the event is also appended to the
events file.

Example:
  loctreemap open --x 120 --y 48
  loctreemap open --x 120 --y 48 --reveal
  loctreemap open --layout build/treemap.json --x 10 --y 10 --events-dir .loctreemap
  loctreemap open --event '{"command":"openFile","path":"src/util.go","line":1}'`,
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().String("layout", "", "JSON layout written next to the HTML document (default: from output.path)")
	openCmd.Flags().Float64("x", 0, "Canvas x coordinate")
	openCmd.Flags().Float64("y", 0, "Canvas y coordinate")
	openCmd.Flags().Bool("reveal", false, "Reveal the folder enclosing the cell instead of opening it")
	openCmd.Flags().String("event", "", "Navigation message posted by the document, as JSON")
	openCmd.Flags().String("events-dir", "", "Append the event to the events file in this directory")
}

func runOpen(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	message, _ := flags.GetString("event")
	if message == "" && !(flags.Changed("x") && flags.Changed("y")) {
		return fmt.Errorf("either --x and --y or --event is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	layoutFlag, _ := flags.GetString("layout")
	eventsFlag, _ := flags.GetString("events-dir")
	layoutPath, eventsDir := openPaths(cfg, layoutFlag, eventsFlag)

	if message != "" {
		return openMessage(cmd.OutOrStdout(), []byte(message), layoutPath, eventsDir)
	}
	x, _ := flags.GetFloat64("x")
	y, _ := flags.GetFloat64("y")
	reveal, _ := flags.GetBool("reveal")
	return openAt(cmd.OutOrStdout(), layoutPath, x, y, reveal, eventsDir)
}

// openPaths returns the layout file and events directory, preferring the
// explicit flag values and otherwise resolving the configured paths the way
// generate does.
func openPaths(cfg *config.Config, layoutFlag, eventsFlag string) (string, string) {
	layoutPath := layoutFlag
	if layoutPath == "" {
		layoutPath = render.LayoutPath(cfg.OutputFile())
	}
	eventsDir := eventsFlag
	if eventsDir == "" {
		eventsDir = cfg.EventsDir()
	}
	return layoutPath, eventsDir
}

// openAt prints the navigation event at (x, y) of the layout at path and
// records it when eventsDir is set.
func openAt(w io.Writer, path string, x, y float64, reveal bool, eventsDir string) error {
	doc, err := render.LoadDocument(path)
	if err != nil {
		return err
	}
	hit := doc.HitTest
	if reveal {
		hit = doc.RevealAt
	}
	p, ok := hit(x, y)
	if !ok {
		return fmt.Errorf("no cell at (%g, %g) in %s", x, y, path)
	}
	return emitNavigation(w, p.Event, doc.RunID, eventsDir)
}

// openMessage validates a message posted by the document and records it
// against the run of the layout at path, when that layout exists.
func openMessage(w io.Writer, message []byte, path, eventsDir string) error {
	nav, err := render.ParseEvent(message)
	if err != nil {
		return err
	}
	runID := ""
	if doc, err := render.LoadDocument(path); err == nil {
		if _, ok := doc.Find(nav.Path); !ok {
			return fmt.Errorf("%s is not part of the treemap in %s", nav.Path, path)
		}
		runID = doc.RunID
	}
	return emitNavigation(w, nav, runID, eventsDir)
}

func emitNavigation(w io.Writer, nav render.NavigationEvent, runID, eventsDir string) error {
	data, err := json.Marshal(nav)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	fmt.Fprintln(w, string(data))

	if eventsDir != "" {
		if err := pipeline.RecordNavigation(eventsDir, runID, nav); err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
	}
	return nil
}
