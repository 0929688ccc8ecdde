package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andywolf/loctreemap/internal/config"
	"github.com/andywolf/loctreemap/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recorded run events",
	Long: `Print events from the JSONL events file written by generate and open.

Example:
  loctreemap events --latest
  loctreemap events --run 0b6f1c1e-3f0a-4d5e-9b8a-2f1f7f2d9c11
  loctreemap events --type open_file,reveal_in_explorer --json`,
	Args: cobra.NoArgs,
	RunE: showEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().String("events-dir", "", "Directory holding the events file (default: from output.events_dir)")
	eventsCmd.Flags().String("run", "", "Only show events of this run ID")
	eventsCmd.Flags().Bool("latest", false, "Only show events of the most recent run")
	eventsCmd.Flags().StringSlice("type", nil, "Event types to show (comma-separated)")
	eventsCmd.Flags().Bool("json", false, "Print raw JSON lines")
}

func showEvents(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	dir, _ := cmd.Flags().GetString("events-dir")
	if dir == "" {
		dir = cfg.EventsDir()
	}
	if dir == "" {
		return fmt.Errorf("no events directory: set output.events_dir or pass --events-dir")
	}

	names, _ := cmd.Flags().GetStringSlice("type")
	types, err := events.ParseTypes(names)
	if err != nil {
		return err
	}
	runID, _ := cmd.Flags().GetString("run")
	latest, _ := cmd.Flags().GetBool("latest")
	asJSON, _ := cmd.Flags().GetBool("json")

	q := events.Query{RunID: runID, Types: types, Latest: latest}
	return printEvents(cmd.OutOrStdout(), filepath.Join(dir, events.DefaultFilename), q, asJSON)
}

func printEvents(w io.Writer, path string, q events.Query, asJSON bool) error {
	all, err := events.ReadEvents(path)
	if err != nil {
		return err
	}
	selected := q.Select(all)
	if len(selected) == 0 {
		fmt.Fprintln(w, "No matching events.")
		return nil
	}

	for _, ev := range selected {
		if asJSON {
			data, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(w, string(data))
			continue
		}
		fmt.Fprintf(w, "[%s] %-18s %s\n", ev.Timestamp.Local().Format("15:04:05"), ev.Type, describeEvent(ev))
	}
	return nil
}

func describeEvent(ev events.Event) string {
	switch ev.Type {
	case events.EventScanWarning:
		return fmt.Sprintf("%s: %s (%s)", ev.Path, ev.Message, ev.Kind)
	case events.EventOpenFile:
		return fmt.Sprintf("%s:%d", ev.Path, ev.Line)
	case events.EventRunCompleted:
		return fmt.Sprintf("%d files, %d lines -> %s", ev.Files, ev.Lines, ev.Path)
	case events.EventError:
		return ev.Message
	default:
		return strings.TrimSpace(ev.Path + " " + ev.Message)
	}
}
