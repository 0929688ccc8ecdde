// Package events records what happened during a treemap run (scan warnings,
// navigation requests, completion) as JSONL for hosts and later inspection.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/andywolf/loctreemap/internal/render"
	"github.com/andywolf/loctreemap/internal/scanner"
)

// EventType identifies the category of a run event.
type EventType string

const (
	// EventScanWarning is a file or directory skipped during the scan.
	EventScanWarning EventType = "scan_warning"
	// EventOpenFile is a request for the host to open a file.
	EventOpenFile EventType = "open_file"
	// EventRevealInExplorer is a request for the host to reveal a folder.
	EventRevealInExplorer EventType = "reveal_in_explorer"
	// EventRunCompleted marks a document written successfully.
	EventRunCompleted EventType = "run_completed"
	// EventError is a terminal run error.
	EventError EventType = "error"
)

// Event is a single JSONL record.
type Event struct {
	Timestamp time.Time `json:"timestamp"`

	// RunID identifies the invocation that produced the event.
	RunID string `json:"run_id"`

	Type EventType `json:"type"`

	// Path is the root-relative path the event refers to.
	Path string `json:"path,omitempty"`

	// Command and Line carry the navigation contract for open_file and
	// reveal_in_explorer events.
	Command render.Command `json:"command,omitempty"`
	Line    int            `json:"line,omitempty"`

	// Kind is the warning category for scan_warning events.
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`

	// Files and Lines summarize a completed run.
	Files int `json:"files,omitempty"`
	Lines int `json:"lines,omitempty"`
}

// ValidEventTypes returns all valid event type values.
func ValidEventTypes() []EventType {
	return []EventType{
		EventScanWarning,
		EventOpenFile,
		EventRevealInExplorer,
		EventRunCompleted,
		EventError,
	}
}

// IsValidEventType checks if the given string is a valid event type.
func IsValidEventType(s string) bool {
	for _, t := range ValidEventTypes() {
		if string(t) == s {
			return true
		}
	}
	return false
}

// ParseTypes converts event type names, rejecting unknown ones.
func ParseTypes(names []string) ([]EventType, error) {
	var types []EventType
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !IsValidEventType(name) {
			valid := make([]string, 0, len(ValidEventTypes()))
			for _, t := range ValidEventTypes() {
				valid = append(valid, string(t))
			}
			return nil, fmt.Errorf("unknown event type %q (valid: %s)", name, strings.Join(valid, ", "))
		}
		types = append(types, EventType(name))
	}
	return types, nil
}

// FromWarning converts a scan warning.
func FromWarning(runID string, w scanner.Warning) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Type:      EventScanWarning,
		Path:      w.Path,
		Kind:      string(w.Kind),
		Message:   w.Message,
	}
}

// FromNavigation converts a navigation request emitted by the document.
func FromNavigation(runID string, nav render.NavigationEvent) Event {
	typ := EventOpenFile
	if nav.Command == render.CommandRevealInExplorer {
		typ = EventRevealInExplorer
	}
	return Event{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Type:      typ,
		Path:      nav.Path,
		Command:   nav.Command,
		Line:      nav.Line,
	}
}

// Navigation returns the navigation contract carried by an open_file or
// reveal_in_explorer event.
func (e Event) Navigation() (render.NavigationEvent, bool) {
	if e.Type != EventOpenFile && e.Type != EventRevealInExplorer {
		return render.NavigationEvent{}, false
	}
	return render.NavigationEvent{Command: e.Command, Path: e.Path, Line: e.Line}, true
}

// Stamped returns e with Timestamp set to the current time if unset.
func (e Event) Stamped() Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}
