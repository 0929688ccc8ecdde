package render

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/andywolf/loctreemap/internal/tree"
)

// Command is an action the host performs on behalf of the treemap.
type Command string

const (
	// CommandOpenFile asks the host to open a file at a line.
	CommandOpenFile Command = "openFile"
	// CommandRevealInExplorer asks the host to reveal a folder.
	CommandRevealInExplorer Command = "revealInExplorer"
)

// NavigationEvent is the message a rendered cell emits when clicked.
type NavigationEvent struct {
	Command Command `json:"command"`
	Path    string  `json:"path"`
	Line    int     `json:"line,omitempty"`
}

// EventFor returns the navigation event for a node: files open at line 1,
// folders are revealed.
func EventFor(n *tree.Node) NavigationEvent {
	if n.Kind == tree.KindFile {
		return NavigationEvent{Command: CommandOpenFile, Path: n.Path, Line: 1}
	}
	return NavigationEvent{Command: CommandRevealInExplorer, Path: n.Path}
}

// ParseEvent decodes and validates a message posted by the document.
func ParseEvent(data []byte) (NavigationEvent, error) {
	var ev NavigationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return NavigationEvent{}, fmt.Errorf("failed to parse navigation event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return NavigationEvent{}, err
	}
	return ev, nil
}

// Validate checks the command and its required fields. Paths must stay
// inside the scanned root. A missing line on openFile defaults to 1.
func (e *NavigationEvent) Validate() error {
	if e.Path == "" {
		return fmt.Errorf("navigation event has no path")
	}
	if filepath.IsAbs(e.Path) || strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("navigation path must be relative to the root: %s", e.Path)
	}
	clean := path.Clean(filepath.ToSlash(e.Path))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path traversal detected: %s", e.Path)
	}
	switch e.Command {
	case CommandOpenFile:
		if e.Line <= 0 {
			e.Line = 1
		}
	case CommandRevealInExplorer:
		e.Line = 0
	default:
		return fmt.Errorf("unknown navigation command: %q", e.Command)
	}
	return nil
}
