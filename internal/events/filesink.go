package events

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilename is the events file created in an events directory.
const DefaultFilename = "events.jsonl"

// ErrSinkClosed is returned when writing to a closed sink.
var ErrSinkClosed = errors.New("events sink is closed")

// FileSink appends Events as JSON lines to dir/events.jsonl. Every Write is
// flushed before it returns, so readers never observe a partial batch. It
// is safe for concurrent use.
type FileSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewFileSink opens the events file in dir for appending, creating dir
// when needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create events directory: %w", err)
	}
	p := filepath.Join(dir, DefaultFilename)
	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &FileSink{path: p, f: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write appends evs. Events without a timestamp are stamped.
func (s *FileSink) Write(evs ...Event) error {
	if len(evs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrSinkClosed
	}
	for _, ev := range evs {
		// Encode terminates each value with a newline.
		if err := s.enc.Encode(ev.Stamped()); err != nil {
			return fmt.Errorf("failed to write %s event: %w", ev.Type, err)
		}
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}
	return nil
}

// Close closes the file. Closing twice is a no-op.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.f.Close()
	s.f = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush events: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close events file: %w", closeErr)
	}
	return nil
}

// Path returns the events file path.
func (s *FileSink) Path() string {
	return s.path
}

// ReadEvents decodes every event in the JSONL file at path.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return decodeEvents(f)
}

func decodeEvents(r io.Reader) ([]Event, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	var evs []Event
	for {
		var ev Event
		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return evs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse event %d: %w", len(evs)+1, err)
		}
		evs = append(evs, ev)
	}
}

// Query selects events. Zero fields match everything.
type Query struct {
	RunID string
	Types []EventType
	// Latest restricts the result to the most recent run in the file.
	Latest bool
}

// Select returns the events matching q, preserving file order.
func (q Query) Select(evs []Event) []Event {
	runID := q.RunID
	if q.Latest && runID == "" {
		runID = LatestRun(evs)
	}
	var out []Event
	for _, ev := range evs {
		if runID != "" && ev.RunID != runID {
			continue
		}
		if len(q.Types) > 0 && !containsType(q.Types, ev.Type) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// LatestRun returns the run ID of the last event that carries one.
func LatestRun(evs []Event) string {
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].RunID != "" {
			return evs[i].RunID
		}
	}
	return ""
}

func containsType(types []EventType, t EventType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}
