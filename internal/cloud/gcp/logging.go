package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityDefault  Severity = "DEFAULT"
	SeverityDebug    Severity = "DEBUG"
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// rank orders severities so loggers can drop entries below a threshold.
func (s Severity) rank() int {
	switch s {
	case SeverityDebug:
		return 1
	case SeverityInfo:
		return 2
	case SeverityWarning:
		return 3
	case SeverityError:
		return 4
	case SeverityCritical:
		return 5
	default:
		return 0
	}
}

// DefaultLogID is the Cloud Logging log name used when none is configured.
const DefaultLogID = "loctreemap"

// LogEntry represents a structured log entry for Cloud Logging
type LogEntry struct {
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id,omitempty"`
	Labels    map[string]string      `json:"labels,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger defines the structured logging operations used across the tool.
type Logger interface {
	Log(severity Severity, message string, fields map[string]interface{})
	Debug(message string)
	Info(message string)
	Warning(message string)
	Error(message string)
	SetRunID(runID string)
	Flush() error
	Close() error
}

// LoggerConfig selects and configures a logger.
type LoggerConfig struct {
	// ProjectID enables Cloud Logging when set.
	ProjectID string
	// LogID names the Cloud Logging log. Defaults to DefaultLogID.
	LogID string
	// Verbose includes DEBUG entries.
	Verbose bool
	Labels  map[string]string
}

// FallbackLogger writes Cloud-Logging-compatible JSON lines to an io.Writer.
type FallbackLogger struct {
	writer      io.Writer
	runID       string
	labels      map[string]string
	minSeverity Severity
	mu          sync.Mutex
}

// FallbackOption configures a FallbackLogger.
type FallbackOption func(*FallbackLogger)

// WithLabels adds custom labels to all log entries
func WithLabels(labels map[string]string) FallbackOption {
	return func(fl *FallbackLogger) {
		for k, v := range labels {
			fl.labels[k] = v
		}
	}
}

// WithMinSeverity drops entries below the given severity.
func WithMinSeverity(s Severity) FallbackOption {
	return func(fl *FallbackLogger) {
		fl.minSeverity = s
	}
}

// NewFallbackLogger creates a logger that writes structured JSON to the given writer.
// INFO is the default threshold.
func NewFallbackLogger(writer io.Writer, opts ...FallbackOption) *FallbackLogger {
	if writer == nil {
		writer = os.Stderr
	}
	fl := &FallbackLogger{
		writer:      writer,
		labels:      map[string]string{"component": "loctreemap"},
		minSeverity: SeverityInfo,
	}
	for _, opt := range opts {
		opt(fl)
	}
	return fl
}

// Log writes a structured log entry to the writer
func (fl *FallbackLogger) Log(severity Severity, message string, fields map[string]interface{}) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if severity.rank() < fl.minSeverity.rank() {
		return
	}

	entry := LogEntry{
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
		RunID:     fl.runID,
		Labels:    fl.labels,
		Fields:    fields,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(fl.writer, `{"severity":"ERROR","message":"failed to marshal log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(fl.writer, "%s\n", data)
}

// Debug writes a DEBUG level log entry
func (fl *FallbackLogger) Debug(message string) { fl.Log(SeverityDebug, message, nil) }

// Info writes an INFO level log entry
func (fl *FallbackLogger) Info(message string) { fl.Log(SeverityInfo, message, nil) }

// Warning writes a WARNING level log entry
func (fl *FallbackLogger) Warning(message string) { fl.Log(SeverityWarning, message, nil) }

// Error writes an ERROR level log entry
func (fl *FallbackLogger) Error(message string) { fl.Log(SeverityError, message, nil) }

// SetRunID tags subsequent entries with a run identifier.
func (fl *FallbackLogger) SetRunID(runID string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.runID = runID
}

// Flush syncs the writer when it supports it.
func (fl *FallbackLogger) Flush() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if syncer, ok := fl.writer.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}
	return nil
}

// Close is a no-op for the fallback logger
func (fl *FallbackLogger) Close() error {
	return nil
}

// entryWriter is the subset of *logging.Logger the CloudLogger uses.
type entryWriter interface {
	Log(e logging.Entry)
	Flush() error
}

// CloudLogger sends entries to Google Cloud Logging. Entries are also
// mirrored to a local FallbackLogger so the terminal still shows progress.
type CloudLogger struct {
	client *logging.Client
	writer entryWriter
	local  *FallbackLogger

	runID       string
	labels      map[string]string
	minSeverity Severity
	mu          sync.Mutex
	closed      bool
}

// NewCloudLogger opens a Cloud Logging client for cfg.ProjectID.
func NewCloudLogger(ctx context.Context, cfg LoggerConfig, local *FallbackLogger, opts ...option.ClientOption) (*CloudLogger, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("cloud logging requires a project ID")
	}
	client, err := logging.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging client: %w", err)
	}
	logID := cfg.LogID
	if logID == "" {
		logID = DefaultLogID
	}
	cl := newCloudLogger(client.Logger(logID), local, cfg)
	cl.client = client
	return cl, nil
}

func newCloudLogger(w entryWriter, local *FallbackLogger, cfg LoggerConfig) *CloudLogger {
	labels := map[string]string{"component": "loctreemap"}
	for k, v := range cfg.Labels {
		labels[k] = v
	}
	threshold := SeverityInfo
	if cfg.Verbose {
		threshold = SeverityDebug
	}
	return &CloudLogger{
		writer:      w,
		local:       local,
		labels:      labels,
		minSeverity: threshold,
	}
}

// Log writes a structured log entry
func (cl *CloudLogger) Log(severity Severity, message string, fields map[string]interface{}) {
	cl.mu.Lock()
	if cl.closed || severity.rank() < cl.minSeverity.rank() {
		cl.mu.Unlock()
		return
	}
	labels := make(map[string]string, len(cl.labels)+1)
	for k, v := range cl.labels {
		labels[k] = v
	}
	if cl.runID != "" {
		labels["run_id"] = cl.runID
	}
	payload := map[string]interface{}{"message": message}
	for k, v := range fields {
		payload[k] = v
	}
	cl.writer.Log(logging.Entry{
		Timestamp: time.Now().UTC(),
		Severity:  logging.ParseSeverity(string(severity)),
		Payload:   payload,
		Labels:    labels,
	})
	cl.mu.Unlock()

	if cl.local != nil {
		cl.local.Log(severity, message, fields)
	}
}

// Debug writes a DEBUG level log entry
func (cl *CloudLogger) Debug(message string) { cl.Log(SeverityDebug, message, nil) }

// Info writes an INFO level log entry
func (cl *CloudLogger) Info(message string) { cl.Log(SeverityInfo, message, nil) }

// Warning writes a WARNING level log entry
func (cl *CloudLogger) Warning(message string) { cl.Log(SeverityWarning, message, nil) }

// Error writes an ERROR level log entry
func (cl *CloudLogger) Error(message string) { cl.Log(SeverityError, message, nil) }

// SetRunID tags subsequent entries with a run identifier.
func (cl *CloudLogger) SetRunID(runID string) {
	cl.mu.Lock()
	cl.runID = runID
	cl.mu.Unlock()
	if cl.local != nil {
		cl.local.SetRunID(runID)
	}
}

// Flush ensures all buffered entries are sent
func (cl *CloudLogger) Flush() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.closed {
		return nil
	}
	return cl.writer.Flush()
}

// Close flushes remaining entries and releases the client
func (cl *CloudLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.closed {
		return nil
	}
	cl.closed = true

	err := cl.writer.Flush()
	if cl.client != nil {
		if cerr := cl.client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// NewLogger creates the appropriate logger for cfg. Without a project ID it
// returns a FallbackLogger on w. If the Cloud Logging client cannot be
// created, the failure is logged locally and the FallbackLogger is returned.
func NewLogger(ctx context.Context, cfg LoggerConfig, w io.Writer, opts ...option.ClientOption) Logger {
	threshold := SeverityInfo
	if cfg.Verbose {
		threshold = SeverityDebug
	}
	local := NewFallbackLogger(w, WithMinSeverity(threshold), WithLabels(cfg.Labels))
	if cfg.ProjectID == "" {
		return local
	}

	cl, err := NewCloudLogger(ctx, cfg, local, opts...)
	if err != nil {
		local.Log(SeverityWarning, "cloud logging unavailable, using local output", map[string]interface{}{
			"error": err.Error(),
		})
		return local
	}
	return cl
}

// Ensure CloudLogger implements Logger
var _ Logger = (*CloudLogger)(nil)

// Ensure FallbackLogger implements Logger
var _ Logger = (*FallbackLogger)(nil)
