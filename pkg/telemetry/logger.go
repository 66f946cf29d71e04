package telemetry

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// StructuredLogger emits structured log entries.
type StructuredLogger interface {
	Emit(Entry) error
}

// Severity represents the log severity level.
type Severity string

const (
	// SeverityInfo captures normal operation messages.
	SeverityInfo Severity = "info"
	// SeverityWarn captures recoverable anomalies.
	SeverityWarn Severity = "warn"
	// SeverityError captures unrecoverable or failure states.
	SeverityError Severity = "error"
)

// Category captures the structured log category.
type Category string

const (
	// CategoryWorkflow marks high-level workflow events.
	CategoryWorkflow Category = "workflow"
	// CategoryCommand marks external command events (conda, git).
	CategoryCommand Category = "command"
	// CategoryRemote marks remote API events (GitLab).
	CategoryRemote Category = "remote"
	// CategoryDiagnostic marks ancillary diagnostic events.
	CategoryDiagnostic Category = "diagnostic"
)

// Entry describes a structured log entry prior to serialization.
type Entry struct {
	Category Category
	Message  string
	Severity Severity
	Step     string
	Command  string
	Profile  string
	Metadata map[string]string
	Error    error
}

// Logger emits structured JSON log lines for a single tool invocation.
type Logger struct {
	enc          *json.Encoder
	invocationID string
	mu           sync.Mutex
}

// NewLogger constructs a logger for one invocation of the tool.
func NewLogger(w io.Writer, invocationID string) (*Logger, error) {
	if w == nil {
		return nil, errors.New("logger writer is required")
	}
	trimmed := strings.TrimSpace(invocationID)
	if trimmed == "" {
		return nil, errors.New("invocation ID is required")
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Logger{enc: enc, invocationID: trimmed}, nil
}

// newInvocationID produces a short random identifier correlating all log
// entries of one tool invocation.
func newInvocationID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("inv-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// Emit writes the provided entry to the underlying writer.
func (l *Logger) Emit(entry Entry) error {
	if l == nil {
		return errors.New("logger is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	severity := entry.Severity
	if severity == "" {
		severity = SeverityInfo
	}

	metadata := map[string]string{}
	if len(entry.Metadata) > 0 {
		metadata = make(map[string]string, len(entry.Metadata))
		for k, v := range entry.Metadata {
			metadata[k] = v
		}
	}

	if entry.Error != nil {
		severity = SeverityError
		metadata["error"] = entry.Error.Error()
	}

	payload := map[string]any{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"category":     string(entry.Category),
		"message":      entry.Message,
		"severity":     string(severity),
		"invocationId": l.invocationID,
	}

	if entry.Step != "" {
		payload["step"] = entry.Step
	}
	if entry.Command != "" {
		payload["command"] = entry.Command
	}
	if entry.Profile != "" {
		payload["profile"] = entry.Profile
	}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}

	return l.enc.Encode(payload)
}
