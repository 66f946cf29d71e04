package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase represents a lifecycle step of a devtool command.
type Phase string

const (
	PhaseResolve   Phase = "resolve"
	PhaseMerge     Phase = "merge"
	PhasePreflight Phase = "preflight"
	PhaseBuild     Phase = "build"
	PhaseChangelog Phase = "changelog"
	PhaseRelease   Phase = "release"
	PhaseScaffold  Phase = "scaffold"
)

// Event captures structured telemetry emitted by the CLI.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Phase     Phase             `json:"phase"`
	Outcome   string            `json:"outcome"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Emitter handles emitting JSON structured events to an io.Writer.
type Emitter struct {
	mu      sync.Mutex
	encoder *json.Encoder
	logger  *Logger
}

// NewEmitter constructs an emitter writing JSON lines to w.
func NewEmitter(w io.Writer) (*Emitter, error) {
	if w == nil {
		return nil, errors.New("emitter writer is required")
	}
	logger, err := NewLogger(w, newInvocationID())
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Emitter{encoder: enc, logger: logger}, nil
}

// StructuredLogger returns a logger writing entries to the same
// destination as the emitter's events.
func (e *Emitter) StructuredLogger() StructuredLogger {
	if e == nil {
		return nil
	}
	return e.logger
}

// Emit writes an event to the underlying writer.
func (e *Emitter) Emit(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]string{}
	}
	return e.encoder.Encode(ev)
}

// EmitPhase publishes start and completion events while executing fn.
func (e *Emitter) EmitPhase(phase Phase, metadata map[string]string, fn func() error) error {
	start := time.Now()
	if err := e.Emit(Event{Phase: phase, Outcome: "start", Metadata: metadata}); err != nil {
		return fmt.Errorf("emit start event: %w", err)
	}

	err := fn()
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	emitErr := e.Emit(Event{Phase: phase, Outcome: outcome, Duration: time.Since(start), Metadata: metadata})
	if emitErr != nil {
		return fmt.Errorf("emit completion event: %w", emitErr)
	}

	return err
}
