// Package audit records a machine-readable trail of configuration
// runs. Events are appended as JSON lines so operators can reconstruct
// what the tool did and when. Secret values never appear in events,
// only the names of the files they were written to.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileName is the audit trail file, created next to the generated
// configuration.
const FileName = ".deployment-audit.log"

// EventType classifies what part of a run an event belongs to.
type EventType string

const (
	// EventTypeRun covers run lifecycle events
	EventTypeRun EventType = "run"
	// EventTypeStep covers individual wizard steps
	EventTypeStep EventType = "step"
	// EventTypeArtifact covers generated or copied files
	EventTypeArtifact EventType = "artifact"
	// EventTypeSecret covers secret file writes
	EventTypeSecret EventType = "secret"
)

// Action is what happened to the subject of an event.
type Action string

const (
	// ActionStarted marks the beginning of a run or step
	ActionStarted Action = "started"
	// ActionCompleted marks a successful finish
	ActionCompleted Action = "completed"
	// ActionSkipped marks a step bypassed because earlier state covered it
	ActionSkipped Action = "skipped"
	// ActionFailed marks an aborted run or step
	ActionFailed Action = "failed"
	// ActionResumed marks a run continuing from saved state
	ActionResumed Action = "resumed"
	// ActionReset marks saved state being discarded
	ActionReset Action = "reset"
	// ActionWritten marks a file landing on disk
	ActionWritten Action = "written"
)

// Event is a single audit trail entry.
type Event struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// RunID groups every event of one invocation
	RunID string `json:"run_id"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// Type is the kind of event
	Type EventType `json:"type"`
	// Action is what happened
	Action Action `json:"action"`
	// Subject names the step or file the event is about
	Subject string `json:"subject,omitempty"`
	// Detail is a human-readable description
	Detail string `json:"detail,omitempty"`
	// Metadata holds additional context
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Logger appends events to a writer as JSON lines. The zero value
// discards everything, so callers can hold a *Logger unconditionally.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	close func() error
	runID string
}

// NewFileLogger opens (or creates) the audit file at path and starts a
// new run. The file is append-only and not world readable.
func NewFileLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}
	return &Logger{out: f, close: f.Close, runID: uuid.NewString()}, nil
}

// NewWriterLogger records events to an arbitrary writer.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{out: w, runID: uuid.NewString()}
}

// RunID identifies the current invocation.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Log appends one event, filling in ID, RunID, and Timestamp when
// absent. A nil logger or a zero-value logger silently drops events.
func (l *Logger) Log(event Event) error {
	if l == nil || l.out == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	line = append(line, '\n')
	if _, err := l.out.Write(line); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.close == nil {
		return nil
	}
	return l.close()
}

// RunStarted records the beginning of an invocation.
func (l *Logger) RunStarted(mode string, totalSteps int) {
	_ = l.Log(Event{
		Type:   EventTypeRun,
		Action: ActionStarted,
		Detail: fmt.Sprintf("configuration run started (%s)", mode),
		Metadata: map[string]string{
			"mode":  mode,
			"steps": fmt.Sprintf("%d", totalSteps),
		},
	})
}

// RunResumed records that saved progress was picked up.
func (l *Logger) RunResumed(completed, total int) {
	_ = l.Log(Event{
		Type:   EventTypeRun,
		Action: ActionResumed,
		Detail: fmt.Sprintf("resumed with %d/%d steps completed", completed, total),
	})
}

// RunReset records that saved progress was discarded.
func (l *Logger) RunReset() {
	_ = l.Log(Event{Type: EventTypeRun, Action: ActionReset, Detail: "saved state discarded"})
}

// RunCompleted records a successful finish.
func (l *Logger) RunCompleted() {
	_ = l.Log(Event{Type: EventTypeRun, Action: ActionCompleted, Detail: "configuration run completed"})
}

// RunFailed records an aborted invocation. Only the error text is
// stored; step input never reaches the trail.
func (l *Logger) RunFailed(err error) {
	_ = l.Log(Event{Type: EventTypeRun, Action: ActionFailed, Detail: err.Error()})
}

// StepStarted records a step beginning to collect input.
func (l *Logger) StepStarted(name string) {
	_ = l.Log(Event{Type: EventTypeStep, Action: ActionStarted, Subject: name})
}

// StepCompleted records a finished step along with the names of the
// secret files it produced. Values stay out of the trail.
func (l *Logger) StepCompleted(name string, secretNames []string) {
	var meta map[string]string
	if len(secretNames) > 0 {
		meta = map[string]string{"secrets": strings.Join(secretNames, ",")}
	}
	_ = l.Log(Event{
		Type:     EventTypeStep,
		Action:   ActionCompleted,
		Subject:  name,
		Metadata: meta,
	})
}

// StepSkipped records a step bypassed because saved state already
// covered it.
func (l *Logger) StepSkipped(name string) {
	_ = l.Log(Event{Type: EventTypeStep, Action: ActionSkipped, Subject: name})
}

// ArtifactWritten records a generated or copied configuration file.
func (l *Logger) ArtifactWritten(relPath string) {
	_ = l.Log(Event{Type: EventTypeArtifact, Action: ActionWritten, Subject: relPath})
}

// SecretsWritten records how many secret files landed on disk.
func (l *Logger) SecretsWritten(count int) {
	_ = l.Log(Event{
		Type:   EventTypeSecret,
		Action: ActionWritten,
		Detail: fmt.Sprintf("%d secret files written", count),
	})
}
