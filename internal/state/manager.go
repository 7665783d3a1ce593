// Package state persists wizard progress between runs so an
// interrupted configuration can resume where it stopped instead of
// asking every question again.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the state file kept inside the output directory.
const FileName = ".deployment-state.yaml"

// RecordVersion is the schema version written to new state files.
const RecordVersion = "1.0"

// StepState tracks how far a single wizard step has progressed.
type StepState string

const (
	// StepNotStarted means the step has never run.
	StepNotStarted StepState = "not-started"
	// StepInProgress means the step started but did not finish, usually
	// because the run was interrupted mid-prompt.
	StepInProgress StepState = "in-progress"
	// StepCompleted means the step finished and its outcome is recorded.
	StepCompleted StepState = "completed"
)

// StepStatus pairs a step name with its progress.
type StepStatus struct {
	Name   string    `yaml:"name"`
	Status StepState `yaml:"status"`
}

// Outcome is the snapshot a completed step leaves behind: the
// configuration entries it settled and the secret material it produced.
// Persisting both means a resumed run can still write every secret
// file, not only the ones collected after the interruption.
type Outcome struct {
	Config  map[string]string `yaml:"config,omitempty"`
	Secrets map[string]string `yaml:"secrets,omitempty"`
}

// Record is the full persisted state.
type Record struct {
	Version  string             `yaml:"version"`
	Steps    []StepStatus       `yaml:"steps"`
	Config   map[string]string  `yaml:"config"`
	Outcomes map[string]Outcome `yaml:"outcomes"`
}

// StepMismatchError means the saved state names steps this build of the
// tool does not run, or runs them in a different order. Resuming would
// apply answers to the wrong steps, so the operator has to start over.
type StepMismatchError struct {
	Path   string
	Detail string
}

func (e *StepMismatchError) Error() string {
	return fmt.Sprintf(
		"saved state at %s does not match this tool's steps (%s); delete the file to start over",
		e.Path, e.Detail)
}

// Manager owns the state file for one output directory. Every mutation
// is written through immediately, so an interrupt at any point leaves a
// resumable file behind.
type Manager struct {
	mu     sync.Mutex
	path   string
	record Record
}

// NewManager prepares a manager for the state file under outputDir.
// Nothing is read or written until LoadOrInit.
func NewManager(outputDir string) *Manager {
	return &Manager{path: filepath.Join(outputDir, FileName)}
}

// Path returns the state file location.
func (m *Manager) Path() string { return m.path }

// LoadOrInit reads any existing state file and reconciles it with the
// step names registered in this build. Steps added since the file was
// written are appended as not started. A file naming unknown steps, or
// known steps out of order, fails with StepMismatchError.
//
// The returned flag reports whether earlier progress exists to resume.
// A missing file is not an error; the fresh record stays in memory
// until the first mutation writes it.
func (m *Manager) LoadOrInit(stepNames []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.record = freshRecord(stepNames)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading state file: %w", err)
	}

	var loaded Record
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return false, fmt.Errorf(
			"state file %s is not valid YAML (%v); delete it to start over", m.path, err)
	}
	if loaded.Version != RecordVersion {
		return false, fmt.Errorf(
			"state file %s has unsupported version %q; delete it to start over",
			m.path, loaded.Version)
	}
	if err := m.checkSteps(loaded.Steps, stepNames); err != nil {
		return false, err
	}

	byName := make(map[string]StepState, len(loaded.Steps))
	for _, s := range loaded.Steps {
		byName[s.Name] = s.Status
	}

	m.record = freshRecord(stepNames)
	resumable := false
	for i := range m.record.Steps {
		if status, ok := byName[m.record.Steps[i].Name]; ok && status != "" {
			m.record.Steps[i].Status = status
			if status != StepNotStarted {
				resumable = true
			}
		}
	}
	for k, v := range loaded.Config {
		m.record.Config[k] = v
	}
	for name, outcome := range loaded.Outcomes {
		m.record.Outcomes[name] = outcome
	}
	return resumable, nil
}

// checkSteps verifies the persisted names form an order-preserving
// subsequence of the registered ones.
func (m *Manager) checkSteps(persisted []StepStatus, registered []string) error {
	pos := make(map[string]int, len(registered))
	for i, name := range registered {
		pos[name] = i
	}

	last := -1
	for _, s := range persisted {
		i, known := pos[s.Name]
		if !known {
			return &StepMismatchError{
				Path:   m.path,
				Detail: fmt.Sprintf("unknown step %q", s.Name),
			}
		}
		if i <= last {
			return &StepMismatchError{
				Path:   m.path,
				Detail: fmt.Sprintf("step %q is out of order", s.Name),
			}
		}
		last = i
	}
	return nil
}

// MarkInProgress records that a step is about to run.
func (m *Manager) MarkInProgress(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.setStatus(name, StepInProgress); err != nil {
		return err
	}
	return m.save()
}

// MarkCompleted records a finished step together with its outcome and
// the full configuration as of that point.
func (m *Manager) MarkCompleted(name string, outcome Outcome, config map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.setStatus(name, StepCompleted); err != nil {
		return err
	}
	m.record.Outcomes[name] = Outcome{
		Config:  copyMap(outcome.Config),
		Secrets: copyMap(outcome.Secrets),
	}
	m.record.Config = copyMap(config)
	return m.save()
}

func (m *Manager) setStatus(name string, status StepState) error {
	for i := range m.record.Steps {
		if m.record.Steps[i].Name == name {
			m.record.Steps[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("step %q is not registered", name)
}

// StatusOf returns a step's progress. Unknown names read as not
// started.
func (m *Manager) StatusOf(name string) StepState {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.record.Steps {
		if s.Name == name {
			return s.Status
		}
	}
	return StepNotStarted
}

// Steps returns a copy of the tracked steps in execution order.
func (m *Manager) Steps() []StepStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]StepStatus, len(m.record.Steps))
	copy(out, m.record.Steps)
	return out
}

// Config returns a copy of the last persisted configuration.
func (m *Manager) Config() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.record.Config)
}

// Outcomes returns a copy of every completed step's snapshot.
func (m *Manager) Outcomes() map[string]Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Outcome, len(m.record.Outcomes))
	for name, o := range m.record.Outcomes {
		out[name] = Outcome{Config: copyMap(o.Config), Secrets: copyMap(o.Secrets)}
	}
	return out
}

// HasProgress reports whether any step has started.
func (m *Manager) HasProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.record.Steps {
		if s.Status != StepNotStarted {
			return true
		}
	}
	return false
}

// IsComplete reports whether every step has finished.
func (m *Manager) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.record.Steps {
		if s.Status != StepCompleted {
			return false
		}
	}
	return len(m.record.Steps) > 0
}

// NextIncompleteStep returns the first step, in execution order, that
// has not completed. The flag is false once everything is done.
func (m *Manager) NextIncompleteStep() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.record.Steps {
		if s.Status != StepCompleted {
			return s.Name, true
		}
	}
	return "", false
}

// Reset discards all progress and writes a fresh state file.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.record.Steps))
	for i, s := range m.record.Steps {
		names[i] = s.Name
	}
	m.record = freshRecord(names)
	return m.save()
}

// Summary describes overall progress for status reporting.
type Summary struct {
	Steps     []StepStatus
	Completed int
	Total     int
	// NextStep is the first step still to run; empty when complete.
	NextStep string
}

// Summarize returns a progress overview.
func (m *Manager) Summarize() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		Steps: make([]StepStatus, len(m.record.Steps)),
		Total: len(m.record.Steps),
	}
	copy(s.Steps, m.record.Steps)
	for _, step := range m.record.Steps {
		if step.Status == StepCompleted {
			s.Completed++
		} else if s.NextStep == "" {
			s.NextStep = step.Name
		}
	}
	return s
}

// Describe renders a one-line progress banner like "3/10 steps
// completed".
func (s Summary) Describe() string {
	return fmt.Sprintf("%d/%d steps completed", s.Completed, s.Total)
}

// String renders the summary as a step-per-line listing.
func (s Summary) String() string {
	var b strings.Builder
	for _, step := range s.Steps {
		fmt.Fprintf(&b, "  %s %s\n", step.Status.Icon(), step.Name)
	}
	b.WriteString(s.Describe())
	return b.String()
}

// Icon returns the glyph used for this state in progress listings.
func (st StepState) Icon() string {
	switch st {
	case StepCompleted:
		return "✓"
	case StepInProgress:
		return "◐"
	default:
		return "○"
	}
}

// SortedSecretNames lists every secret name across outcomes once, in
// stable order.
func SortedSecretNames(outcomes map[string]Outcome) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, o := range outcomes {
		for name := range o.Secrets {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// save writes the record. The file carries secret snapshots, so it is
// owner readable only.
func (m *Manager) save() error {
	data, err := yaml.Marshal(&m.record)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

func freshRecord(stepNames []string) Record {
	steps := make([]StepStatus, len(stepNames))
	for i, name := range stepNames {
		steps[i] = StepStatus{Name: name, Status: StepNotStarted}
	}
	return Record{
		Version:  RecordVersion,
		Steps:    steps,
		Config:   make(map[string]string),
		Outcomes: make(map[string]Outcome),
	}
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
