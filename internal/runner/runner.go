// Package runner drives the configuration wizard end to end: loading
// saved progress, executing collection steps in order, rendering the
// deployment artifacts, and writing secret files. It owns the run
// semantics; the cmd package only parses flags and resolves templates.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/octopize/avatar-deploy/internal/audit"
	"github.com/octopize/avatar-deploy/internal/config"
	"github.com/octopize/avatar-deploy/internal/state"
	"github.com/octopize/avatar-deploy/internal/steps"
	"github.com/octopize/avatar-deploy/internal/ui"
	"github.com/octopize/avatar-deploy/pkg/templates"
)

// Options configures a Runner. OutputDir, Bundle, Steps, and Defaults
// are required; the rest default to console implementations.
type Options struct {
	// OutputDir receives every generated file.
	OutputDir string
	// Bundle is the resolved template set to render from.
	Bundle *templates.Bundle
	// Steps run in order; each may depend on config collected earlier.
	Steps []steps.Step
	// Defaults supplies fallback values for unanswered settings.
	Defaults *config.Defaults
	// Interactive enables prompting. Off, missing required settings
	// abort the run instead.
	Interactive bool
	// ConfigPath optionally points at a YAML file of preset answers.
	ConfigPath string
	// SaveConfig writes the final configuration next to the artifacts.
	SaveConfig bool

	Printer  ui.Printer
	Gatherer ui.InputGatherer
	Audit    *audit.Logger
	Log      *slog.Logger
}

// Runner executes the configuration process against one output
// directory.
type Runner struct {
	opts  Options
	state *state.Manager
}

func New(opts Options) (*Runner, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.Bundle == nil {
		return nil, fmt.Errorf("template bundle is required")
	}
	if len(opts.Steps) == 0 {
		return nil, fmt.Errorf("at least one step is required")
	}
	if opts.Defaults == nil {
		return nil, fmt.Errorf("defaults are required")
	}
	if opts.Printer == nil {
		opts.Printer = ui.NewConsolePrinter()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = ui.NewConsoleGatherer()
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{
		opts:  opts,
		state: state.NewManager(opts.OutputDir),
	}, nil
}

type resumeChoice string

const (
	resumeContinue resumeChoice = "continue"
	resumeReset    resumeChoice = "reset"
	resumeAbort    resumeChoice = "abort"
)

// Run executes the wizard. It is safe to call again after a failed or
// interrupted run; completed steps are skipped and their collected
// values and secrets reused. Cancelling ctx stops the run between
// steps, leaving the state file resumable.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.run(ctx); err != nil {
		r.opts.Audit.RunFailed(err)
		return err
	}
	r.opts.Audit.RunCompleted()
	return nil
}

func (r *Runner) run(ctx context.Context) error {
	pr := r.opts.Printer

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	mode := "non-interactive"
	if r.opts.Interactive {
		mode = "interactive"
	}
	r.opts.Audit.RunStarted(mode, len(r.opts.Steps))

	resumable, err := r.state.LoadOrInit(steps.Names(r.opts.Steps))
	if err != nil {
		return err
	}

	live := make(map[string]string)

	if resumable {
		if err := r.handleResume(live); err != nil {
			return err
		}
	}

	if r.opts.ConfigPath != "" {
		pr.Println("Loading configuration from %s...", r.opts.ConfigPath)
		overrides, err := config.LoadOverrides(r.opts.ConfigPath)
		if err != nil {
			return err
		}
		for k, v := range overrides {
			live[k] = v
		}
		r.opts.Log.Debug("loaded configuration file", "path", r.opts.ConfigPath, "keys", len(overrides))
	}

	pr.Header("Avatar Deployment Configuration")
	pr.Println("")
	pr.Println("Executing configuration steps...")
	pr.Println("")

	if err := r.runSteps(ctx, live); err != nil {
		return err
	}

	// Secrets come from the persisted outcomes of every step, not just
	// the ones executed now, so a resumed run still writes all of them.
	// Collisions abort before any artifact is touched.
	merged, err := r.mergedSecrets()
	if err != nil {
		return err
	}

	writer := &artifactWriter{
		bundle:  r.opts.Bundle,
		outDir:  r.opts.OutputDir,
		printer: pr,
		audit:   r.opts.Audit,
		log:     r.opts.Log,
	}
	if err := writer.generate(live); err != nil {
		return err
	}
	if len(merged) > 0 {
		pr.Println("")
		pr.Println("Writing %d secrets to %s/ directory...", len(merged), SecretsDirName)
		if err := writeSecrets(r.opts.OutputDir, merged); err != nil {
			return err
		}
		pr.Success("Secrets written successfully")
		r.opts.Audit.SecretsWritten(len(merged))
	}

	if r.opts.SaveConfig {
		savePath := filepath.Join(r.opts.OutputDir, config.SavedConfigName)
		if err := config.Save(savePath, live); err != nil {
			return err
		}
		pr.Println("")
		pr.Success("Configuration saved to %s", savePath)
	}

	pr.Header("Configuration Complete!")
	pr.Println("")
	pr.Println("Configuration files generated in: %s", r.opts.OutputDir)
	pr.Println("")
	pr.Println("Next steps:")
	pr.Println("1. Review and edit the generated .env file")
	pr.Println("2. Fill in any remaining secrets in %s/ directory", SecretsDirName)
	pr.Println("3. Configure TLS certificates in the tls/ directory")
	pr.Println("4. Run: docker compose up -d")

	return nil
}

// handleResume settles what to do with saved progress. Interactive
// runs with unfinished state get a choice; everything else continues,
// merging the persisted configuration so regenerated artifacts match
// the earlier answers.
func (r *Runner) handleResume(live map[string]string) error {
	pr := r.opts.Printer
	sum := r.state.Summarize()

	pr.Info("Found existing deployment state:")
	pr.Println("%s", sum.String())

	choice := resumeContinue
	if r.opts.Interactive && !r.state.IsComplete() {
		answered, err := r.askResume()
		if err != nil {
			return err
		}
		choice = answered
	}

	switch choice {
	case resumeAbort:
		pr.Println("Leaving existing configuration untouched.")
		return ErrAborted
	case resumeReset:
		pr.Println("Starting fresh configuration...")
		if err := r.state.Reset(); err != nil {
			return err
		}
		r.opts.Audit.RunReset()
	default:
		if r.state.IsComplete() {
			pr.Println("All steps already completed; regenerating files from saved state.")
		} else {
			pr.Println("Resuming from last completed step...")
		}
		for k, v := range r.state.Config() {
			live[k] = v
		}
		next, _ := r.state.NextIncompleteStep()
		r.opts.Audit.RunResumed(sum.Completed, sum.Total)
		r.opts.Log.Debug("resumed saved state", "completed", sum.Completed, "total", sum.Total, "next", next)
	}
	return nil
}

func (r *Runner) askResume() (resumeChoice, error) {
	answer, err := r.opts.Gatherer.Prompt("resume.choice",
		"Resume from where you left off? (continue/reset/abort)", string(resumeContinue),
		func(value string) error {
			switch normalizeResume(value) {
			case resumeContinue, resumeReset, resumeAbort:
				return nil
			}
			return fmt.Errorf("answer continue, reset, or abort")
		})
	if err != nil {
		return resumeContinue, err
	}
	return normalizeResume(answer), nil
}

func normalizeResume(value string) resumeChoice {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "continue", "c":
		return resumeContinue
	case "reset", "r":
		return resumeReset
	case "abort", "a":
		return resumeAbort
	}
	return resumeChoice(value)
}

func (r *Runner) runSteps(ctx context.Context, live map[string]string) error {
	stepCtx := &steps.Context{
		OutputDir:   r.opts.OutputDir,
		Interactive: r.opts.Interactive,
		Defaults:    r.opts.Defaults,
		Config:      live,
		Printer:     r.opts.Printer,
		Gatherer:    r.opts.Gatherer,
	}

	owners := r.configOwners()
	total := len(r.opts.Steps)
	for i, s := range r.opts.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := s.Name()
		number := i + 1

		if r.state.StatusOf(name) == state.StepCompleted {
			r.opts.Printer.Skip(number, total, s.Description())
			r.opts.Audit.StepSkipped(name)
			continue
		}

		r.opts.Printer.Step(number, total, s.Description())
		r.opts.Audit.StepStarted(name)
		if err := r.state.MarkInProgress(name); err != nil {
			return err
		}

		collected, err := s.CollectConfig(stepCtx)
		if err != nil {
			return fmt.Errorf("step %s: %w", name, err)
		}
		for k, v := range collected {
			if owner, taken := owners[k]; taken && owner != name {
				return &KeyCollisionError{Key: k, FirstStep: owner, SecondStep: name}
			}
			owners[k] = name
			live[k] = v
		}

		generated, err := s.GenerateSecrets(stepCtx)
		if err != nil {
			return fmt.Errorf("step %s: %w", name, err)
		}

		outcome := state.Outcome{Config: collected, Secrets: generated}
		if err := r.state.MarkCompleted(name, outcome, live); err != nil {
			return err
		}
		r.opts.Audit.StepCompleted(name, state.SortedSecretNames(map[string]state.Outcome{name: outcome}))
		r.opts.Log.Debug("step completed", "step", name, "collected", len(collected), "secrets", len(generated))
	}
	return nil
}

// configOwners maps each config key a completed step produced to that
// step, so a later step re-settling the key is caught across resumes
// too.
func (r *Runner) configOwners() map[string]string {
	outcomes := r.state.Outcomes()
	owners := make(map[string]string)
	for _, s := range r.opts.Steps {
		outcome, ok := outcomes[s.Name()]
		if !ok {
			continue
		}
		for k := range outcome.Config {
			owners[k] = s.Name()
		}
	}
	return owners
}

// mergedSecrets flattens every step's persisted secrets into one map,
// rejecting name collisions between steps.
func (r *Runner) mergedSecrets() (map[string]string, error) {
	outcomes := r.state.Outcomes()
	owners := make(map[string]string)
	merged := make(map[string]string)

	for _, s := range r.opts.Steps {
		name := s.Name()
		outcome, ok := outcomes[name]
		if !ok {
			continue
		}
		for secretName, value := range outcome.Secrets {
			if owner, taken := owners[secretName]; taken && owner != name {
				return nil, &SecretCollisionError{Name: secretName, FirstStep: owner, SecondStep: name}
			}
			owners[secretName] = name
			merged[secretName] = value
		}
	}
	return merged, nil
}

// Status reports saved progress without modifying anything.
func Status(outputDir string, stepNames []string) (state.Summary, bool, error) {
	m := state.NewManager(outputDir)
	resumable, err := m.LoadOrInit(stepNames)
	if err != nil {
		return state.Summary{}, false, err
	}
	return m.Summarize(), resumable, nil
}
