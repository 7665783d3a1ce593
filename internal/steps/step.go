// Package steps defines the wizard steps that collect deployment
// configuration and produce secret material. Each step settles a group
// of related entries: it may prompt the operator, read earlier answers,
// and derive values, but it never touches the filesystem. Rendering the
// collected answers into files is the runner's job.
package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/octopize/avatar-deploy/internal/config"
	"github.com/octopize/avatar-deploy/internal/ui"
)

// Context carries everything a step may consult while collecting
// answers. Config is the live map accumulated so far: file overrides,
// resumed state, and the output of earlier steps.
type Context struct {
	OutputDir   string
	Interactive bool
	Defaults    *config.Defaults
	Config      map[string]string
	Printer     ui.Printer
	Gatherer    ui.InputGatherer
}

// Step is one unit of the configuration wizard.
//
// CollectConfig returns the entries this step settles; the runner
// merges them into Context.Config before calling GenerateSecrets, so
// secret generation can read the step's own answers. GenerateSecrets
// returns secret material keyed by the file name it will be written
// under.
type Step interface {
	Name() string
	Description() string
	Required() bool
	CollectConfig(ctx *Context) (map[string]string, error)
	GenerateSecrets(ctx *Context) (map[string]string, error)
}

// MissingConfigError reports every required entry a non-interactive
// run could not settle, not just the first.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf(
		"missing required configuration: %s (add the keys to your config file or run without --non-interactive)",
		strings.Join(e.Keys, ", "))
}

// promptOr asks interactively, or returns def when prompts are off.
func promptOr(ctx *Context, promptKey, message, def string, validate ui.ValidateFunc) (string, error) {
	if !ctx.Interactive {
		return def, nil
	}
	return ctx.Gatherer.Prompt(promptKey, message, def, validate)
}

// configOr returns the already-collected value for key, or def.
func configOr(ctx *Context, key, def string) string {
	if v, ok := ctx.Config[key]; ok {
		return v
	}
	return def
}

// normalizeDomain strips the scheme and trailing slashes from an
// operator-supplied URL, leaving the bare domain.
func normalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimRight(s, "/")
}

// expandUser resolves a leading ~ the way a shell would.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validateEmailList accepts a comma-separated list of addresses. The
// empty string passes; the field is optional.
func validateEmailList(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	for _, email := range strings.Split(value, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			return fmt.Errorf("empty email address found in list")
		}
		if !emailPattern.MatchString(email) {
			return fmt.Errorf("invalid email address: %s", email)
		}
	}
	return nil
}

// nonEmpty rejects blank answers for a named field.
func nonEmpty(field string) ui.ValidateFunc {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required and cannot be empty", field)
		}
		return nil
	}
}

// isTrue implements the loose boolean convention used across the
// collected configuration: only the string "true" counts, any case.
func isTrue(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
