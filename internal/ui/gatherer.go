package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ValidateFunc rejects unacceptable input with a user-facing error.
type ValidateFunc func(value string) error

// InputGatherer collects answers from the operator. The key identifies
// which configuration or secret entry the answer feeds; console
// implementations ignore it, scripted ones dispatch on it.
type InputGatherer interface {
	// Prompt asks for a value, offering defaultValue when the answer is
	// empty. Invalid answers are re-prompted.
	Prompt(key, message, defaultValue string, validate ValidateFunc) (string, error)
	// PromptSecret asks for a value without echoing it. An empty answer
	// means the operator declined to supply one.
	PromptSecret(key, message string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(key, message string, defaultYes bool) (bool, error)
}

// ConsoleGatherer prompts on an interactive terminal.
type ConsoleGatherer struct {
	In  *bufio.Reader
	Out io.Writer

	// isTerminal reports whether hidden input is possible. Nil means no.
	isTerminal func() bool
}

func NewConsoleGatherer() *ConsoleGatherer {
	return &ConsoleGatherer{
		In:  bufio.NewReader(os.Stdin),
		Out: os.Stdout,
		isTerminal: func() bool {
			return term.IsTerminal(int(syscall.Stdin))
		},
	}
}

func (g *ConsoleGatherer) Prompt(key, message, defaultValue string, validate ValidateFunc) (string, error) {
	for {
		if defaultValue != "" {
			fmt.Fprintf(g.Out, "%s [%s]: ", message, defaultValue)
		} else {
			fmt.Fprintf(g.Out, "%s: ", message)
		}

		line, err := g.In.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading input for %s: %w", key, err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = defaultValue
		}

		if validate != nil {
			if verr := validate(answer); verr != nil {
				color.New(color.FgYellow).Fprintf(g.Out, "%v\n", verr)
				continue
			}
		}
		return answer, nil
	}
}

func (g *ConsoleGatherer) PromptSecret(key, message string) (string, error) {
	fmt.Fprintf(g.Out, "%s: ", message)

	if g.isTerminal != nil && g.isTerminal() {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(g.Out) // New line after hidden input
		if err != nil {
			return "", fmt.Errorf("reading secret %s: %w", key, err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	// Piped stdin cannot suppress echo; read a plain line instead.
	line, err := g.In.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret %s: %w", key, err)
	}
	return strings.TrimSpace(line), nil
}

func (g *ConsoleGatherer) Confirm(key, message string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	for {
		fmt.Fprintf(g.Out, "%s %s: ", message, hint)

		line, err := g.In.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("reading input for %s: %w", key, err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			color.New(color.FgYellow).Fprintln(g.Out, "Please answer yes or no.")
		}
	}
}

// ScriptedGatherer replays canned answers keyed by entry name. Tests
// use it to drive the wizard without a terminal. A prompt with no
// scripted answer behaves like pressing Enter: the default wins.
type ScriptedGatherer struct {
	Answers  map[string]string
	Secrets  map[string]string
	Confirms map[string]bool

	// Asked records prompt keys in the order they were requested.
	Asked []string
}

func (g *ScriptedGatherer) Prompt(key, message, defaultValue string, validate ValidateFunc) (string, error) {
	g.Asked = append(g.Asked, key)

	answer, ok := g.Answers[key]
	if !ok {
		answer = defaultValue
	}
	if validate != nil {
		if err := validate(answer); err != nil {
			return "", fmt.Errorf("scripted answer for %s rejected: %w", key, err)
		}
	}
	return answer, nil
}

func (g *ScriptedGatherer) PromptSecret(key, message string) (string, error) {
	g.Asked = append(g.Asked, key)
	return g.Secrets[key], nil
}

func (g *ScriptedGatherer) Confirm(key, message string, defaultYes bool) (bool, error) {
	g.Asked = append(g.Asked, key)

	answer, ok := g.Confirms[key]
	if !ok {
		return defaultYes, nil
	}
	return answer, nil
}
