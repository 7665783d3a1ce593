package ui

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGatherer(input string) (*ConsoleGatherer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &ConsoleGatherer{
		In:  bufio.NewReader(strings.NewReader(input)),
		Out: out,
	}, out
}

func TestConsoleGatherer_PromptUsesDefaultOnEmptyAnswer(t *testing.T) {
	g, out := newTestGatherer("\n")

	answer, err := g.Prompt("env_name", "Environment name", "prod", nil)
	require.NoError(t, err)
	assert.Equal(t, "prod", answer)
	assert.Contains(t, out.String(), "[prod]")
}

func TestConsoleGatherer_PromptTrimsWhitespace(t *testing.T) {
	g, _ := newTestGatherer("  staging  \n")

	answer, err := g.Prompt("env_name", "Environment name", "prod", nil)
	require.NoError(t, err)
	assert.Equal(t, "staging", answer)
}

func TestConsoleGatherer_PromptRepromptsUntilValid(t *testing.T) {
	color.NoColor = true
	g, out := newTestGatherer("\n\nOctopize\n")

	nonEmpty := func(v string) error {
		if v == "" {
			return errors.New("a value is required")
		}
		return nil
	}

	answer, err := g.Prompt("organization_name", "Organization name", "", nonEmpty)
	require.NoError(t, err)
	assert.Equal(t, "Octopize", answer)
	assert.Equal(t, 2, strings.Count(out.String(), "a value is required"))
}

func TestConsoleGatherer_ConfirmParsesAnswers(t *testing.T) {
	cases := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"Yes\n", false, true},
		{"n\n", true, false},
		{"NO\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
	}
	for _, tc := range cases {
		g, _ := newTestGatherer(tc.input)
		got, err := g.Confirm("resume", "Resume previous run?", tc.defaultYes)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q default %v", tc.input, tc.defaultYes)
	}
}

func TestConsoleGatherer_ConfirmRepromptsOnGarbage(t *testing.T) {
	color.NoColor = true
	g, out := newTestGatherer("maybe\nyes\n")

	got, err := g.Confirm("resume", "Resume previous run?", false)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Contains(t, out.String(), "Please answer yes or no.")
}

func TestConsoleGatherer_PromptSecretReadsPipedLine(t *testing.T) {
	// Test stdin is never a terminal, so the plain-line path runs.
	g, out := newTestGatherer("hunter2\n")

	secret, err := g.PromptSecret("smtp_password", "SMTP password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)
	assert.NotContains(t, out.String(), "hunter2")
}

func TestScriptedGatherer_FallsBackToDefault(t *testing.T) {
	g := &ScriptedGatherer{Answers: map[string]string{"env_name": "staging"}}

	answer, err := g.Prompt("env_name", "Environment name", "prod", nil)
	require.NoError(t, err)
	assert.Equal(t, "staging", answer)

	answer, err = g.Prompt("public_url", "Public URL", "avatar.example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "avatar.example.com", answer)

	assert.Equal(t, []string{"env_name", "public_url"}, g.Asked)
}

func TestScriptedGatherer_RejectsInvalidScriptedAnswer(t *testing.T) {
	g := &ScriptedGatherer{Answers: map[string]string{"env_name": ""}}

	_, err := g.Prompt("env_name", "Environment name", "", func(v string) error {
		if v == "" {
			return errors.New("a value is required")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env_name")
}
