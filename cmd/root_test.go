package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octopize/avatar-deploy/internal/audit"
	"github.com/octopize/avatar-deploy/pkg/templates"
	"github.com/octopize/avatar-deploy/pkg/versioning"
)

func resetFlags() {
	outputDir = "."
	templateFrom = templateSourceGitHub
	configFile = ""
	nonInteractive = false
	saveConfig = false
	verbose = false
	showStatus = false
	devMode = false
	skipDownload = false
}

// writeLocalTemplates lays out a complete bundle source so tests run
// without touching the network.
func writeLocalTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	contents := map[string]string{
		".env.template":               "ENV_NAME={{.ENV_NAME}}\nPUBLIC_URL={{.PUBLIC_URL}}\n",
		"nginx.conf.template":         "server_name {{.PUBLIC_URL}};\n",
		"docker-compose.yml.template": "services: {}\n",
		templates.VersionFileName:     versioning.ToolVersion + "\n",
	}

	for _, entry := range templates.RequiredFiles() {
		content, ok := contents[entry.Path]
		if !ok {
			content = "placeholder\n"
		}
		path := filepath.Join(dir, entry.Path)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// runWizard executes a full non-interactive run against local
// templates and returns the output directory.
func runWizard(t *testing.T) string {
	t.Helper()
	resetFlags()

	src := writeLocalTemplates(t)
	out := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(cfg,
		[]byte("PUBLIC_URL: avatar.example.com\nENV_NAME: prod\nORGANIZATION_NAME: Acme\n"), 0o600))

	rootCmd.SetArgs([]string{
		"--template-from", src,
		"--output-dir", out,
		"--config", cfg,
		"--non-interactive",
	})
	require.NoError(t, rootCmd.Execute())
	return out
}

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "avatar-deploy", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.RunE)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_Flags(t *testing.T) {
	stringDefaults := map[string]string{
		"output-dir":    ".",
		"template-from": "github",
		"config":        "",
	}
	for name, def := range stringDefaults {
		flag := rootCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}

	for _, name := range []string{"non-interactive", "save-config", "status", "dev", "skip-download"} {
		flag := rootCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "false", flag.DefValue, name)
	}

	verboseFlag := rootCmd.Flags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("9.9.9", "abc123", "2026-01-01", "ci")
	assert.Equal(t, "9.9.9", rootCmd.Version)
	assert.Equal(t, "abc123", Commit)
	assert.Equal(t, "ci", BuiltBy)
}

func TestExecute_LocalTemplatesNonInteractive(t *testing.T) {
	out := runWizard(t)

	env, err := godotenv.Read(filepath.Join(out, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "prod", env["ENV_NAME"])
	assert.Equal(t, "avatar.example.com", env["PUBLIC_URL"])

	assert.FileExists(t, filepath.Join(out, "docker-compose.yml"))
	assert.FileExists(t, filepath.Join(out, "nginx", "nginx.conf"))
	assert.FileExists(t, filepath.Join(out, audit.FileName))
	assert.DirExists(t, filepath.Join(out, templates.CacheDirName))
	assert.DirExists(t, filepath.Join(out, ".secrets"))
}

func TestStatusFlag_ReportsProgress(t *testing.T) {
	out := runWizard(t)

	resetFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"--status", "--output-dir", out})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "Deployment configuration status:")
	assert.Contains(t, buf.String(), "10/10 steps completed")
	assert.NotContains(t, buf.String(), "Next step:")
}

func TestStatusFlag_PartialRun(t *testing.T) {
	resetFlags()

	src := writeLocalTemplates(t)
	out := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "answers.yaml")
	// SMTP without a host fails at the email step, after six steps.
	require.NoError(t, os.WriteFile(cfg,
		[]byte("PUBLIC_URL: avatar.example.com\nENV_NAME: prod\nORGANIZATION_NAME: Acme\nMAIL_PROVIDER: smtp\n"), 0o600))

	rootCmd.SetArgs([]string{
		"--template-from", src,
		"--output-dir", out,
		"--config", cfg,
		"--non-interactive",
	})
	require.Error(t, rootCmd.Execute())

	resetFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"--status", "--output-dir", out})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "6/10 steps completed")
	assert.Contains(t, buf.String(), "Next step: email")
}

func TestStatusFlag_FreshDirectory(t *testing.T) {
	resetFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	dir := t.TempDir()
	rootCmd.SetArgs([]string{"--status", "--output-dir", dir})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "No saved configuration state")
	assert.NoFileExists(t, filepath.Join(dir, ".deployment-state.yaml"))
}
