package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_SubstitutesValues(t *testing.T) {
	out, err := String("env", "ENV_NAME={{ .ENV_NAME }}\nDB_NAME={{ .DB_NAME }}\n",
		map[string]string{"ENV_NAME": "prod", "DB_NAME": "avatar"})
	require.NoError(t, err)
	assert.Equal(t, "ENV_NAME=prod\nDB_NAME=avatar\n", out)
}

func TestString_MissingValueRendersEmpty(t *testing.T) {
	out, err := String("env", "SENTRY_DSN={{ .SENTRY_DSN }}", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "SENTRY_DSN=\n", out)
}

func TestString_AppendsTrailingNewline(t *testing.T) {
	out, err := String("x", "no newline", nil)
	require.NoError(t, err)
	assert.Equal(t, "no newline\n", out)

	out, err = String("x", "has newline\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "has newline\n", out)
}

func TestString_SprigFunctions(t *testing.T) {
	out, err := String("x", "{{ .ENV_NAME | upper }} {{ .PUBLIC_URL | trimSuffix \"/\" }}",
		map[string]string{"ENV_NAME": "prod", "PUBLIC_URL": "avatar.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "PROD avatar.example.com\n", out)
}

func TestString_ParseError(t *testing.T) {
	_, err := String("broken", "{{ .unclosed", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestFile_WritesWithMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, ".env.template")
	dest := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(src, []byte("ENV_NAME={{ .ENV_NAME }}"), 0o644))

	err := File(src, dest, map[string]string{"ENV_NAME": "staging"}, 0o600)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "ENV_NAME=staging\n", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := File(filepath.Join(dir, "nope.template"), filepath.Join(dir, "out"), nil, 0o644)
	require.Error(t, err)
}
