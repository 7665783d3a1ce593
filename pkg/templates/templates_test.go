package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octopize/avatar-deploy/pkg/retry"
)

// writeBundleFixture lays out a complete bundle under dir.
func writeBundleFixture(t *testing.T, dir, version string) {
	t.Helper()
	for _, entry := range RequiredFiles() {
		path := filepath.Join(dir, entry.Path)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		content := "fixture: " + entry.Path + "\n"
		if entry.Path == VersionFileName {
			content = version + "\n"
		}
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func quickRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestLocalProvider_ResolvesBundle(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()
	writeBundleFixture(t, source, "2.7.0")

	p := NewLocalProvider(source)
	p.ToolVersion = "2.7.0"

	bundle, err := p.Resolve(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, "2.7.0", bundle.Version)
	assert.Equal(t, filepath.Join(output, CacheDirName), bundle.Dir)

	for _, entry := range RequiredFiles() {
		assert.FileExists(t, bundle.Path(entry.Path))
	}

	// No staging leftovers next to the cache.
	entries, err := os.ReadDir(output)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CacheDirName, entries[0].Name())
}

func TestLocalProvider_MissingSource(t *testing.T) {
	p := NewLocalProvider(filepath.Join(t.TempDir(), "nope"))
	_, err := p.Resolve(context.Background(), t.TempDir())

	var sie *SourceInvalidError
	require.ErrorAs(t, err, &sie)
	assert.Contains(t, sie.Error(), "does not exist")
}

func TestLocalProvider_EmptySource(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	_, err := p.Resolve(context.Background(), t.TempDir())

	var sie *SourceInvalidError
	require.ErrorAs(t, err, &sie)
	assert.Contains(t, sie.Error(), "empty")
}

func TestLocalProvider_IncompleteBundleListsMissing(t *testing.T) {
	source := t.TempDir()
	writeBundleFixture(t, source, "2.7.0")
	require.NoError(t, os.Remove(filepath.Join(source, "nginx.conf.template")))
	require.NoError(t, os.Remove(filepath.Join(source, "authentik/branding/logo.png")))

	p := NewLocalProvider(source)
	p.ToolVersion = "2.7.0"
	_, err := p.Resolve(context.Background(), t.TempDir())

	var sie *SourceInvalidError
	require.ErrorAs(t, err, &sie)
	assert.Contains(t, err.Error(), "nginx.conf.template")
	assert.Contains(t, err.Error(), "authentik/branding/logo.png")
}

func TestLocalProvider_IncompatibleVersionKeepsPreviousCache(t *testing.T) {
	output := t.TempDir()

	good := t.TempDir()
	writeBundleFixture(t, good, "2.5.0")
	p := NewLocalProvider(good)
	p.ToolVersion = "2.7.0"
	_, err := p.Resolve(context.Background(), output)
	require.NoError(t, err)

	// A bundle requiring a newer tool must not replace the cache.
	tooNew := t.TempDir()
	writeBundleFixture(t, tooNew, "2.9.0")
	p2 := NewLocalProvider(tooNew)
	p2.ToolVersion = "2.7.0"
	_, err = p2.Resolve(context.Background(), output)

	var ie *IncompatibleError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Error(), "newer tool")

	version, err := ReadBundleVersion(filepath.Join(output, CacheDirName))
	require.NoError(t, err)
	assert.Equal(t, "2.5.0", version, "previous cache must survive a failed resolve")
}

func TestReadBundleVersion_FirstNonEmptyLine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VersionFileName),
		[]byte("\n  2.6.1  \n>=2.0.0,<3.0.0\n"), 0o644))

	v, err := ReadBundleVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, "2.6.1", v)
}

func TestReadBundleVersion_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VersionFileName), []byte("\n\n"), 0o644))

	_, err := ReadBundleVersion(dir)
	var sie *SourceInvalidError
	require.ErrorAs(t, err, &sie)
}

// bundleServer serves a fixture bundle on the raw-content URL layout.
func bundleServer(t *testing.T, version string, interceptor func(w http.ResponseWriter, r *http.Request) bool) *httptest.Server {
	t.Helper()
	content := make(map[string]string)
	for _, entry := range RequiredFiles() {
		var url string
		if entry.Category == CategoryDocker {
			url = "/main/docker/" + entry.Path
		} else {
			url = "/main/docker/templates/" + entry.Path
		}
		if entry.Path == VersionFileName {
			content[url] = version + "\n"
		} else {
			content[url] = "fixture: " + entry.Path + "\n"
		}
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if interceptor != nil && interceptor(w, r) {
			return
		}
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestGitHubProvider_DownloadsBundle(t *testing.T) {
	srv := bundleServer(t, "2.7.0", nil)
	defer srv.Close()

	output := t.TempDir()
	p := NewGitHubProvider(GitHubOptions{
		ToolVersion: "2.7.0",
		BaseURL:     srv.URL,
		Retry:       quickRetry(),
	})

	bundle, err := p.Resolve(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, "2.7.0", bundle.Version)
	for _, entry := range RequiredFiles() {
		assert.FileExists(t, bundle.Path(entry.Path))
	}
}

func TestGitHubProvider_NotFoundFailsFast(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewGitHubProvider(GitHubOptions{
		ToolVersion: "2.7.0",
		BaseURL:     srv.URL,
		Retry:       quickRetry(),
	})

	_, err := p.Resolve(context.Background(), t.TempDir())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.False(t, fe.Transient)
	assert.EqualValues(t, 1, hits.Load(), "definitive failures are not retried")
}

func TestGitHubProvider_AuthFailureNamesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewGitHubProvider(GitHubOptions{
		ToolVersion: "2.7.0",
		BaseURL:     srv.URL,
		Retry:       quickRetry(),
	})

	_, err := p.Resolve(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.False(t, IsTransient(err))
}

func TestGitHubProvider_RetriesTransientFailures(t *testing.T) {
	var failures atomic.Int64
	srv := bundleServer(t, "2.7.0", func(w http.ResponseWriter, r *http.Request) bool {
		// Fail the first two requests, then recover.
		if failures.Load() < 2 {
			failures.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			return true
		}
		return false
	})
	defer srv.Close()

	p := NewGitHubProvider(GitHubOptions{
		ToolVersion: "2.7.0",
		BaseURL:     srv.URL,
		Retry:       quickRetry(),
	})

	bundle, err := p.Resolve(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "2.7.0", bundle.Version)
	assert.EqualValues(t, 2, failures.Load())
}

func TestGitHubProvider_FailedFetchLeavesCacheUntouched(t *testing.T) {
	output := t.TempDir()

	srv := bundleServer(t, "2.6.0", nil)
	p := NewGitHubProvider(GitHubOptions{
		ToolVersion: "2.7.0",
		BaseURL:     srv.URL,
		Retry:       quickRetry(),
	})
	_, err := p.Resolve(context.Background(), output)
	require.NoError(t, err)
	srv.Close()

	// Server is gone; the resolve fails after retries but the earlier
	// cache must still be intact.
	_, err = p.Resolve(context.Background(), output)
	require.Error(t, err)

	version, err := ReadBundleVersion(filepath.Join(output, CacheDirName))
	require.NoError(t, err)
	assert.Equal(t, "2.6.0", version)
}

func TestGitHubProvider_SkipDownloadReusesCache(t *testing.T) {
	output := t.TempDir()
	writeBundleFixture(t, filepath.Join(output, CacheDirName), "2.7.0")

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewGitHubProvider(GitHubOptions{
		ToolVersion:  "2.7.0",
		BaseURL:      srv.URL,
		SkipDownload: true,
		Retry:        quickRetry(),
	})

	bundle, err := p.Resolve(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, "2.7.0", bundle.Version)
	assert.Zero(t, hits.Load(), "cached bundle must not trigger network traffic")
}

func TestGitHubProvider_SkipDownloadStillGatesVersion(t *testing.T) {
	output := t.TempDir()
	writeBundleFixture(t, filepath.Join(output, CacheDirName), "2.9.0")

	p := NewGitHubProvider(GitHubOptions{
		ToolVersion:  "2.7.0",
		SkipDownload: true,
		Retry:        quickRetry(),
	})

	_, err := p.Resolve(context.Background(), output)
	var ie *IncompatibleError
	require.ErrorAs(t, err, &ie)
}

func TestVerifyRequired_CompleteBundle(t *testing.T) {
	dir := t.TempDir()
	writeBundleFixture(t, dir, "2.7.0")
	assert.NoError(t, VerifyRequired(dir))
	assert.True(t, CheckCached(dir))
}

func TestCheckCached_IncompleteBundle(t *testing.T) {
	dir := t.TempDir()
	writeBundleFixture(t, dir, "2.7.0")
	require.NoError(t, os.Remove(filepath.Join(dir, ".env.template")))
	assert.False(t, CheckCached(dir))
}

func TestFetchError_MessageIncludesHint(t *testing.T) {
	err := &FetchError{
		URL:    "https://example.com/x",
		Status: http.StatusForbidden,
		Hint:   "set GITHUB_TOKEN",
	}
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "https://example.com/x"))
	assert.True(t, strings.Contains(msg, "set GITHUB_TOKEN"))
}
