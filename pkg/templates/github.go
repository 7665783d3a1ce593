package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"github.com/octopize/avatar-deploy/pkg/retry"
	"github.com/octopize/avatar-deploy/pkg/versioning"
)

const (
	githubRawBase = "https://raw.githubusercontent.com/octopize/avatar-deployment"

	// DefaultBranch is the deployment repository branch templates are
	// fetched from unless overridden.
	DefaultBranch = "main"
)

// GitHubOptions configures a GitHubProvider. The zero value fetches the
// default branch anonymously with the default retry budget.
type GitHubOptions struct {
	// Branch selects the repository branch (default: main).
	Branch string
	// Token authenticates requests when set (GITHUB_TOKEN). Required
	// for private forks of the deployment repository.
	Token string
	// SkipDownload reuses a complete cached bundle without fetching.
	// The cache is still verified and version-gated.
	SkipDownload bool
	// ToolVersion overrides the compatibility version (tests only).
	ToolVersion string
	// BaseURL overrides the raw-content endpoint (tests only).
	BaseURL string
	// Client overrides the HTTP client (tests only).
	Client *http.Client
	// Retry overrides the transient-failure retry policy.
	Retry *retry.Config
}

// GitHubProvider downloads the template bundle from the deployment
// repository's raw content endpoints.
type GitHubProvider struct {
	opts GitHubOptions
}

// NewGitHubProvider creates a provider for the given options.
func NewGitHubProvider(opts GitHubOptions) *GitHubProvider {
	if opts.Branch == "" {
		opts.Branch = DefaultBranch
	}
	if opts.ToolVersion == "" {
		opts.ToolVersion = versioning.ToolVersion
	}
	if opts.BaseURL == "" {
		opts.BaseURL = githubRawBase
	}
	return &GitHubProvider{opts: opts}
}

// Resolve fetches every manifest file into a staging directory and
// atomically installs it as the cache. Transient failures are retried
// with exponential backoff; 404 and auth rejections fail fast.
func (p *GitHubProvider) Resolve(ctx context.Context, outputDir string) (*Bundle, error) {
	if p.opts.SkipDownload && CheckCached(filepath.Join(outputDir, CacheDirName)) {
		slog.Debug("reusing cached template bundle", "dir", outputDir)
		return reuseCached(outputDir, p.opts.ToolVersion)
	}

	client := p.client(ctx)
	retrier := p.retrier()

	return stage(outputDir, p.opts.ToolVersion, func(tmp string) error {
		for _, entry := range RequiredFiles() {
			url := p.fileURL(entry)
			dest := filepath.Join(tmp, entry.Path)

			err := retrier.DoWithContext(ctx, func() error {
				return fetchFile(ctx, client, url, dest)
			})
			if err != nil {
				return err
			}
			slog.Debug("downloaded template file", "path", entry.Path, "url", url)
		}
		return nil
	})
}

func (p *GitHubProvider) fileURL(entry Entry) string {
	switch entry.Category {
	case CategoryDocker:
		return p.opts.BaseURL + path.Join("/", p.opts.Branch, "docker", entry.Path)
	default:
		return p.opts.BaseURL + path.Join("/", p.opts.Branch, "docker", "templates", entry.Path)
	}
}

func (p *GitHubProvider) client(ctx context.Context) *http.Client {
	if p.opts.Client != nil {
		return p.opts.Client
	}
	if p.opts.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.opts.Token})
		client := oauth2.NewClient(ctx, src)
		client.Timeout = 30 * time.Second
		return client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (p *GitHubProvider) retrier() *retry.Retrier {
	cfg := retry.DefaultConfig()
	if p.opts.Retry != nil {
		cfg = *p.opts.Retry
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = IsTransient
	}
	if cfg.OnRetry == nil {
		cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
			slog.Debug("retrying template download",
				"attempt", attempt, "delay", delay, "error", err)
		}
	}
	return retry.New(cfg)
}

// fetchFile downloads url into dest, classifying failures so the retry
// policy only re-attempts causes that can change.
func fetchFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		// Context cancellation is not a fetch failure to retry.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &FetchError{URL: url, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to the write below.
	case resp.StatusCode == http.StatusNotFound:
		return &FetchError{
			URL:    url,
			Status: resp.StatusCode,
			Err:    errors.New("not found"),
			Hint:   "check the branch name and that the deployment repository layout matches this tool version",
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &FetchError{
			URL:    url,
			Status: resp.StatusCode,
			Err:    errors.New("access denied"),
			Hint:   "set GITHUB_TOKEN to a token with access to the deployment repository",
		}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &FetchError{
			URL:       url,
			Status:    resp.StatusCode,
			Transient: true,
			Err:       fmt.Errorf("server returned %s", resp.Status),
		}
	default:
		return &FetchError{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return &FetchError{URL: url, Transient: true, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
