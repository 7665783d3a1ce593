package templates

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/octopize/avatar-deploy/pkg/versioning"
)

// LocalProvider copies a template bundle from a directory on disk,
// typically a checkout of the deployment repository or a test fixture.
// The source must mirror the bundle layout (manifest paths relative to
// the source root).
type LocalProvider struct {
	// Source is the directory to copy from.
	Source string
	// ToolVersion overrides the compatibility version (tests only).
	ToolVersion string
}

// NewLocalProvider creates a provider copying from source.
func NewLocalProvider(source string) *LocalProvider {
	return &LocalProvider{Source: source, ToolVersion: versioning.ToolVersion}
}

// Resolve copies the source tree into a staging directory, verifies it,
// and atomically installs it as the cache.
func (p *LocalProvider) Resolve(ctx context.Context, outputDir string) (*Bundle, error) {
	toolVersion := p.ToolVersion
	if toolVersion == "" {
		toolVersion = versioning.ToolVersion
	}

	info, err := os.Stat(p.Source)
	if os.IsNotExist(err) {
		return nil, &SourceInvalidError{Source: p.Source, Reason: "does not exist"}
	}
	if err != nil {
		return nil, fmt.Errorf("checking template source: %w", err)
	}
	if !info.IsDir() {
		return nil, &SourceInvalidError{Source: p.Source, Reason: "is not a directory"}
	}

	entries, err := os.ReadDir(p.Source)
	if err != nil {
		return nil, fmt.Errorf("reading template source: %w", err)
	}
	if len(entries) == 0 {
		return nil, &SourceInvalidError{Source: p.Source, Reason: "is empty"}
	}

	slog.Debug("copying template bundle", "source", p.Source, "output", outputDir)

	return stage(outputDir, toolVersion, func(tmp string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return copyTree(p.Source, tmp)
	})
}

func copyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, relErr)
		}
		return copyEntry(dst, rel, path, d)
	})
	if err != nil {
		return fmt.Errorf("copying tree: %w", err)
	}
	return nil
}

func copyEntry(dst, rel, srcPath string, d fs.DirEntry) error {
	target := filepath.Join(dst, rel)

	if d.IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcPath, err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", srcPath, err)
	}

	if err := os.WriteFile(target, data, info.Mode()); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
