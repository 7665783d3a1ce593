// Package templates resolves the versioned deployment template bundle
// that the configurator fills in. A bundle comes either from the GitHub
// deployment repository or from a local directory, lands in a cache
// under the output directory, and is only installed after its required
// files and declared version have been verified. Resolution is atomic:
// a failed resolve leaves any previously cached bundle untouched.
package templates

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/octopize/avatar-deploy/pkg/versioning"
)

const (
	// CacheDirName is the bundle cache directory under the output dir.
	CacheDirName = ".avatar-templates"
	// VersionFileName declares the bundle version on its first line.
	VersionFileName = ".template-version"
)

// Bundle is a resolved, verified template set.
type Bundle struct {
	// Dir is the cache directory holding the bundle files.
	Dir string
	// Version is the bundle's declared semantic version.
	Version string
}

// Path returns the absolute path of a bundle file.
func (b *Bundle) Path(rel string) string {
	return filepath.Join(b.Dir, rel)
}

// Provider resolves a template bundle into an output directory.
type Provider interface {
	Resolve(ctx context.Context, outputDir string) (*Bundle, error)
}

// ReadBundleVersion reads the declared version from the bundle's
// version file: the first non-empty line, whitespace trimmed. Any
// further lines are ignored.
func ReadBundleVersion(dir string) (string, error) {
	path := filepath.Join(dir, VersionFileName)
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", VersionFileName, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", VersionFileName, err)
	}
	return "", &SourceInvalidError{Source: path, Reason: "version file is empty"}
}

// stage materializes a bundle through fill into a temporary directory,
// verifies it, and swaps it into place as the cache. The previous cache
// survives any failure up to the final swap.
func stage(outputDir, toolVersion string, fill func(tmpDir string) error) (*Bundle, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.MkdirTemp(outputDir, CacheDirName+"-staging-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := fill(tmp); err != nil {
		return nil, err
	}

	version, err := validate(tmp, toolVersion)
	if err != nil {
		return nil, err
	}

	cacheDir := filepath.Join(outputDir, CacheDirName)
	if err := os.RemoveAll(cacheDir); err != nil {
		return nil, fmt.Errorf("clearing previous template cache: %w", err)
	}
	if err := os.Rename(tmp, cacheDir); err != nil {
		return nil, fmt.Errorf("installing template cache: %w", err)
	}

	return &Bundle{Dir: cacheDir, Version: version}, nil
}

// validate checks the manifest and gates the declared version against
// the tool version. Returns the bundle version on success.
func validate(dir, toolVersion string) (string, error) {
	if err := VerifyRequired(dir); err != nil {
		return "", err
	}

	version, err := ReadBundleVersion(dir)
	if err != nil {
		return "", err
	}

	verdict, err := versioning.Check(toolVersion, version)
	if err != nil {
		return "", fmt.Errorf("checking template compatibility: %w", err)
	}
	if !verdict.Compatible {
		return "", &IncompatibleError{
			ToolVersion:     toolVersion,
			TemplateVersion: version,
			Reason:          verdict.Reason,
		}
	}
	return version, nil
}

// reuseCached validates an existing cache and returns it as a bundle.
func reuseCached(outputDir, toolVersion string) (*Bundle, error) {
	cacheDir := filepath.Join(outputDir, CacheDirName)
	version, err := validate(cacheDir, toolVersion)
	if err != nil {
		return nil, err
	}
	return &Bundle{Dir: cacheDir, Version: version}, nil
}
