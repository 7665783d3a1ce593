package runner

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/octopize/avatar-deploy/internal/audit"
	"github.com/octopize/avatar-deploy/internal/render"
	"github.com/octopize/avatar-deploy/internal/ui"
	"github.com/octopize/avatar-deploy/pkg/templates"
)

// SecretsDirName holds one file per secret under the output directory.
const SecretsDirName = ".secrets"

// blueprintFile is copied verbatim. It carries !Env tags that Authentik
// resolves at container start, so rendering it would corrupt them.
const blueprintFile = "authentik/octopize-avatar-blueprint.yaml"

// artifactWriter turns the collected configuration into the files a
// deployment needs: rendered templates, copied Authentik assets, and
// the secret files.
type artifactWriter struct {
	bundle  *templates.Bundle
	outDir  string
	printer ui.Printer
	audit   *audit.Logger
	log     *slog.Logger
}

func (w *artifactWriter) generate(values map[string]string) error {
	w.printer.Header("Generating Configuration Files")

	if err := w.render(".env.template", ".env", 0o600, values); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(w.outDir, "nginx"), 0o755); err != nil {
		return fmt.Errorf("creating nginx directory: %w", err)
	}
	if err := w.render("nginx.conf.template", filepath.Join("nginx", "nginx.conf"), 0o644, values); err != nil {
		return err
	}

	if err := w.copyBlueprint(); err != nil {
		return err
	}

	if err := w.render("docker-compose.yml.template", "docker-compose.yml", 0o644, values); err != nil {
		return err
	}

	if err := w.copyDir(filepath.Join("authentik", "custom-templates"), "*.html", "email templates"); err != nil {
		return err
	}
	if err := w.copyDir(filepath.Join("authentik", "branding"), "*", "branding files"); err != nil {
		return err
	}

	w.printer.Println("")
	w.printer.Success("Configuration files generated successfully!")
	return nil
}

// render fills one template from the bundle and writes it under the
// output directory. The .env file carries bootstrap credentials, so
// callers pass a restrictive mode for it.
func (w *artifactWriter) render(templateName, outputName string, mode os.FileMode, values map[string]string) error {
	dest := filepath.Join(w.outDir, outputName)
	if err := render.File(w.bundle.Path(templateName), dest, values, mode); err != nil {
		return fmt.Errorf("rendering %s: %w", templateName, err)
	}

	w.printer.Success("Generated: %s", dest)
	w.audit.ArtifactWritten(outputName)
	w.log.Debug("rendered template", "template", templateName, "dest", dest)
	return nil
}

func (w *artifactWriter) copyBlueprint() error {
	dest := filepath.Join(w.outDir, blueprintFile)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating authentik directory: %w", err)
	}
	if err := copyFile(w.bundle.Path(blueprintFile), dest, 0o644); err != nil {
		return fmt.Errorf("copying Authentik blueprint: %w", err)
	}

	w.printer.Success("Copied: %s", dest)
	w.audit.ArtifactWritten(blueprintFile)
	return nil
}

// copyDir copies the bundle files under relDir matching pattern into
// the same place under the output directory. A bundle without the
// directory is fine; older template sets shipped without these assets.
func (w *artifactWriter) copyDir(relDir, pattern, what string) error {
	srcDir := w.bundle.Path(relDir)
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(srcDir), pattern)
	if err != nil {
		return fmt.Errorf("globbing %s in %s: %w", pattern, relDir, err)
	}

	destDir := filepath.Join(w.outDir, relDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for _, name := range matches {
		src := filepath.Join(srcDir, name)
		if info, err := os.Stat(src); err != nil || info.IsDir() {
			continue
		}
		if err := copyFile(src, filepath.Join(destDir, name), 0o644); err != nil {
			return fmt.Errorf("copying %s: %w", filepath.Join(relDir, name), err)
		}
		w.log.Debug("copied file", "path", filepath.Join(relDir, name))
	}

	w.printer.Success("Copied: %s to %s", what, destDir)
	w.audit.ArtifactWritten(relDir)
	return nil
}

// writeSecrets lands one file per secret in the .secrets directory.
// The directory is operator-only; each file holds the value and a
// single trailing newline.
func writeSecrets(outDir string, secrets map[string]string) error {
	dir := filepath.Join(outDir, SecretsDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating secrets directory: %w", err)
	}
	// A pre-existing directory keeps its old mode, so tighten it.
	if err := os.Chmod(dir, 0o700); err != nil {
		return fmt.Errorf("restricting secrets directory: %w", err)
	}

	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(secrets[name]+"\n"), 0o600); err != nil {
			return &SecretWriteError{Name: name, Err: err}
		}
	}
	return nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
