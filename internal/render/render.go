// Package render fills downloaded template files with the answers the
// wizard collected.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// File renders the template at src into dest with the given values and
// file mode. Values the template names but the wizard never collected
// render as empty strings. The output always ends with a newline.
func File(src, dest string, values map[string]string, mode os.FileMode) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	rendered, err := String(filepath.Base(src), string(content), values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, []byte(rendered), mode); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// String renders template text with the given values.
func String(name, text string, values map[string]string) (string, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.FuncMap()).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	out := buf.Bytes()
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return string(out), nil
}
