// Package config holds the built-in wizard defaults, operator override
// files, and the saved answer file written at the end of a run.
package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults exposes the built-in default answers as dotted-path lookups,
// e.g. "email.smtp.port" or "images.api".
type Defaults struct {
	values map[string]any
}

// LoadDefaults parses the embedded defaults file.
func LoadDefaults() (*Defaults, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(defaultsYAML, &values); err != nil {
		return nil, fmt.Errorf("parsing built-in defaults: %w", err)
	}
	return &Defaults{values: values}, nil
}

// Get returns the default at the dotted path, or "" when absent.
// Scalar values are stringified so YAML booleans and numbers behave
// the same as quoted strings.
func (d *Defaults) Get(path string) string {
	value, ok := d.lookup(path)
	if !ok || value == nil {
		return ""
	}
	if s, isString := value.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// GetBool reports whether the default at the dotted path is the string
// "true".
func (d *Defaults) GetBool(path string) bool {
	return strings.EqualFold(d.Get(path), "true")
}

func (d *Defaults) lookup(path string) (any, bool) {
	var current any = d.values
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
