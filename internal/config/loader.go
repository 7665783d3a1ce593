package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileInvalidError describes an override file this tool cannot use.
// Keys, when set, lists the entries whose values are not flat scalars.
type FileInvalidError struct {
	Path   string
	Reason string
	Keys   []string
}

func (e *FileInvalidError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("config file %s has non-scalar values for keys: %s",
			e.Path, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("config file %s: %s", e.Path, e.Reason)
}

// LoadOverrides reads a YAML file of flat KEY: value pairs that pre-seed
// wizard answers. Values are stringified; nested structures are rejected
// so a misplaced defaults tree fails loudly instead of half-applying.
func LoadOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &FileInvalidError{Path: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if raw == nil {
		return map[string]string{}, nil
	}

	overrides := make(map[string]string, len(raw))
	var badKeys []string
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			overrides[key] = ""
		case string:
			overrides[key] = v
		case bool, int, int64, uint64, float64:
			overrides[key] = fmt.Sprintf("%v", v)
		default:
			badKeys = append(badKeys, key)
		}
	}
	if len(badKeys) > 0 {
		sort.Strings(badKeys)
		return nil, &FileInvalidError{Path: path, Keys: badKeys}
	}
	return overrides, nil
}
