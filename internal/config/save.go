package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SavedConfigName is the answer file written when the operator asks to
// keep their responses for the next environment.
const SavedConfigName = "deployment-config.yaml"

// Save writes the collected answers as a YAML override file usable with
// the next run. The file can carry bootstrap credentials, so it is not
// world readable.
func Save(path string, values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
