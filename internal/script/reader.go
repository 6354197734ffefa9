package script

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteScript writes a script to a YAML file
func WriteScript(sc *Script, path string) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScript reads a script from a YAML file
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}

	return &sc, nil
}
