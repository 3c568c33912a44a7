package mount

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ExportJSON renders d as indented JSON.
func ExportJSON(d Descriptor) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mount descriptor: %w", err)
	}
	return data, nil
}

// ExportYAML renders d as YAML with the same nesting as the JSON form.
func ExportYAML(d Descriptor) ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mount descriptor as yaml: %w", err)
	}
	return data, nil
}
