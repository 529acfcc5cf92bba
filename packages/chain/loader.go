package chain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a chain definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a chain definition from YAML bytes.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing chain file: %w", err)
	}
	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("chain has no steps")
	}
	for i, step := range def.Steps {
		if step.Request == "" && step.URL == "" {
			return nil, fmt.Errorf("step %d: needs either a request reference or an inline url", i+1)
		}
	}
	return &def, nil
}
