package store

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GlobalVars returns the workspace-wide variable mapping. A missing
// globals file yields an empty map.
func (s *Store) GlobalVars() (map[string]any, error) {
	vars := make(map[string]any)
	if err := readYAML(filepath.Join(s.dir, globalsFile), &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func (s *Store) SetGlobal(name string, value any) error {
	vars, err := s.GlobalVars()
	if err != nil {
		return err
	}
	vars[name] = value
	return writeYAML(filepath.Join(s.dir, globalsFile), vars)
}

func (s *Store) UnsetGlobal(name string) error {
	vars, err := s.GlobalVars()
	if err != nil {
		return err
	}
	delete(vars, name)
	return writeYAML(filepath.Join(s.dir, globalsFile), vars)
}

// LoadEnvFile reads a .env file and returns its pairs as a variable
// mapping, used to overlay the global layer for a single run.
func LoadEnvFile(path string) (map[string]any, error) {
	pairs, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	vars := make(map[string]any, len(pairs))
	for k, v := range pairs {
		vars[k] = v
	}
	return vars, nil
}
