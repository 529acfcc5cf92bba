// Package store is the flat-file workspace backing the CLI: global
// variables, collections with switchable environments, saved request
// definitions and named auth secrets. Everything is plain YAML so the
// workspace stays greppable and diffable.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	globalsFile    = "globals.yaml"
	secretsFile    = "secrets.yaml"
	collectionsDir = "collections"
	collectionFile = "collection.yaml"
	envsDir        = "environments"
)

var (
	ErrRequestNotFound    = errors.New("request not found")
	ErrAuthNotFound       = errors.New("auth not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Store is a workspace rooted at a directory.
type Store struct {
	dir string
}

func Open(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Init scaffolds an empty workspace.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Join(s.dir, collectionsDir), 0755); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	for _, name := range []string{globalsFile, secretsFile} {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) collectionDir(collection string) string {
	return filepath.Join(s.dir, collectionsDir, collection)
}

// readYAML loads a YAML file into out. A missing file is not an error;
// out is left at its zero value.
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
