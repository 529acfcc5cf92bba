package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-mendez/restflow/packages/chain"
)

// manifest is the on-disk shape of collections/<name>/collection.yaml.
type manifest struct {
	ActiveEnvironment string             `yaml:"active_environment,omitempty"`
	Requests          []chain.RequestDef `yaml:"requests,omitempty"`
}

func (s *Store) readManifest(collection string) (*manifest, error) {
	var m manifest
	path := filepath.Join(s.collectionDir(collection), collectionFile)
	if err := readYAML(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) writeManifest(collection string, m *manifest) error {
	path := filepath.Join(s.collectionDir(collection), collectionFile)
	return writeYAML(path, m)
}

// ListCollections returns the collection names in the workspace.
func (s *Store) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, collectionsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading collections: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CollectionEnvVars returns the variables of the collection's currently
// active environment. No collection, no active environment or no
// environment file all yield an empty map, never an error.
func (s *Store) CollectionEnvVars(collection string) (map[string]any, error) {
	if collection == "" {
		return map[string]any{}, nil
	}
	m, err := s.readManifest(collection)
	if err != nil {
		return nil, err
	}
	if m.ActiveEnvironment == "" {
		return map[string]any{}, nil
	}
	return s.EnvVars(collection, m.ActiveEnvironment)
}

// EnvVars returns the variables of one named environment.
func (s *Store) EnvVars(collection, env string) (map[string]any, error) {
	vars := make(map[string]any)
	path := filepath.Join(s.collectionDir(collection), envsDir, env+".yaml")
	if err := readYAML(path, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func (s *Store) SetEnvVar(collection, env, name string, value any) error {
	vars, err := s.EnvVars(collection, env)
	if err != nil {
		return err
	}
	vars[name] = value
	path := filepath.Join(s.collectionDir(collection), envsDir, env+".yaml")
	return writeYAML(path, vars)
}

// SetActiveEnvironment switches the collection's active environment
// pointer.
func (s *Store) SetActiveEnvironment(collection, env string) error {
	m, err := s.readManifest(collection)
	if err != nil {
		return err
	}
	m.ActiveEnvironment = env
	return s.writeManifest(collection, m)
}

// ActiveEnvironment returns the collection's active environment name,
// or empty when none is set.
func (s *Store) ActiveEnvironment(collection string) (string, error) {
	m, err := s.readManifest(collection)
	if err != nil {
		return "", err
	}
	return m.ActiveEnvironment, nil
}

// ListEnvironments returns the environment names of a collection.
func (s *Store) ListEnvironments(collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.collectionDir(collection), envsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading environments: %w", err)
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// RequestByName fetches a saved request definition from a collection.
func (s *Store) RequestByName(collection, name string) (*chain.RequestDef, error) {
	m, err := s.readManifest(collection)
	if err != nil {
		return nil, err
	}
	for i := range m.Requests {
		if m.Requests[i].Name == name {
			req := m.Requests[i]
			return &req, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, name)
}

// SaveRequest adds or replaces a request definition in a collection.
func (s *Store) SaveRequest(collection string, req *chain.RequestDef) error {
	if req.Name == "" {
		return fmt.Errorf("request needs a name")
	}
	m, err := s.readManifest(collection)
	if err != nil {
		return err
	}
	for i := range m.Requests {
		if m.Requests[i].Name == req.Name {
			m.Requests[i] = *req
			return s.writeManifest(collection, m)
		}
	}
	m.Requests = append(m.Requests, *req)
	return s.writeManifest(collection, m)
}

// ListRequests returns the saved request definitions of a collection.
func (s *Store) ListRequests(collection string) ([]chain.RequestDef, error) {
	m, err := s.readManifest(collection)
	if err != nil {
		return nil, err
	}
	return m.Requests, nil
}
