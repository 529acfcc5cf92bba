package store

import (
	"fmt"
	"path/filepath"

	"github.com/ariel-mendez/restflow/packages/httpx"
)

// authSpec is the on-disk shape of one secrets.yaml entry.
type authSpec struct {
	Kind     string `yaml:"kind"`
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Key      string `yaml:"key,omitempty"`
	Value    string `yaml:"value,omitempty"`
}

func (s *Store) readSecrets() (map[string]authSpec, error) {
	specs := make(map[string]authSpec)
	if err := readYAML(filepath.Join(s.dir, secretsFile), &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// ResolveAuth maps a named auth reference to concrete credential
// material. Unknown kinds come back as AuthUnrecognized so the caller
// can warn instead of silently sending unauthenticated.
func (s *Store) ResolveAuth(name string) (*httpx.Auth, error) {
	specs, err := s.readSecrets()
	if err != nil {
		return nil, err
	}
	spec, ok := specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAuthNotFound, name)
	}
	return &httpx.Auth{
		Kind:     httpx.ParseAuthKind(spec.Kind),
		Token:    spec.Token,
		Username: spec.Username,
		Password: spec.Password,
		Key:      spec.Key,
		Value:    spec.Value,
	}, nil
}

// SaveAuth stores or replaces a named auth spec.
func (s *Store) SaveAuth(name string, auth *httpx.Auth) error {
	specs, err := s.readSecrets()
	if err != nil {
		return err
	}
	specs[name] = authSpec{
		Kind:     auth.Kind.String(),
		Token:    auth.Token,
		Username: auth.Username,
		Password: auth.Password,
		Key:      auth.Key,
		Value:    auth.Value,
	}
	return writeYAML(filepath.Join(s.dir, secretsFile), specs)
}
