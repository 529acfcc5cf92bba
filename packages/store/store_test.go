package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-mendez/restflow/packages/chain"
	"github.com/ariel-mendez/restflow/packages/httpx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := Open(t.TempDir())
	require.NoError(t, s.Init())
	return s
}

func TestInitScaffoldsWorkspace(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	require.NoError(t, s.Init())

	assert.DirExists(t, filepath.Join(dir, "collections"))
	assert.FileExists(t, filepath.Join(dir, "globals.yaml"))
	assert.FileExists(t, filepath.Join(dir, "secrets.yaml"))

	// Re-running must not clobber existing files.
	require.NoError(t, s.SetGlobal("base_url", "https://api.example.com"))
	require.NoError(t, s.Init())
	vars, err := s.GlobalVars()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", vars["base_url"])
}

func TestGlobalVars(t *testing.T) {
	s := newTestStore(t)

	vars, err := s.GlobalVars()
	require.NoError(t, err)
	assert.Empty(t, vars)

	require.NoError(t, s.SetGlobal("base_url", "https://api.example.com"))
	require.NoError(t, s.SetGlobal("retries", 3))

	vars, err = s.GlobalVars()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", vars["base_url"])
	assert.Equal(t, 3, vars["retries"])

	require.NoError(t, s.UnsetGlobal("retries"))
	vars, err = s.GlobalVars()
	require.NoError(t, err)
	assert.NotContains(t, vars, "retries")
}

func TestGlobalVarsMissingFile(t *testing.T) {
	s := Open(t.TempDir()) // no Init

	vars, err := s.GlobalVars()
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestEnvironments(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetEnvVar("myapi", "staging", "host", "staging.example.com"))
	require.NoError(t, s.SetEnvVar("myapi", "prod", "host", "example.com"))

	envs, err := s.ListEnvironments("myapi")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "staging"}, envs)

	// No active environment yet.
	active, err := s.ActiveEnvironment("myapi")
	require.NoError(t, err)
	assert.Empty(t, active)

	vars, err := s.CollectionEnvVars("myapi")
	require.NoError(t, err)
	assert.Empty(t, vars)

	require.NoError(t, s.SetActiveEnvironment("myapi", "staging"))

	active, err = s.ActiveEnvironment("myapi")
	require.NoError(t, err)
	assert.Equal(t, "staging", active)

	vars, err = s.CollectionEnvVars("myapi")
	require.NoError(t, err)
	assert.Equal(t, "staging.example.com", vars["host"])
}

func TestCollectionEnvVarsEmptyCases(t *testing.T) {
	s := newTestStore(t)

	vars, err := s.CollectionEnvVars("")
	require.NoError(t, err)
	assert.Empty(t, vars)

	vars, err = s.CollectionEnvVars("nonexistent")
	require.NoError(t, err)
	assert.Empty(t, vars)

	// Active environment points at a file that does not exist.
	require.NoError(t, s.SetActiveEnvironment("myapi", "ghost"))
	vars, err = s.CollectionEnvVars("myapi")
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestSaveAndFetchRequests(t *testing.T) {
	s := newTestStore(t)

	req := &chain.RequestDef{
		Name:    "login",
		Method:  "POST",
		URL:     "{{base_url}}/login",
		Headers: map[string]string{"Content-Type": "application/json"},
		Extract: map[string]string{"token": "body.access_token"},
	}
	require.NoError(t, s.SaveRequest("myapi", req))

	got, err := s.RequestByName("myapi", "login")
	require.NoError(t, err)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "{{base_url}}/login", got.URL)
	assert.Equal(t, "body.access_token", got.Extract["token"])

	// Saving under the same name replaces in place.
	req.URL = "{{base_url}}/v2/login"
	require.NoError(t, s.SaveRequest("myapi", req))

	list, err := s.ListRequests("myapi")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "{{base_url}}/v2/login", list[0].URL)

	_, err = s.RequestByName("myapi", "logout")
	assert.ErrorIs(t, err, ErrRequestNotFound)

	assert.Error(t, s.SaveRequest("myapi", &chain.RequestDef{Method: "GET"}))
}

func TestListCollections(t *testing.T) {
	s := newTestStore(t)

	names, err := s.ListCollections()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.SaveRequest("beta", &chain.RequestDef{Name: "r", Method: "GET", URL: "https://b"}))
	require.NoError(t, s.SaveRequest("alpha", &chain.RequestDef{Name: "r", Method: "GET", URL: "https://a"}))

	names, err = s.ListCollections()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestResolveAuth(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveAuth("github", &httpx.Auth{Kind: httpx.AuthBearer, Token: "{{gh_token}}"}))
	require.NoError(t, s.SaveAuth("internal", &httpx.Auth{Kind: httpx.AuthBasic, Username: "svc", Password: "pw"}))

	auth, err := s.ResolveAuth("github")
	require.NoError(t, err)
	assert.Equal(t, httpx.AuthBearer, auth.Kind)
	assert.Equal(t, "{{gh_token}}", auth.Token)

	auth, err = s.ResolveAuth("internal")
	require.NoError(t, err)
	assert.Equal(t, httpx.AuthBasic, auth.Kind)
	assert.Equal(t, "svc", auth.Username)

	_, err = s.ResolveAuth("missing")
	assert.ErrorIs(t, err, ErrAuthNotFound)
}

func TestResolveAuthUnknownKind(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), "secrets.yaml")
	content := "legacy:\n  kind: oauth2\n  token: t\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	auth, err := s.ResolveAuth("legacy")
	require.NoError(t, err)
	assert.Equal(t, httpx.AuthUnrecognized, auth.Kind)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "API_KEY=abc123\nBASE_URL=https://api.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	vars, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", vars["API_KEY"])
	assert.Equal(t, "https://api.example.com", vars["BASE_URL"])

	_, err = LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
