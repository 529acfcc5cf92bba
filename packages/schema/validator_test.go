package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"}
	}
}`

func writeSchema(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(userSchema), 0644))
	return path
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "user.json")
	v := NewValidator(dir)

	t.Run("conforming body", func(t *testing.T) {
		err := v.Validate("user.json", []byte(`{"id": 1, "name": "ada"}`))
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := v.Validate("user.json", []byte(`{"id": 1}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("wrong type", func(t *testing.T) {
		err := v.Validate("user.json", []byte(`{"id": "one", "name": "ada"}`))
		assert.Error(t, err)
	})

	t.Run("body is not json", func(t *testing.T) {
		err := v.Validate("user.json", []byte("plain text"))
		assert.Error(t, err)
	})

	t.Run("schema file missing", func(t *testing.T) {
		err := v.Validate("ghost.json", []byte(`{}`))
		assert.Error(t, err)
	})
}

func TestValidateAbsolutePath(t *testing.T) {
	path := writeSchema(t, t.TempDir(), "user.json")
	v := NewValidator("/somewhere/else")

	err := v.Validate(path, []byte(`{"id": 2, "name": "grace"}`))
	assert.NoError(t, err)
}
