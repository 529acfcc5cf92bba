// Package schema validates response bodies against JSON schema files
// referenced by chain steps.
package schema

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator resolves schema paths relative to a base directory,
// typically the directory of the chain file.
type Validator struct {
	baseDir string
}

func NewValidator(baseDir string) *Validator {
	return &Validator{baseDir: baseDir}
}

// Validate checks body against the JSON schema at schemaPath. A nil
// return means the body conforms.
func (v *Validator) Validate(schemaPath string, body []byte) error {
	path := schemaPath
	if !filepath.IsAbs(path) && v.baseDir != "" {
		path = filepath.Join(v.baseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving schema path: %w", err)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + abs)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validating against schema %s: %w", schemaPath, err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("schema %s: %s", schemaPath, strings.Join(problems, "; "))
}
