// Package recipe loads the discovery configuration, toast-recipe.json.
//
// A recipe may be written as JSON or YAML and is validated against an
// embedded CUE schema before use:
//
//	{
//	  "directoryPath": "components",
//	  "outputFilePath": "components.star",
//	  "componentPrefix": "x-"
//	}
package recipe

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the recipe file name looked up when none is given.
const DefaultFile = "toast-recipe.json"

//go:embed schema.cue
var schemaData []byte

var recipeSchema = func() cue.Value {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(schemaData, cue.Filename("toast/lib/recipe/schema.cue"))
	if err := v.Err(); err != nil {
		panic(fmt.Errorf("internal error: invalid recipe schema: %v", err))
	}
	return v.LookupPath(cue.ParsePath("#Recipe"))
}()

// Recipe configures component discovery.
type Recipe struct {
	DirectoryPath   string `json:"directoryPath" yaml:"directoryPath"`
	OutputFilePath  string `json:"outputFilePath" yaml:"outputFilePath"`
	ComponentPrefix string `json:"componentPrefix" yaml:"componentPrefix"`

	// Root is the directory the recipe was loaded from. DirectoryPath and
	// OutputFilePath are relative to it.
	Root string `json:"-" yaml:"-"`
}

// Parse decodes and validates a recipe. JSON is accepted as YAML.
func Parse(data []byte, filename string) (*Recipe, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid syntax: %w", filename, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	v := recipeSchema.Context().Encode(raw)
	v = v.Unify(recipeSchema)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s: invalid recipe: %w", filename, err)
	}

	var r Recipe
	if err := v.Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &r, nil
}

// Load reads and validates the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	r.Root = filepath.Dir(path)
	return r, nil
}

// ComponentDir returns DirectoryPath resolved against Root.
func (r *Recipe) ComponentDir() string {
	return filepath.Join(r.Root, r.DirectoryPath)
}

// OutputFile returns OutputFilePath resolved against Root.
func (r *Recipe) OutputFile() string {
	return filepath.Join(r.Root, r.OutputFilePath)
}
