package catalog

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// groupFileSchema validates the shape of a group file before decoding.
// Definition contents beyond Scope are opaque to the engine and are left
// unconstrained here.
var groupFileSchema = map[string]any{
	"type":     "object",
	"required": []any{"CategoryId", "Name", "Challenges"},
	"properties": map[string]any{
		"CategoryId":  map[string]any{"type": "string", "minLength": 1},
		"Name":        map[string]any{"type": "string"},
		"Description": map[string]any{"type": "string"},
		"Icon":        map[string]any{"type": "string"},
		"Image":       map[string]any{"type": "string"},
		"Challenges": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"Id", "Definition"},
				"properties": map[string]any{
					"Id":               map[string]any{"type": "string", "minLength": 1},
					"Name":             map[string]any{"type": "string"},
					"Description":      map[string]any{"type": "string"},
					"Icon":             map[string]any{"type": "string"},
					"LocationId":       map[string]any{"type": "string"},
					"ParentLocationId": map[string]any{"type": "string"},
					"InclusionContracts": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"Tags": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"Xp": map[string]any{"type": "integer", "minimum": 0},
					"Definition": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"Scope": map[string]any{
								"enum": []any{"session", "profile", "hit"},
							},
							"Context":          map[string]any{"type": "object"},
							"Constants":        map[string]any{"type": "object"},
							"ContextListeners": map[string]any{"type": "object"},
						},
					},
				},
			},
		},
	},
}

var (
	compiledGroupSchema     *jsonschema.Schema
	compileGroupSchemaOnce  sync.Once
	compileGroupSchemaError error
)

// validateGroupFile validates a decoded group file against the schema.
func validateGroupFile(parsed any) error {
	compileGroupSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		const url = "schema://challenge-group.json"
		if err := c.AddResource(url, groupFileSchema); err != nil {
			compileGroupSchemaError = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledGroupSchema, compileGroupSchemaError = c.Compile(url)
	})
	if compileGroupSchemaError != nil {
		return fmt.Errorf("compile group schema: %w", compileGroupSchemaError)
	}
	return compiledGroupSchema.Validate(parsed)
}
