package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const layoutChangeSchemaName = "layout-change.json"

// layoutChangeSchema describes the body of a settled drag or resize.
const layoutChangeSchema = `{
  "type": "object",
  "required": ["entries"],
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "x", "y", "w", "h"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "x": {"type": "integer", "minimum": 0},
          "y": {"type": "integer", "minimum": 0},
          "w": {"type": "integer", "minimum": 1},
          "h": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`

// LayoutChange is a validated layout change payload.
type LayoutChange struct {
	Entries []WidgetLayoutEntry `json:"entries"`
}

// LayoutChangeValidator validates layout change payloads against a JSON schema.
type LayoutChangeValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewLayoutChangeValidator builds a validator backed by jsonschema v5. The schema is
// compiled on first use.
func NewLayoutChangeValidator() *LayoutChangeValidator {
	return &LayoutChangeValidator{}
}

// Decode validates raw JSON and decodes it into a LayoutChange.
func (v *LayoutChangeValidator) Decode(raw []byte) (LayoutChange, error) {
	schema, err := v.compiled()
	if err != nil {
		return LayoutChange{}, err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return LayoutChange{}, fmt.Errorf("dashboard: decode layout change: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return LayoutChange{}, fmt.Errorf("dashboard: layout change failed validation: %w", err)
	}
	var change LayoutChange
	if err := json.Unmarshal(raw, &change); err != nil {
		return LayoutChange{}, fmt.Errorf("dashboard: decode layout change: %w", err)
	}
	return change, nil
}

func (v *LayoutChangeValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(layoutChangeSchemaName, bytes.NewReader([]byte(layoutChangeSchema))); err != nil {
			v.err = fmt.Errorf("dashboard: load layout schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(layoutChangeSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile layout schema: %w", v.err)
		}
	})
	return v.schema, v.err
}
