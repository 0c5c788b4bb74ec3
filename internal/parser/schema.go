package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var scalar = map[string]any{"type": []string{"string", "number", "integer", "boolean", "null"}}

// lineItemSchema describes the expected output: an array of flat objects
// whose requested fields hold scalar values.
func lineItemSchema(fieldNames []string) map[string]any {
	props := make(map[string]any, len(fieldNames))
	for _, f := range fieldNames {
		props[f] = scalar
	}
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "array",
		"items": map[string]any{
			"type":       "object",
			"properties": props,
		},
	}
}

// ValidateLineItems validates decoded model output against the line item schema.
func ValidateLineItems(v any, fieldNames []string) error {
	b, err := json.Marshal(lineItemSchema(fieldNames))
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("line_items.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("line_items.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
