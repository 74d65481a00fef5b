package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// BuildFieldsJSONSchema returns the JSON Schema for structured record data:
// every known field is an optional non-empty string and nothing else is allowed.
func BuildFieldsJSONSchema() map[string]any {
	props := make(map[string]any, len(entity.FieldNames))
	for _, f := range entity.FieldNames {
		props[f] = map[string]any{"type": "string", "minLength": 1}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

var (
	fieldsSchemaOnce sync.Once
	fieldsSchema     *jsonschema.Schema
	fieldsSchemaErr  error
)

func compiledFieldsSchema() (*jsonschema.Schema, error) {
	fieldsSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildFieldsJSONSchema())
		if err != nil {
			fieldsSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("fields.json", bytes.NewReader(b)); err != nil {
			fieldsSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		fieldsSchema, fieldsSchemaErr = compiler.Compile("fields.json")
	})
	return fieldsSchema, fieldsSchemaErr
}

// ValidateFields checks fields against the structured data schema.
func ValidateFields(fields entity.Fields) error {
	schema, err := compiledFieldsSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("fields do not match schema: %w", err)
	}
	return nil
}

// FieldsFromContent parses model output. The recovered object is checked
// against the schema before unknown keys and non-string values are dropped;
// what the check rejects comes back as violations, one "location: message"
// entry each. Only a schema that fails to compile is an error.
func FieldsFromContent(content string) (entity.Fields, []string, error) {
	fields, doc := recoverFields(content)
	if doc == nil {
		return fields, nil, nil
	}
	schema, err := compiledFieldsSchema()
	if err != nil {
		return entity.Fields{}, nil, ParseError("compile schema", err)
	}
	err = schema.Validate(doc)
	if err == nil {
		return fields, nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fields, []string{err.Error()}, nil
	}
	return fields, violations(ve, nil), nil
}

// violations flattens a validation error tree into its leaves.
func violations(ve *jsonschema.ValidationError, out []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, loc+": "+ve.Message)
	}
	for _, c := range ve.Causes {
		out = violations(c, out)
	}
	return out
}
