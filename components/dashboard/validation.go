package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator checks a widget configuration against its definition.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// ConfigError is a configuration the widget schema rejected. Field is the
// JSON pointer of the first offending value ("" for the document root).
type ConfigError struct {
	Definition string
	Field      string
	Err        error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("dashboard: invalid configuration for %s at %s: %v", e.Definition, e.Field, e.Err)
	}
	return fmt.Sprintf("dashboard: invalid configuration for %s: %v", e.Definition, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// JSONSchemaValidator validates configurations with jsonschema. Compiled
// schemas are keyed by their content, so a redefined widget recompiles.
type JSONSchemaValidator struct {
	mu      sync.Mutex
	schemas map[uint64]*jsonschema.Schema
}

func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{schemas: map[uint64]*jsonschema.Schema{}}
}

// Validate accepts anything when the definition has no schema.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	doc, err := asJSONDocument(config)
	if err != nil {
		return fmt.Errorf("dashboard: configuration for %s is not JSON: %w", def.Code, err)
	}
	if err := schema.Validate(doc); err != nil {
		return &ConfigError{Definition: def.Code, Field: firstInvalidField(err), Err: err}
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: schema for %s: %w", def.Code, err)
	}
	key := xxhash.Sum64(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if schema, ok := v.schemas[key]; ok {
		return schema, nil
	}
	url := "widget-" + strconv.FormatUint(key, 16) + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("dashboard: schema for %s: %w", def.Code, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema for %s: %w", def.Code, err)
	}
	v.schemas[key] = schema
	return schema, nil
}

// asJSONDocument converts YAML ints and typed Go slices into the generic
// shapes the validator walks.
func asJSONDocument(config map[string]any) (any, error) {
	if config == nil {
		config = map[string]any{}
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func firstInvalidField(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return ""
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return verr.InstanceLocation
}
