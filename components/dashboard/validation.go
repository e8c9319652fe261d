package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// LeadInputSchema mirrors the backend's lead model: every field is required.
var LeadInputSchema = map[string]any{
	"type": "object",
	"required": []string{
		"name", "email", "phone", "loan_amount", "credit_score", "income",
		"debt_to_income", "loan_type", "stage", "created_date", "last_contact",
	},
	"properties": map[string]any{
		"name":           map[string]any{"type": "string", "minLength": 1},
		"email":          map[string]any{"type": "string", "pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`},
		"phone":          map[string]any{"type": "string", "minLength": 1},
		"loan_amount":    map[string]any{"type": "number", "exclusiveMinimum": 0},
		"credit_score":   map[string]any{"type": "integer", "minimum": 300, "maximum": 850},
		"income":         map[string]any{"type": "number", "minimum": 0},
		"debt_to_income": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"loan_type":      map[string]any{"type": "string", "minLength": 1},
		"stage":          map[string]any{"type": "string", "minLength": 1},
		"created_date":   map[string]any{"type": "string", "minLength": 1},
		"last_contact":   map[string]any{"type": "string", "minLength": 1},
	},
}

const leadInputSchemaName = "lead_input"

// PayloadValidator validates JSON payloads against a named schema.
type PayloadValidator interface {
	Validate(name string, schema map[string]any, payload any) error
}

// JSONSchemaValidator compiles schemas once per name and validates payloads.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate marshals payload to its JSON form and checks it against schema.
func (v *JSONSchemaValidator) Validate(name string, schema map[string]any, payload any) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := v.schemaFor(name, schema)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dashboard: marshal %s payload: %w", name, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("dashboard: normalize %s payload: %w", name, err)
	}
	if err := compiled.Validate(normalized); err != nil {
		return fmt.Errorf("dashboard: %s failed validation: %w", name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string, schema map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", name, err)
	}
	compiled, err = compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// ValidateLeadInput checks a lead creation payload before it reaches the backend.
func ValidateLeadInput(v PayloadValidator, input CreateLeadInput) error {
	if v == nil {
		v = defaultValidator
	}
	return v.Validate(leadInputSchemaName, LeadInputSchema, input)
}

var defaultValidator = NewJSONSchemaValidator()

// IsValidationError reports whether err carries a schema violation.
func IsValidationError(err error) bool {
	var verr *jsonschema.ValidationError
	return errors.As(err, &verr)
}
