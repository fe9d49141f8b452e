package schema

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator holds a compiled shape and checks untyped input against it.
// Compilation happens once at registration time; Validate is safe for
// concurrent use and has no side effects.
type Validator struct {
	shape    Shape
	compiled *jsonschema.Schema
}

// Compile renders the shape to a JSON Schema document and compiles it.
// A malformed shape (unknown type, duplicate field) is a programming
// defect and fails here, before the process starts serving.
func Compile(shape Shape) (*Validator, error) {
	doc, err := shape.document()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling shape document")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const resourceID = "assetgate://shape.json"
	if err := compiler.AddResource(resourceID, bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "adding shape resource")
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, errors.Wrap(err, "compiling shape")
	}
	return &Validator{shape: shape, compiled: compiled}, nil
}

// MustCompile is Compile for startup-time shape literals; it panics on a
// malformed shape.
func MustCompile(shape Shape) *Validator {
	v, err := Compile(shape)
	if err != nil {
		panic(err)
	}
	return v
}

// Shape returns the declared shape.
func (v *Validator) Shape() Shape {
	return v.shape
}

// Validate checks raw JSON input against the compiled shape. On success it
// returns the decoded object. On failure it returns a *ValidationError
// enumerating every violated constraint. Types are checked strictly: a
// numeric string never passes an integer field.
func (v *Validator) Validate(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ValidationError{
			Violations: []FieldViolation{{Constraint: "json", Message: "input is not valid JSON"}},
			Cause:      errors.Wrap(err, "decoding input"),
		}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &ValidationError{
			Violations: []FieldViolation{{Constraint: "type", Message: "input must be a JSON object"}},
		}
	}
	if err := v.compiled.Validate(decoded); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			return nil, fromJSONSchemaError(valErr)
		}
		return nil, &ValidationError{
			Violations: []FieldViolation{{Constraint: "schema", Message: err.Error()}},
			Cause:      err,
		}
	}
	return obj, nil
}
