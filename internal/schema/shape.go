// Package schema declares tool/prompt input shapes and validates untyped
// input against them. Shapes are rendered into JSON Schema documents and
// compiled once at startup; validation is strict, with no silent type
// coercion.
package schema

import (
	"github.com/cockroachdb/errors"
)

// FieldType enumerates the primitive types a shape field may declare.
type FieldType string

// Supported primitive field types. These map directly onto JSON Schema
// type keywords.
const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
)

func (t FieldType) valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		return true
	}
	return false
}

// Field declares one input field: a primitive or an array of primitives.
type Field struct {
	// Name is the JSON property name.
	Name string
	// Type is the primitive type, or the element type when Array is set.
	Type FieldType
	// Array marks the field as an array of Type elements.
	Array bool
	// Required marks the field as mandatory.
	Required bool
	// Description is surfaced in catalog listings.
	Description string
}

// Shape is an ordered list of field declarations describing an object
// input. The zero value is a shape with no declared fields, which accepts
// any object.
type Shape struct {
	Fields []Field
}

// document renders the shape into a JSON Schema 2020-12 document.
// Undeclared properties are tolerated; declared ones are type-checked
// strictly.
func (s Shape) document() (map[string]any, error) {
	properties := make(map[string]any, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		if f.Name == "" {
			return nil, errors.New("shape field with empty name")
		}
		if !f.Type.valid() {
			return nil, errors.Newf("shape field %q declares unknown type %q", f.Name, f.Type)
		}
		if _, dup := properties[f.Name]; dup {
			return nil, errors.Newf("shape declares field %q twice", f.Name)
		}
		var prop map[string]any
		if f.Array {
			prop = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": string(f.Type)},
			}
		} else {
			prop = map[string]any{"type": string(f.Type)}
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc, nil
}

// Document returns the shape's JSON Schema document for catalog listings.
func (s Shape) Document() (map[string]any, error) {
	return s.document()
}
