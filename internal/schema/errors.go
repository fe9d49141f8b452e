package schema

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldViolation describes one constraint violation found during
// validation: which part of the input broke which schema rule.
type FieldViolation struct {
	// Field is the instance path of the offending value ("/publicKey",
	// "/ids/2"). Empty for document-level violations.
	Field string
	// Constraint is the schema keyword that failed ("required", "type").
	Constraint string
	// Message is the validator's human-readable explanation.
	Message string
}

func (fv FieldViolation) String() string {
	if fv.Field == "" {
		return fmt.Sprintf("%s: %s", fv.Constraint, fv.Message)
	}
	return fmt.Sprintf("%s (%s): %s", fv.Field, fv.Constraint, fv.Message)
}

// ValidationError reports that input did not conform to a shape. It
// enumerates every violation rather than stopping at the first.
type ValidationError struct {
	Violations []FieldViolation
	Cause      error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "input validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "input validation failed: " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// fromJSONSchemaError flattens a jsonschema validation error into field
// violations using the draft 2020-12 basic output format. Branch nodes
// that merely aggregate child failures are skipped.
func fromJSONSchemaError(valErr *jsonschema.ValidationError) *ValidationError {
	out := valErr.BasicOutput()
	violations := make([]FieldViolation, 0, len(out.Errors))
	for _, be := range out.Errors {
		if be.Error == "" || strings.HasPrefix(be.Error, "doesn't validate with") {
			continue
		}
		violations = append(violations, FieldViolation{
			Field:      be.InstanceLocation,
			Constraint: lastKeyword(be.KeywordLocation),
			Message:    be.Error,
		})
	}
	if len(violations) == 0 {
		violations = append(violations, FieldViolation{
			Constraint: "schema",
			Message:    valErr.Message,
		})
	}
	return &ValidationError{Violations: violations, Cause: valErr}
}

// lastKeyword extracts the final schema keyword from a keyword location
// pointer like "/properties/publicKey/type".
func lastKeyword(keywordLocation string) string {
	if keywordLocation == "" {
		return "schema"
	}
	idx := strings.LastIndex(keywordLocation, "/")
	if idx < 0 || idx == len(keywordLocation)-1 {
		return keywordLocation
	}
	return keywordLocation[idx+1:]
}
