// Package jsonschema validates JSON documents against JSON Schema.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "schema.json"

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Compile parses and compiles a schema document. Format keywords are
// asserted, so "email" or "date-time" mismatches fail validation.
func Compile(schemaStr string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaResource, strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

// Validate validates a JSON string against a JSON Schema.
// A document that does not satisfy the schema yields (false, nil); an error
// is returned only when the schema or the document cannot be parsed.
func Validate(jsonStr, schemaStr string) (bool, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return false, fmt.Errorf("invalid JSON: %w", err)
	}
	return ValidateValue(data, schemaStr)
}

// ValidateValue validates an already decoded document, as produced by
// encoding/json into an any.
func ValidateValue(data any, schemaStr string) (bool, error) {
	schema, err := Compile(schemaStr)
	if err != nil {
		return false, err
	}
	return schema.Validate(data) == nil, nil
}

// ValidateWithErrors validates a JSON string against a JSON Schema and
// reports every failed constraint.
func ValidateWithErrors(jsonStr, schemaStr string) (bool, ValidationErrors) {
	schema, err := Compile(schemaStr)
	if err != nil {
		return false, ValidationErrors{err}
	}

	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return false, ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}

	err = schema.Validate(data)
	if err == nil {
		return true, nil
	}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return false, extractValidationErrors(validationErr)
	}
	return false, ValidationErrors{err}
}

// extractValidationErrors flattens the cause tree, keeping the leaves.
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return ValidationErrors{fmt.Errorf("validation error at %s: %s", location, err.Message)}
	}

	var errors ValidationErrors
	for _, cause := range err.Causes {
		errors = append(errors, extractValidationErrors(cause)...)
	}
	return errors
}
