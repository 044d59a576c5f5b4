package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `{
	"type": "object",
	"properties": {
		"name": { "type": "string" },
		"age": { "type": "integer" }
	},
	"required": ["name"]
}`

const itemsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"id": { "type": "integer" },
			"name": { "type": "string" }
		},
		"required": ["id"]
	}
}`

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		schema        string
		json          string
		expectedValid bool
		expectedError bool
	}{
		{
			name:          "Valid simple object",
			schema:        userSchema,
			json:          `{"name": "John Doe", "age": 30}`,
			expectedValid: true,
		},
		{
			name:   "Invalid - missing required property",
			schema: userSchema,
			json:   `{"age": 30}`,
		},
		{
			name:   "Invalid - wrong type",
			schema: userSchema,
			json:   `{"name": "John Doe", "age": "thirty"}`,
		},
		{
			name:          "Valid array",
			schema:        itemsSchema,
			json:          `[{"id": 1, "name": "Item 1"}, {"id": 2, "name": "Item 2"}]`,
			expectedValid: true,
		},
		{
			name:   "Invalid array item",
			schema: itemsSchema,
			json:   `[{"id": 1, "name": "Item 1"}, {"name": "Missing ID"}]`,
		},
		{
			name:   "Invalid email format",
			schema: `{"type": "object", "properties": {"email": {"type": "string", "format": "email"}}}`,
			json:   `{"email": "not-an-email"}`,
		},
		{
			name:          "Valid date format",
			schema:        `{"type": "object", "properties": {"date": {"type": "string", "format": "date"}}}`,
			json:          `{"date": "2023-01-01"}`,
			expectedValid: true,
		},
		{
			name:          "Invalid schema",
			schema:        `{"type": "invalid-type"}`,
			json:          `{}`,
			expectedError: true,
		},
		{
			name:          "Malformed schema",
			schema:        `{"type":`,
			json:          `{}`,
			expectedError: true,
		},
		{
			name:          "Invalid JSON",
			schema:        `{"type": "object"}`,
			json:          `{ invalid json }`,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := Validate(tt.json, tt.schema)
			if tt.expectedError {
				assert.Error(t, err)
				assert.False(t, valid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValid, valid)
		})
	}
}

func TestValidateValue(t *testing.T) {
	valid, err := ValidateValue(map[string]any{"name": "alice"}, userSchema)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = ValidateValue([]any{1.0}, userSchema)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateWithErrors(t *testing.T) {
	tests := []struct {
		name           string
		schema         string
		json           string
		expectedErrors []string
	}{
		{
			name:           "Missing required property",
			schema:         `{"type": "object", "required": ["name"]}`,
			json:           `{}`,
			expectedErrors: []string{"name", "missing properties"},
		},
		{
			name:           "Wrong type",
			schema:         `{"type": "object", "properties": {"age": {"type": "integer"}}}`,
			json:           `{"age": "thirty"}`,
			expectedErrors: []string{"/age", "integer", "string"},
		},
		{
			name: "Multiple errors",
			schema: `{
				"type": "object",
				"properties": {
					"name": { "type": "string", "minLength": 3 },
					"age": { "type": "integer", "minimum": 18 }
				},
				"required": ["name", "age"]
			}`,
			json:           `{"name": "Jo", "age": 16}`,
			expectedErrors: []string{"length must be >= 3", "must be >= 18"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, errs := ValidateWithErrors(tt.json, tt.schema)
			assert.False(t, valid)
			require.NotEmpty(t, errs)

			message := errs.Error()
			for _, expected := range tt.expectedErrors {
				assert.Contains(t, message, expected)
			}
		})
	}
}

func TestValidateWithErrors_Valid(t *testing.T) {
	valid, errs := ValidateWithErrors(`{"name": "ok"}`, userSchema)
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestValidateWithErrors_BadInput(t *testing.T) {
	_, errs := ValidateWithErrors(`{}`, `{"type":`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs.Error(), "invalid schema")

	_, errs = ValidateWithErrors(`{`, userSchema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs.Error(), "invalid JSON")
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "", ValidationErrors{}.Error())
}
