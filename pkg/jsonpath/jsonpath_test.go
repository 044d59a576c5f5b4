package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `{
	"name": "John Doe",
	"age": 30,
	"address": {"city": "Anytown", "zip code": "12345"},
	"phones": [
		{"type": "home", "number": "555-1234"},
		{"type": "work", "number": "555-5678"}
	],
	"active": true,
	"scores": [10, 20, 30, 40],
	"metadata": null,
	"a.b": "dotted"
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{name: "Simple property", path: "$.name", expected: "John Doe"},
		{name: "Numeric property", path: "$.age", expected: "30"},
		{name: "Boolean property", path: "$.active", expected: "true"},
		{name: "Nested property", path: "$.address.city", expected: "Anytown"},
		{name: "Quoted member with space", path: "$.address['zip code']", expected: "12345"},
		{name: "Double quoted member", path: `$["a.b"]`, expected: "dotted"},
		{name: "Array element", path: "$.scores[1]", expected: "20"},
		{name: "Object in array", path: "$.phones[0].number", expected: "555-1234"},
		{name: "Wildcard", path: "$.phones[*].type", expected: `["home","work"]`},
		{name: "Null value", path: "$.metadata", expected: "null"},
		{name: "Object value", path: "$.address", expected: `{"city": "Anytown", "zip code": "12345"}`},
		{name: "Non-existent property", path: "$.nonexistent", expectedError: true},
		{name: "Non-existent nested property", path: "$.address.country", expectedError: true},
		{name: "Array index out of bounds", path: "$.scores[10]", expectedError: true},
		{name: "Unclosed bracket", path: "$.scores[1", expectedError: true},
		{name: "Empty path", path: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Extract(document, tt.path)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}

	_, err := Extract("", "$.name")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	result, err := Lookup(document, "$.scores")
	require.NoError(t, err)
	assert.True(t, result.IsArray())
	assert.Len(t, result.Array(), 4)

	root, err := Lookup(`[1,2]`, "$")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, root.Raw)
}

func TestToGjsonPath(t *testing.T) {
	tests := []struct {
		jsonPath  string
		gjsonPath string
	}{
		{"$.name", "name"},
		{"$['name']", "name"},
		{"$.user.name", "user.name"},
		{"$.items[0]", "items.0"},
		{"$.items[0].name", "items.0.name"},
		{"$.deeply.nested[0].array[1].value", "deeply.nested.0.array.1.value"},
		{"$.items[*].id", "items.#.id"},
		{"$", "@this"},
		{"$[0]", "0"},
		{"$[0].name", "0.name"},
		{"name.first", "name.first"},
		{"$['a.b']", `a\.b`},
	}

	for _, tt := range tests {
		t.Run(tt.jsonPath, func(t *testing.T) {
			result, err := ToGjsonPath(tt.jsonPath)
			require.NoError(t, err)
			assert.Equal(t, tt.gjsonPath, result)
		})
	}

	_, err := ToGjsonPath("$.a..b")
	assert.Error(t, err)
	_, err = ToGjsonPath("$.a[]")
	assert.Error(t, err)
}
