package http

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/pbmengine/restclient/pkg/jsonpath"
	"github.com/pbmengine/restclient/pkg/jsonschema"
)

// Collection is a read-only view over decoded JSON content that supports
// gjson path queries, JSONPath lookups and schema validation.
type Collection struct {
	items any
	json  string
}

// NewCollection wraps a copy of decoded content. Nil content is an empty
// object and a scalar is wrapped in a one-element array.
func NewCollection(content any) *Collection {
	items := toArray(copyValue(content))
	data, err := json.Marshal(items)
	if err != nil {
		data = []byte("{}")
	}
	return &Collection{items: items, json: string(data)}
}

// Get queries the collection with gjson path syntax, e.g. "users.#.name".
func (c *Collection) Get(path string) gjson.Result {
	return gjson.Get(c.json, path)
}

// Path extracts a value with a JSONPath expression such as $.users[0].name.
func (c *Collection) Path(expr string) (string, error) {
	return jsonpath.Extract(c.json, expr)
}

// Len returns the number of top-level entries.
func (c *Collection) Len() int {
	switch v := c.items.(type) {
	case map[string]any:
		return len(v)
	case []any:
		return len(v)
	}
	return 0
}

// IsEmpty reports whether the collection has no entries.
func (c *Collection) IsEmpty() bool {
	return c.Len() == 0
}

// Keys returns the top-level keys: sorted object keys, or array indexes.
func (c *Collection) Keys() []string {
	switch v := c.items.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return keys
	case []any:
		keys := make([]string, len(v))
		for i := range v {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	return nil
}

// Has reports whether a top-level key or index exists.
func (c *Collection) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Value returns a copy of the top-level entry for key.
func (c *Collection) Value(key string) (any, bool) {
	value, ok := c.lookup(key)
	return copyValue(value), ok
}

func (c *Collection) lookup(key string) (any, bool) {
	switch v := c.items.(type) {
	case map[string]any:
		value, ok := v[key]
		return value, ok
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	}
	return nil, false
}

// Each calls fn for every top-level entry in Keys order until fn returns
// false.
func (c *Collection) Each(fn func(key string, value any) bool) {
	for _, key := range c.Keys() {
		value, _ := c.lookup(key)
		if !fn(key, copyValue(value)) {
			return
		}
	}
}

// Filter returns a collection of the top-level entries fn accepts. Arrays
// are reindexed.
func (c *Collection) Filter(fn func(key string, value any) bool) *Collection {
	switch v := c.items.(type) {
	case map[string]any:
		out := make(map[string]any)
		for key, value := range v {
			if fn(key, copyValue(value)) {
				out[key] = value
			}
		}
		return NewCollection(out)
	case []any:
		out := make([]any, 0, len(v))
		for i, value := range v {
			if fn(strconv.Itoa(i), copyValue(value)) {
				out = append(out, value)
			}
		}
		return NewCollection(out)
	}
	return NewCollection(nil)
}

// ToArray returns a copy of the underlying maps and slices.
func (c *Collection) ToArray() any {
	return copyValue(c.items)
}

// ToJSON returns the collection as compact JSON.
func (c *Collection) ToJSON() string {
	return c.json
}

// Validate checks the collection against a JSON Schema document.
func (c *Collection) Validate(schema string) (bool, error) {
	return jsonschema.Validate(c.json, schema)
}
