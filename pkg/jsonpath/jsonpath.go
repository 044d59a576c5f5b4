// Package jsonpath evaluates a practical subset of JSONPath against JSON
// text by translating it to gjson path syntax.
//
// Supported: the root ($), dotted members ($.a.b), bracketed members
// ($['a'] and $["a"]), array indexes ($.a[0]) and the wildcard index
// ($.a[*].b), which collects the field from every element.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup evaluates a JSONPath expression against json.
func Lookup(json, path string) (gjson.Result, error) {
	if json == "" {
		return gjson.Result{}, fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}

	gpath, err := ToGjsonPath(path)
	if err != nil {
		return gjson.Result{}, err
	}

	result := gjson.Get(json, gpath)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// Extract evaluates a JSONPath expression and returns the value as text.
// Strings are returned unquoted, null as "null", objects and arrays as JSON.
func Extract(json, path string) (string, error) {
	result, err := Lookup(json, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ToGjsonPath translates a JSONPath expression, e.g. $.users[0]['first name'],
// to gjson syntax, e.g. users.0.first\ name.
func ToGjsonPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this", nil
	}

	var segments []string
	for i := 0; i < len(path); {
		switch path[i] {
		case '.':
			i++
			end := i
			for end < len(path) && path[end] != '.' && path[end] != '[' {
				end++
			}
			if end == i {
				return "", fmt.Errorf("invalid JSONPath %q: empty member at offset %d", path, i)
			}
			segments = append(segments, escapeSegment(path[i:end]))
			i = end

		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("invalid JSONPath %q: unclosed bracket", path)
			}
			inner := strings.TrimSpace(path[i+1 : i+end])
			i += end + 1

			switch {
			case inner == "*":
				segments = append(segments, "#")
			case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
				segments = append(segments, escapeSegment(inner[1:len(inner)-1]))
			case inner == "":
				return "", fmt.Errorf("invalid JSONPath %q: empty brackets", path)
			default:
				segments = append(segments, inner)
			}

		default:
			// Member without a leading dot, e.g. "name" in "name.first".
			end := i
			for end < len(path) && path[end] != '.' && path[end] != '[' {
				end++
			}
			segments = append(segments, escapeSegment(path[i:end]))
			i = end
		}
	}

	return strings.Join(segments, "."), nil
}

// escapeSegment escapes characters that gjson treats as path syntax.
func escapeSegment(s string) string {
	return gjson.Escape(s)
}
