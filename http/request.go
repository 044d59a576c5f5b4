package http

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// QueryParam is a single query parameter in insertion order.
type QueryParam struct {
	Key   string
	Value any
}

// BuildRequestURL resolves endpoint against the base URL and appends the
// pending query parameters.
//
// A single leading slash is stripped from endpoint. A slash separates the
// base URL and the endpoint unless the base URL is empty or already ends
// with one. No "?" is added when there are no query parameters.
//
// Example:
//
//	c := http.NewClient(http.WithBaseURL("https://test.com")).
//	    SetQueryParam("mode", "sync").
//	    SetQueryParam("test", 12)
//
//	c.BuildRequestURL("users") // https://test.com/users?mode=sync&test=12
func (c *Client) BuildRequestURL(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "/")

	prefix := "/"
	if c.baseURL == "" || strings.HasSuffix(c.baseURL, "/") {
		prefix = ""
	}

	return c.baseURL + prefix + endpoint + c.buildQuery()
}

// RequestURL is BuildRequestURL; it lets callers inspect the URL a verb
// method would use without dispatching.
func (c *Client) RequestURL(endpoint string) string {
	return c.BuildRequestURL(endpoint)
}

func (c *Client) buildQuery() string {
	if c.query.Len() == 0 {
		return ""
	}
	return "?" + EncodeQuery(c.QueryParams())
}

// EncodeQuery encodes params in order using bracketed form encoding:
// booleans become 1/0, nil values are skipped, slices and maps are expanded
// into bracketed keys (tags[0]=a, filter[name]=b).
func EncodeQuery(params []QueryParam) string {
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = appendQueryValue(parts, url.QueryEscape(param.Key), param.Value)
	}
	return strings.Join(parts, "&")
}

// EncodeForm encodes an unordered map with EncodeQuery, keys sorted.
func EncodeForm(values map[string]any) string {
	return EncodeQuery(sortedParams(values))
}

func appendQueryValue(parts []string, key string, value any) []string {
	switch v := value.(type) {
	case nil:
		return parts
	case []any:
		for i, item := range v {
			parts = appendQueryValue(parts, bracketKey(key, strconv.Itoa(i)), item)
		}
		return parts
	case []string:
		for i, item := range v {
			parts = appendQueryValue(parts, bracketKey(key, strconv.Itoa(i)), item)
		}
		return parts
	case []int:
		for i, item := range v {
			parts = appendQueryValue(parts, bracketKey(key, strconv.Itoa(i)), item)
		}
		return parts
	case map[string]any:
		for _, param := range sortedParams(v) {
			parts = appendQueryValue(parts, bracketKey(key, param.Key), param.Value)
		}
		return parts
	case map[string]string:
		nested := make(map[string]any, len(v))
		for k, item := range v {
			nested[k] = item
		}
		return appendQueryValue(parts, key, nested)
	}
	return append(parts, key+"="+url.QueryEscape(formatScalar(value)))
}

func bracketKey(key, sub string) string {
	return key + url.QueryEscape("["+sub+"]")
}

func sortedParams(values map[string]any) []QueryParam {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	params := make([]QueryParam, 0, len(keys))
	for _, key := range keys {
		params = append(params, QueryParam{Key: key, Value: values[key]})
	}
	return params
}
