package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pbmengine/restclient/pkg/jsonschema"
)

// Response wraps a transport response. The body is read and decoded once,
// when the Response is created; the Response does not change afterwards.
type Response struct {
	raw        *http.Response
	statusCode int
	status     string
	headers    http.Header
	body       []byte
	content    any
	duration   time.Duration
}

// NewResponse reads and closes the body of raw and decodes it as JSON.
// A body that is not JSON leaves Content nil; only a failed read is an error.
func NewResponse(raw *http.Response) (*Response, error) {
	if raw == nil {
		return nil, errors.New("nil response")
	}

	var body []byte
	if raw.Body != nil {
		defer raw.Body.Close()
		data, err := io.ReadAll(raw.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		body = data
	}

	headers := raw.Header
	if headers == nil {
		headers = make(http.Header)
	}

	return &Response{
		raw:        raw,
		statusCode: raw.StatusCode,
		status:     raw.Status,
		headers:    headers,
		body:       body,
		content:    decodeJSON(body),
	}, nil
}

func decodeJSON(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var content any
	if err := json.Unmarshal(body, &content); err != nil {
		return nil
	}
	return content
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Status returns the status line, e.g. "200 OK".
func (r *Response) Status() string {
	return r.status
}

// IsValid returns true if the status code is in the 2xx range.
func (r *Response) IsValid() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// IsRedirect returns true if the status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.statusCode >= 300 && r.statusCode < 400
}

// IsClientError returns true if the status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.statusCode >= 400 && r.statusCode < 500
}

// IsServerError returns true if the status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.statusCode >= 500 && r.statusCode < 600
}

// IsError returns true for 4xx and 5xx responses.
func (r *Response) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}

// Headers returns a copy of the response headers.
func (r *Response) Headers() http.Header {
	return r.headers.Clone()
}

// Header returns the first value of the named header.
func (r *Response) Header(key string) string {
	return r.headers.Get(key)
}

// Body returns a copy of the raw response body.
func (r *Response) Body() []byte {
	return bytes.Clone(r.body)
}

// BodyString returns the raw response body as text.
func (r *Response) BodyString() string {
	return string(r.body)
}

// Content returns the decoded JSON body, or nil if the body is not JSON.
// Objects decode to map[string]any, arrays to []any and numbers to float64.
func (r *Response) Content() any {
	return copyValue(r.content)
}

// ContentAsArray returns the decoded body as plain maps and slices. Absent
// content yields an empty map and a scalar is wrapped in a one-element slice.
func (r *Response) ContentAsArray() any {
	return toArray(copyValue(r.content))
}

// ContentAsMap returns the decoded body if it is a JSON object and an empty
// map otherwise.
func (r *Response) ContentAsMap() map[string]any {
	if m, ok := r.content.(map[string]any); ok {
		return copyValue(m).(map[string]any)
	}
	return map[string]any{}
}

// ContentAsJSON re-encodes the decoded body as compact JSON with object keys
// sorted.
func (r *Response) ContentAsJSON() string {
	return r.ContentAsCollection().ToJSON()
}

// ContentAsCollection returns the decoded body wrapped in a Collection.
func (r *Response) ContentAsCollection() *Collection {
	return NewCollection(r.content)
}

// Decode unmarshals the raw body into v.
//
// Example:
//
//	var users []User
//	if err := resp.Decode(&users); err != nil {
//	    return err
//	}
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.body, v)
}

// ValidateSchema validates the raw body against a JSON Schema document.
func (r *Response) ValidateSchema(schema string) (bool, error) {
	return jsonschema.Validate(r.BodyString(), schema)
}

// Raw returns the transport response. Its body has already been consumed.
func (r *Response) Raw() *http.Response {
	return r.raw
}

// Duration returns the time the client spent waiting for the transport.
func (r *Response) Duration() time.Duration {
	return r.duration
}

// copyValue deep-copies a decoded JSON tree. Scalars are returned as is.
func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	}
	return value
}

func toArray(content any) any {
	switch v := content.(type) {
	case nil:
		return map[string]any{}
	case map[string]any, []any:
		return v
	default:
		return []any{v}
	}
}
