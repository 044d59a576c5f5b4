package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     strconv.Itoa(status) + " " + http.StatusText(status),
		Header:     http.Header{"Content-Type": {"application/json"}, "X-Multi": {"a", "b"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewResponse(t *testing.T) {
	resp, err := NewResponse(rawResponse(200, `{"name": "test"}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, "200 OK", resp.Status())
	assert.True(t, resp.IsValid())
	assert.Equal(t, map[string]any{"name": "test"}, resp.ContentAsArray())
	assert.Equal(t, map[string]any{"name": "test"}, resp.Content())
	assert.Equal(t, map[string]any{"name": "test"}, resp.ContentAsCollection().ToArray())
	assert.Equal(t, `{"name":"test"}`, resp.ContentAsJSON())
	assert.Equal(t, `{"name": "test"}`, resp.BodyString())
}

func TestNewResponse_Headers(t *testing.T) {
	resp, err := NewResponse(rawResponse(200, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, []string{"a", "b"}, resp.Headers()["X-Multi"])
	assert.Equal(t, "", resp.Header("Non-Existent"))
}

func TestResponse_AccessorsReturnCopies(t *testing.T) {
	resp, err := NewResponse(rawResponse(200, `{"name": "test", "tags": ["a"], "owner": {"id": 1}}`))
	require.NoError(t, err)
	original := resp.ContentAsJSON()

	resp.ContentAsArray().(map[string]any)["name"] = "mutated"
	resp.ContentAsMap()["tags"].([]any)[0] = "mutated"
	resp.Content().(map[string]any)["owner"].(map[string]any)["id"] = 2
	resp.ContentAsCollection().ToArray().(map[string]any)["extra"] = true
	resp.Headers().Set("Content-Type", "text/plain")
	resp.Body()[0] = '['

	assert.Equal(t, original, resp.ContentAsJSON())
	assert.Equal(t, "test", resp.ContentAsMap()["name"])
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Equal(t, byte('{'), resp.Body()[0])
}

func TestNewResponse_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain text", "hello world"},
		{"truncated json", `{"name": `},
		{"empty body", ""},
		{"whitespace", "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewResponse(rawResponse(500, tt.body))
			require.NoError(t, err)

			assert.Nil(t, resp.Content())
			assert.Equal(t, map[string]any{}, resp.ContentAsArray())
			assert.Empty(t, resp.ContentAsMap())
			assert.Equal(t, "{}", resp.ContentAsJSON())
			assert.True(t, resp.ContentAsCollection().IsEmpty())
			assert.Equal(t, tt.body, resp.BodyString())
			assert.Equal(t, 500, resp.StatusCode())
			assert.True(t, resp.IsServerError())
		})
	}
}

func TestNewResponse_ArrayAndScalar(t *testing.T) {
	resp, err := NewResponse(rawResponse(200, `[1, "two", {"three": 3}]`))
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), "two", map[string]any{"three": float64(3)}}, resp.ContentAsArray())
	assert.Empty(t, resp.ContentAsMap())
	assert.Equal(t, `[1,"two",{"three":3}]`, resp.ContentAsJSON())

	resp, err = NewResponse(rawResponse(200, `42`))
	require.NoError(t, err)
	assert.Equal(t, float64(42), resp.Content())
	assert.Equal(t, []any{float64(42)}, resp.ContentAsArray())
	assert.Equal(t, `[42]`, resp.ContentAsJSON())
}

func TestNewResponse_CanonicalJSON(t *testing.T) {
	resp, err := NewResponse(rawResponse(200, `{ "b": 1,  "a": {"d": [true, null], "c": "x"} }`))
	require.NoError(t, err)

	assert.Equal(t, `{"a":{"c":"x","d":[true,null]},"b":1}`, resp.ContentAsJSON())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestNewResponse_ReadError(t *testing.T) {
	raw := &http.Response{StatusCode: 200, Body: io.NopCloser(failingReader{})}

	resp, err := NewResponse(raw)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "connection reset")

	_, err = NewResponse(nil)
	require.Error(t, err)
}

func TestNewResponse_NoBody(t *testing.T) {
	resp, err := NewResponse(&http.Response{StatusCode: 204})
	require.NoError(t, err)

	assert.Nil(t, resp.Content())
	assert.Empty(t, resp.Body())
	assert.NotNil(t, resp.Headers())
	assert.True(t, resp.IsValid())
}

func TestResponse_Decode(t *testing.T) {
	resp, err := NewResponse(rawResponse(200, `{"message":"success","code":200}`))
	require.NoError(t, err)

	var result struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	require.NoError(t, resp.Decode(&result))
	assert.Equal(t, "success", result.Message)
	assert.Equal(t, 200, result.Code)
}

func TestResponse_ValidateSchema(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`

	resp, err := NewResponse(rawResponse(200, `{"name": "test"}`))
	require.NoError(t, err)
	valid, err := resp.ValidateSchema(schema)
	require.NoError(t, err)
	assert.True(t, valid)

	resp, err = NewResponse(rawResponse(200, `{"name": 12}`))
	require.NoError(t, err)
	valid, err = resp.ValidateSchema(schema)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestResponse_StatusMethods(t *testing.T) {
	tests := []struct {
		statusCode    int
		isValid       bool
		isRedirect    bool
		isClientError bool
		isServerError bool
	}{
		{199, false, false, false, false},
		{200, true, false, false, false},
		{201, true, false, false, false},
		{299, true, false, false, false},
		{301, false, true, false, false},
		{302, false, true, false, false},
		{400, false, false, true, false},
		{404, false, false, true, false},
		{499, false, false, true, false},
		{500, false, false, false, true},
		{503, false, false, false, true},
		{599, false, false, false, true},
		{600, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.statusCode), func(t *testing.T) {
			resp := &Response{statusCode: tt.statusCode}

			assert.Equal(t, tt.isValid, resp.IsValid(), "IsValid")
			assert.Equal(t, tt.isRedirect, resp.IsRedirect(), "IsRedirect")
			assert.Equal(t, tt.isClientError, resp.IsClientError(), "IsClientError")
			assert.Equal(t, tt.isServerError, resp.IsServerError(), "IsServerError")
			assert.Equal(t, tt.isClientError || tt.isServerError, resp.IsError(), "IsError")
		})
	}
}
