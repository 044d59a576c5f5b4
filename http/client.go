package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

// Client is a fluent request builder. Setters mutate the client and return
// it so calls can be chained.
//
// Headers, options and the base URL persist across requests. The payload and
// query parameters belong to the next request only and are cleared after
// every dispatch, whether it succeeds or fails.
//
// A Client is not safe for concurrent use.
type Client struct {
	transport Transport
	logger    *zap.Logger

	baseURL string
	options Options
	headers map[string]string
	payload Payload
	query   *orderedmap.OrderedMap[string, any]
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new request builder with the given options.
// Without WithTransport the client sends requests through an HTTPTransport.
//
// Example:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithOptions(http.Options{http.OptionTimeout: 30 * time.Second}),
//	)
//
//	resp, err := client.
//	    SetAuthorizationBearer("token").
//	    SetQueryParam("limit", 10).
//	    Get(ctx, "/users")
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		logger:  zap.NewNop(),
		options: make(Options),
		headers: make(map[string]string),
		query:   orderedmap.New[string, any](),
	}

	for _, option := range options {
		option(client)
	}

	if client.transport == nil {
		client.transport = NewHTTPTransport()
	}

	return client
}

// WithTransport sets the transport requests are dispatched through.
// A nil transport selects the default HTTPTransport.
func WithTransport(transport Transport) ClientOption {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithBaseURL sets the initial base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithOptions merges initial transport options.
func WithOptions(options Options) ClientOption {
	return func(c *Client) {
		c.SetOptions(options)
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// SetBaseURL replaces the base URL.
func (c *Client) SetBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// SetOptions merges options into the client options. Existing keys are
// overwritten.
func (c *Client) SetOptions(options Options) *Client {
	for key, value := range options {
		c.options[key] = value
	}
	return c
}

// SetOption sets a single option.
func (c *Client) SetOption(key string, value any) *Client {
	c.options[key] = value
	return c
}

// SetHeaders merges headers into the client headers. Existing keys are
// overwritten.
func (c *Client) SetHeaders(headers map[string]string) *Client {
	for key, value := range headers {
		c.headers[key] = value
	}
	return c
}

// SetHeader sets a single header.
func (c *Client) SetHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

// SetQueryParams merges params into the pending query parameters. New keys
// are appended in sorted order; existing keys keep their position and take
// the new value.
func (c *Client) SetQueryParams(params map[string]any) *Client {
	for _, param := range sortedParams(params) {
		c.query.Set(param.Key, param.Value)
	}
	return c
}

// SetQueryParam sets a single query parameter.
func (c *Client) SetQueryParam(key string, value any) *Client {
	c.query.Set(key, value)
	return c
}

// SetVerifySSL toggles TLS certificate verification.
func (c *Client) SetVerifySSL(verify bool) *Client {
	return c.SetOption(OptionVerify, verify)
}

// SetJSONPayload replaces the payload with a JSON body and sets the
// Content-Type and Accept headers to application/json.
func (c *Client) SetJSONPayload(payload any) *Client {
	c.payload = Payload{Kind: PayloadJSON, Data: payload}
	c.SetHeader("Content-Type", "application/json")
	c.SetHeader("Accept", "application/json")
	return c
}

// SetMultipartPayload replaces the payload with a multipart form. Values may
// be strings, scalars, string slices or MultipartFile.
func (c *Client) SetMultipartPayload(payload map[string]any) *Client {
	c.payload = Payload{Kind: PayloadMultipart, Data: payload}
	c.SetHeader("Content-Type", "multipart/form-data")
	return c
}

// SetFormParamsPayload replaces the payload with a URL-encoded form.
func (c *Client) SetFormParamsPayload(payload map[string]any) *Client {
	c.payload = Payload{Kind: PayloadFormParams, Data: payload}
	c.SetHeader("Content-Type", "application/x-www-form-urlencoded")
	return c
}

// SetAuthorizationBearer sets a bearer token Authorization header.
func (c *Client) SetAuthorizationBearer(token string) *Client {
	return c.SetHeader("Authorization", "Bearer "+token)
}

// SetAuthorizationDigest authenticates with HTTP digest auth.
func (c *Client) SetAuthorizationDigest(username, password string) *Client {
	return c.SetOption(OptionAuth, Auth{Username: username, Password: password, Scheme: AuthDigest})
}

// SetAuthorizationHTTP authenticates with HTTP basic auth.
func (c *Client) SetAuthorizationHTTP(username, password string) *Client {
	return c.SetOption(OptionAuth, Auth{Username: username, Password: password, Scheme: AuthBasic})
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Headers returns a copy of the client headers.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for key, value := range c.headers {
		out[key] = value
	}
	return out
}

// Options returns a copy of the client options.
func (c *Client) Options() Options {
	return c.options.Clone()
}

// QueryParams returns the pending query parameters in insertion order.
func (c *Client) QueryParams() []QueryParam {
	params := make([]QueryParam, 0, c.query.Len())
	for pair := c.query.Oldest(); pair != nil; pair = pair.Next() {
		params = append(params, QueryParam{Key: pair.Key, Value: pair.Value})
	}
	return params
}

// Payload returns the pending payload.
func (c *Client) Payload() Payload {
	return c.payload
}

// ClientOptions returns the options the next request would be sent with:
// the headers, the payload under its kind key and the client options. Client
// options win when a key collides.
func (c *Client) ClientOptions() Options {
	merged := Options{OptionHeaders: c.Headers()}
	if !c.payload.IsZero() {
		merged[c.payload.Kind.OptionKey()] = c.payload.Data
	}
	for key, value := range c.options {
		merged[key] = value
	}
	return merged
}

// Dispatch sends a request for endpoint and wraps the result. Transport
// failures are returned as *RequestError. The payload and query parameters
// are cleared before Dispatch returns.
func (c *Client) Dispatch(ctx context.Context, method, endpoint string) (*Response, error) {
	defer c.clearTransient()

	method = strings.ToUpper(method)
	requestURL := c.BuildRequestURL(endpoint)
	options := c.ClientOptions()

	start := time.Now()
	raw, err := c.transport.Do(ctx, method, requestURL, options)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", requestURL),
			zap.Error(err))
		return nil, &RequestError{Method: method, URL: requestURL, Err: err}
	}

	resp, err := NewResponse(raw)
	if err != nil {
		return nil, &RequestError{Method: method, URL: requestURL, Err: err}
	}
	resp.duration = time.Since(start)

	c.logger.Debug("request dispatched",
		zap.String("method", method),
		zap.String("url", requestURL),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Duration()))

	return resp, nil
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.Dispatch(ctx, http.MethodGet, endpoint)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, endpoint string) (*Response, error) {
	return c.Dispatch(ctx, http.MethodPost, endpoint)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, endpoint string) (*Response, error) {
	return c.Dispatch(ctx, http.MethodPut, endpoint)
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, endpoint string) (*Response, error) {
	return c.Dispatch(ctx, http.MethodPatch, endpoint)
}

// Head sends a HEAD request.
func (c *Client) Head(ctx context.Context, endpoint string) (*Response, error) {
	return c.Dispatch(ctx, http.MethodHead, endpoint)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.Dispatch(ctx, http.MethodDelete, endpoint)
}

// Reset returns a new client without any base URL, headers, options, query
// parameters or payload. It shares the transport and logger of c; c itself
// is left untouched.
func (c *Client) Reset() *Client {
	return NewClient(WithTransport(c.transport), WithLogger(c.logger))
}

func (c *Client) clearTransient() {
	c.payload = Payload{}
	c.query = orderedmap.New[string, any]()
}
