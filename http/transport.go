package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is the client-wide timeout of a default HTTPTransport.
const DefaultTimeout = 30 * time.Second

// Transport performs the network call for a Client. A response with a non-2xx
// status is a response, not an error.
type Transport interface {
	Do(ctx context.Context, method, url string, options Options) (*http.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, method, url string, options Options) (*http.Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, method, url string, options Options) (*http.Response, error) {
	return f(ctx, method, url, options)
}

// HTTPTransport is the default Transport, built on net/http. It understands
// the Option* keys of this package and ignores others.
// HTTPTransport is safe for concurrent use.
type HTTPTransport struct {
	client   *http.Client
	insecure *http.Client
}

// TransportOption is a function that configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// NewHTTPTransport creates a transport with a 30 second client timeout.
func NewHTTPTransport(options ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, option := range options {
		option(t)
	}

	t.insecure = insecureClient(t.client)
	return t
}

// WithHTTPClient sets the *http.Client requests are sent with.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithTransportTimeout sets the client-wide timeout. The timeout option of a
// single request applies on top of it. A client passed to WithHTTPClient is
// copied, not modified.
func WithTransportTimeout(timeout time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		client := *t.client
		client.Timeout = timeout
		t.client = &client
	}
}

// insecureClient copies client with certificate verification disabled. A
// custom RoundTripper that is not an *http.Transport is replaced by a clone
// of http.DefaultTransport.
func insecureClient(client *http.Client) *http.Client {
	base, ok := client.Transport.(*http.Transport)
	if !ok || base == nil {
		base = http.DefaultTransport.(*http.Transport)
	}

	transport := base.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	transport.TLSClientConfig.InsecureSkipVerify = true

	insecure := *client
	insecure.Transport = transport
	return &insecure
}

// outgoing is a fully encoded request that can be sent more than once.
type outgoing struct {
	method      string
	url         string
	headers     map[string]string
	body        []byte
	contentType string
}

// Do sends the request described by options.
func (t *HTTPTransport) Do(ctx context.Context, method, url string, options Options) (*http.Response, error) {
	body, contentType, err := encodeBody(options)
	if err != nil {
		return nil, err
	}

	timeout, err := options.Timeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client := t.client
	if !options.Verify() {
		client = t.insecure
	}

	req := &outgoing{
		method:      method,
		url:         url,
		headers:     options.Headers(),
		body:        body,
		contentType: contentType,
	}

	auth, hasAuth := options.Auth()
	if !hasAuth {
		return t.send(ctx, client, req, "")
	}

	switch auth.Scheme {
	case AuthDigest:
		return t.sendDigest(ctx, client, req, auth)
	case AuthBasic, "":
		return t.send(ctx, client, req, basicAuthorization(auth.Username, auth.Password))
	default:
		return nil, fmt.Errorf("unsupported auth scheme %q", auth.Scheme)
	}
}

// send performs one round trip. The body is read into memory so it stays
// readable after the request context is cancelled.
func (t *HTTPTransport) send(ctx context.Context, client *http.Client, req *outgoing, authorization string) (*http.Response, error) {
	var bodyReader io.Reader
	if req.body != nil {
		bodyReader = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range req.headers {
		if strings.EqualFold(key, "Host") {
			httpReq.Host = value
			continue
		}
		httpReq.Header.Set(key, value)
	}

	// The encoder's content type carries the multipart boundary, so it
	// replaces whatever the caller set.
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	httpResp.Body = io.NopCloser(bytes.NewReader(data))

	return httpResp, nil
}

// encodeBody serialises the payload option. Multipart bodies return their
// boundary content type; other encodings only fill in a missing header.
func encodeBody(options Options) ([]byte, string, error) {
	var present []string
	for _, key := range []string{OptionJSON, OptionFormParams, OptionMultipart, OptionBody} {
		if _, ok := options[key]; ok {
			present = append(present, key)
		}
	}
	if len(present) == 0 {
		return nil, "", nil
	}
	if len(present) > 1 {
		return nil, "", fmt.Errorf("conflicting body options: %s", strings.Join(present, ", "))
	}

	headers := options.Headers()
	switch present[0] {
	case OptionJSON:
		data, err := json.Marshal(options[OptionJSON])
		if err != nil {
			return nil, "", fmt.Errorf("encoding json payload: %w", err)
		}
		return data, defaultContentType(headers, "application/json"), nil

	case OptionFormParams:
		values, err := payloadMap(options[OptionFormParams])
		if err != nil {
			return nil, "", fmt.Errorf("form_params: %w", err)
		}
		return []byte(EncodeForm(values)), defaultContentType(headers, "application/x-www-form-urlencoded"), nil

	case OptionMultipart:
		values, err := payloadMap(options[OptionMultipart])
		if err != nil {
			return nil, "", fmt.Errorf("multipart: %w", err)
		}
		return encodeMultipart(values)

	default:
		switch body := options[OptionBody].(type) {
		case string:
			return []byte(body), "", nil
		case []byte:
			return body, "", nil
		case io.Reader:
			data, err := io.ReadAll(body)
			if err != nil {
				return nil, "", fmt.Errorf("reading body: %w", err)
			}
			return data, "", nil
		default:
			return nil, "", fmt.Errorf("unsupported body type %T", body)
		}
	}
}

func defaultContentType(headers map[string]string, contentType string) string {
	for key := range headers {
		if strings.EqualFold(key, "Content-Type") {
			return ""
		}
	}
	return contentType
}

func payloadMap(value any) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = item
		}
		return out, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("unsupported payload type %T", value)
}

func encodeMultipart(values map[string]any) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, param := range sortedParams(values) {
		if err := writeMultipartField(writer, param.Key, param.Value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}

func writeMultipartField(writer *multipart.Writer, name string, value any) error {
	switch v := value.(type) {
	case MultipartFile:
		return writeMultipartFile(writer, name, v)
	case *MultipartFile:
		if v == nil {
			return nil
		}
		return writeMultipartFile(writer, name, *v)
	case []string:
		for _, item := range v {
			if err := writer.WriteField(name, item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return nil
	case map[string]any, []any:
		return fmt.Errorf("multipart field %q: nested values are not supported", name)
	}
	return writer.WriteField(name, formatScalar(value))
}

func writeMultipartFile(writer *multipart.Writer, name string, file MultipartFile) error {
	if file.Content == nil {
		return errors.New("multipart file " + name + " has no content")
	}
	filename := file.Filename
	if filename == "" {
		filename = name
	}
	part, err := writer.CreateFormFile(name, filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file.Content)
	return err
}
