package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pbmengine/restclient/http"
	"github.com/pbmengine/restclient/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req RequestInfo) string
	FormatResponse(resp *http.Response) string
	FormatSummary(s stats.Summary) string
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Payload string            `json:"payloadType,omitempty" yaml:"payloadType,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
}

// ResponseData represents the structured data of an HTTP response
type ResponseData struct {
	StatusCode   int               `json:"statusCode" yaml:"statusCode"`
	Status       string            `json:"status" yaml:"status"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         any               `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseTime int64             `json:"responseTimeMs" yaml:"responseTimeMs"`
}

// SummaryData is the serialized form of stats.Summary, in milliseconds.
type SummaryData struct {
	Count             int64         `json:"count" yaml:"count"`
	Success           int64         `json:"success" yaml:"success"`
	Failed            int64         `json:"failed" yaml:"failed"`
	RequestsPerSecond float64       `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	MinMs             float64       `json:"minMs" yaml:"minMs"`
	MeanMs            float64       `json:"meanMs" yaml:"meanMs"`
	MaxMs             float64       `json:"maxMs" yaml:"maxMs"`
	P50Ms             float64       `json:"p50Ms" yaml:"p50Ms"`
	P90Ms             float64       `json:"p90Ms" yaml:"p90Ms"`
	P95Ms             float64       `json:"p95Ms" yaml:"p95Ms"`
	P99Ms             float64       `json:"p99Ms" yaml:"p99Ms"`
	StatusCodes       map[int]int64 `json:"statusCodes,omitempty" yaml:"statusCodes,omitempty"`
}

// NewRequestData converts a request snapshot for serialization.
func NewRequestData(req RequestInfo) RequestData {
	data := RequestData{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Headers,
	}
	if !req.Payload.IsZero() {
		data.Payload = req.Payload.Kind.String()
		data.Body = req.Payload.Data
		if values, ok := req.Payload.Data.(map[string]any); ok && req.Payload.Kind == http.PayloadMultipart {
			data.Body = multipartSummary(values)
		}
	}
	return data
}

// NewResponseData converts a response for serialization. JSON bodies are
// embedded as values, anything else as text.
func NewResponseData(resp *http.Response) ResponseData {
	headers := make(map[string]string, len(resp.Headers()))
	for key, values := range resp.Headers() {
		headers[key] = strings.Join(values, ", ")
	}

	var body any
	if content := resp.Content(); content != nil {
		body = content
	} else if text := resp.BodyString(); text != "" {
		body = text
	}

	return ResponseData{
		StatusCode:   resp.StatusCode(),
		Status:       resp.Status(),
		Headers:      headers,
		Body:         body,
		ResponseTime: resp.Duration().Milliseconds(),
	}
}

// NewSummaryData converts statistics for serialization.
func NewSummaryData(s stats.Summary) SummaryData {
	return SummaryData{
		Count:             s.Count,
		Success:           s.Success,
		Failed:            s.Failed,
		RequestsPerSecond: s.RequestsPerSecond(),
		MinMs:             millis(s.Min),
		MeanMs:            millis(s.Mean),
		MaxMs:             millis(s.Max),
		P50Ms:             millis(s.P50),
		P90Ms:             millis(s.P90),
		P95Ms:             millis(s.P95),
		P99Ms:             millis(s.P99),
		StatusCodes:       s.StatusCodes,
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req RequestInfo) string {
	return f.marshal(map[string]any{"request": NewRequestData(req)})
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	data := NewResponseData(resp)
	if !f.Verbose {
		data.Headers = nil
	}
	return f.marshal(map[string]any{"response": data})
}

// FormatSummary formats statistics as JSON
func (f *JSONFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(map[string]any{"summary": NewSummaryData(s)})
}

func (f *JSONFormatter) marshal(v any) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal output: %s"}`, err) + "\n"
	}
	return string(output) + "\n"
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req RequestInfo) string {
	return f.marshal(map[string]any{"request": NewRequestData(req)})
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	data := NewResponseData(resp)
	if !f.Verbose {
		data.Headers = nil
	}
	return f.marshal(map[string]any{"response": data})
}

// FormatSummary formats statistics as YAML
func (f *YAMLFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(map[string]any{"summary": NewSummaryData(s)})
}

func (f *YAMLFormatter) marshal(v any) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: failed to marshal output: %s\n", err)
	}
	return "---\n" + string(output)
}

// ParseFormat validates a format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(name)); format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (expected text, json or yaml)", name)
	}
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

func multipartSummary(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case http.MultipartFile:
			out[key] = "@" + v.Filename
		case *http.MultipartFile:
			out[key] = "@" + v.Filename
		default:
			out[key] = v
		}
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
