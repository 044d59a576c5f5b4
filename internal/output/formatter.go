package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pbmengine/restclient/http"
	"github.com/pbmengine/restclient/internal/stats"
)

// RequestInfo is a snapshot of a request taken before dispatch, since the
// client clears its payload and query parameters once a request is sent.
type RequestInfo struct {
	Method  string
	URL     string
	Headers map[string]string
	Payload http.Payload
}

// DescribeRequest captures what client would send for method and endpoint.
func DescribeRequest(client *http.Client, method, endpoint string) RequestInfo {
	return RequestInfo{
		Method:  strings.ToUpper(method),
		URL:     client.BuildRequestURL(endpoint),
		Headers: client.Headers(),
		Payload: client.Payload(),
	}
}

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool

	colors *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  NewColorScheme(noColor),
	}
}

func (f *Formatter) scheme() *ColorScheme {
	if f.colors == nil {
		f.colors = NewColorScheme(f.NoColor)
	}
	return f.colors
}

// FormatRequest formats an HTTP request for display
func (f *Formatter) FormatRequest(req RequestInfo) string {
	var buf strings.Builder
	colors := f.scheme()

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n", colors.Method.Sprint(req.Method), colors.URL.Sprint(req.URL)))

	if f.Verbose && len(req.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(req.Headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", colors.HeaderKey.Sprint(key), colors.HeaderValue.Sprint(req.Headers[key])))
		}
	}

	if f.Verbose && !req.Payload.IsZero() {
		buf.WriteString(fmt.Sprintf("  Body (%s):\n", req.Payload.Kind))
		buf.WriteString(indent(formatPayload(req.Payload)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder
	colors := f.scheme()

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		colors.Status(resp.StatusCode()).Sprint(resp.Status()),
		resp.Duration().Milliseconds()))

	if f.Verbose {
		headers := resp.Headers()
		keys := make([]string, 0, len(headers))
		for key := range headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		buf.WriteString("  Headers:\n")
		for _, key := range keys {
			for _, value := range headers[key] {
				buf.WriteString(fmt.Sprintf("    %s: %s\n", colors.HeaderKey.Sprint(key), colors.HeaderValue.Sprint(value)))
			}
		}
	}

	if body := resp.BodyString(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(indent(formatJSONString(body)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatSummary formats latency statistics for repeated requests.
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder
	colors := f.scheme()

	buf.WriteString(fmt.Sprintf("%s %d requests, %d succeeded, %d failed (%.1f req/s)\n",
		colors.Label.Sprint("Σ SUMMARY:"), s.Count, s.Success, s.Failed, s.RequestsPerSecond()))
	buf.WriteString(fmt.Sprintf("  Transferred: %s in %s\n", humanize.Bytes(uint64(s.Bytes)), formatDuration(s.Elapsed)))
	buf.WriteString(fmt.Sprintf("  Latency: min=%s mean=%s max=%s\n",
		formatDuration(s.Min), formatDuration(s.Mean), formatDuration(s.Max)))
	buf.WriteString(fmt.Sprintf("  Percentiles: p50=%s p90=%s p95=%s p99=%s\n",
		colors.Highlight.Sprint(formatDuration(s.P50)), formatDuration(s.P90),
		formatDuration(s.P95), colors.Highlight.Sprint(formatDuration(s.P99))))

	if codes := s.SortedStatusCodes(); len(codes) > 0 {
		parts := make([]string, len(codes))
		for i, code := range codes {
			parts[i] = fmt.Sprintf("%s×%d", colors.Status(code).Sprint(code), s.StatusCodes[code])
		}
		buf.WriteString("  Status codes: " + strings.Join(parts, " ") + "\n")
	}

	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}

func formatPayload(payload http.Payload) string {
	switch data := payload.Data.(type) {
	case string:
		return formatJSONString(data)
	case []byte:
		return formatJSONString(string(data))
	}

	data := payload.Data
	if values, ok := payload.Data.(map[string]any); ok {
		switch payload.Kind {
		case http.PayloadFormParams:
			return http.EncodeForm(values)
		case http.PayloadMultipart:
			data = multipartSummary(values)
		}
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload.Data)
	}
	return string(encoded)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
