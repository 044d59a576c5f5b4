package http

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// Option keys understood by HTTPTransport. Keys a transport does not
// recognise are ignored.
const (
	OptionHeaders    = "headers"
	OptionJSON       = "json"
	OptionMultipart  = "multipart"
	OptionFormParams = "form_params"
	OptionBody       = "body"
	OptionTimeout    = "timeout"
	OptionVerify     = "verify"
	OptionAuth       = "auth"
)

// Options holds transport settings. Builder headers and the active payload
// are merged into a flat Options value before it is handed to a Transport.
type Options map[string]any

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for key, value := range o {
		out[key] = value
	}
	return out
}

// Headers returns the headers carried under OptionHeaders.
func (o Options) Headers() map[string]string {
	switch headers := o[OptionHeaders].(type) {
	case map[string]string:
		return headers
	case map[string]any:
		out := make(map[string]string, len(headers))
		for key, value := range headers {
			out[key] = formatScalar(value)
		}
		return out
	}
	return nil
}

// Timeout interprets OptionTimeout. A time.Duration is used as is, numbers
// are seconds and strings are parsed with time.ParseDuration.
func (o Options) Timeout() (time.Duration, error) {
	switch timeout := o[OptionTimeout].(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return timeout, nil
	case int:
		return time.Duration(timeout) * time.Second, nil
	case int64:
		return time.Duration(timeout) * time.Second, nil
	case float64:
		return time.Duration(timeout * float64(time.Second)), nil
	case string:
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("unsupported timeout type %T", timeout)
	}
}

// Verify reports whether TLS certificates should be verified. It defaults to
// true when OptionVerify is absent.
func (o Options) Verify() bool {
	verify, ok := o[OptionVerify].(bool)
	return !ok || verify
}

// Auth returns the credentials stored under OptionAuth, if any.
func (o Options) Auth() (Auth, bool) {
	switch auth := o[OptionAuth].(type) {
	case Auth:
		return auth, true
	case *Auth:
		if auth != nil {
			return *auth, true
		}
	}
	return Auth{}, false
}

// AuthScheme selects how Auth credentials are presented to the server.
type AuthScheme string

const (
	AuthBasic  AuthScheme = "basic"
	AuthDigest AuthScheme = "digest"
)

// Auth carries username/password credentials for the auth option.
type Auth struct {
	Username string
	Password string
	Scheme   AuthScheme
}

// PayloadKind identifies the body encoding of a Payload.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadJSON
	PayloadMultipart
	PayloadFormParams
)

// OptionKey returns the Options key the payload is merged under.
func (k PayloadKind) OptionKey() string {
	switch k {
	case PayloadJSON:
		return OptionJSON
	case PayloadMultipart:
		return OptionMultipart
	case PayloadFormParams:
		return OptionFormParams
	}
	return ""
}

func (k PayloadKind) String() string {
	if key := k.OptionKey(); key != "" {
		return key
	}
	return "none"
}

// Payload is the request body of a Client. Only one kind is active at a time.
type Payload struct {
	Kind PayloadKind
	Data any
}

// IsZero reports whether no payload is set.
func (p Payload) IsZero() bool {
	return p.Kind == PayloadNone
}

// MultipartFile is a multipart payload value sent as a file part.
type MultipartFile struct {
	Filename string
	Content  io.Reader
}

// formatScalar renders a query or form value. Booleans become 1 or 0.
func formatScalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
