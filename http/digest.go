package http

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DigestChallenge holds the parameters of a WWW-Authenticate: Digest header.
type DigestChallenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	Qop       string
	Algorithm string
}

// DigestAuth computes the Authorization header answering a DigestChallenge.
type DigestAuth struct {
	Username string
	Password string
	Method   string
	URI      string
	Nc       string
	Cnonce   string
	DigestChallenge
}

func basicAuthorization(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// sendDigest sends the request unauthenticated and answers a digest challenge
// if the server returns one. Any other response is returned as is.
func (t *HTTPTransport) sendDigest(ctx context.Context, client *http.Client, req *outgoing, auth Auth) (*http.Response, error) {
	resp, err := t.send(ctx, client, req, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	header := resp.Header.Get("WWW-Authenticate")
	if !strings.HasPrefix(strings.ToLower(header), "digest ") {
		return resp, nil
	}
	challenge := ParseDigestChallenge(header)

	digest := &DigestAuth{
		Username:        auth.Username,
		Password:        auth.Password,
		Method:          req.method,
		URI:             requestURI(req.url),
		DigestChallenge: challenge,
	}
	if digest.Qop != "" {
		if !digest.offersQop("auth") {
			return nil, fmt.Errorf("digest challenge requires unsupported qop %q", challenge.Qop)
		}
		digest.Qop = "auth"
		digest.Nc = "00000001"
		cnonce, err := GenerateCnonce()
		if err != nil {
			return nil, err
		}
		digest.Cnonce = cnonce
	}

	return t.send(ctx, client, req, digest.AuthorizationHeader())
}

// offersQop reports whether qop is one of the options in the challenge's
// comma-separated qop list.
func (c DigestChallenge) offersQop(qop string) bool {
	for _, option := range strings.Split(c.Qop, ",") {
		if strings.EqualFold(strings.TrimSpace(option), qop) {
			return true
		}
	}
	return false
}

func requestURI(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.RequestURI()
}

// ParseDigestChallenge parses the key="value" pairs of a Digest challenge.
// Quoted values may contain commas, e.g. qop="auth,auth-int".
func ParseDigestChallenge(header string) DigestChallenge {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "digest ") {
		header = header[7:]
	}

	params := make(map[string]string)
	for len(header) > 0 {
		header = strings.TrimLeft(header, " ,")
		eq := strings.IndexByte(header, '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(header[:eq]))
		header = strings.TrimLeft(header[eq+1:], " ")

		var value string
		if strings.HasPrefix(header, `"`) {
			end := strings.IndexByte(header[1:], '"')
			if end < 0 {
				value, header = header[1:], ""
			} else {
				value, header = header[1:end+1], header[end+2:]
			}
		} else {
			end := strings.IndexByte(header, ',')
			if end < 0 {
				value, header = header, ""
			} else {
				value, header = header[:end], header[end:]
			}
			value = strings.TrimSpace(value)
		}
		params[key] = value
	}

	return DigestChallenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Opaque:    params["opaque"],
		Qop:       params["qop"],
		Algorithm: params["algorithm"],
	}
}

// Response calculates the digest response hash.
func (d *DigestAuth) Response() string {
	// HA1 = MD5(username:realm:password)
	ha1 := md5Hex(fmt.Sprintf("%s:%s:%s", d.Username, d.Realm, d.Password))
	if strings.EqualFold(d.Algorithm, "MD5-sess") {
		ha1 = md5Hex(fmt.Sprintf("%s:%s:%s", ha1, d.Nonce, d.Cnonce))
	}

	// HA2 = MD5(method:uri)
	ha2 := md5Hex(fmt.Sprintf("%s:%s", d.Method, d.URI))

	if d.Qop == "auth" {
		return md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, d.Nonce, d.Nc, d.Cnonce, d.Qop, ha2))
	}
	return md5Hex(fmt.Sprintf("%s:%s:%s", ha1, d.Nonce, ha2))
}

// AuthorizationHeader returns the Authorization header value.
func (d *DigestAuth) AuthorizationHeader() string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, d.Username),
		fmt.Sprintf(`realm="%s"`, d.Realm),
		fmt.Sprintf(`nonce="%s"`, d.Nonce),
		fmt.Sprintf(`uri="%s"`, d.URI),
		fmt.Sprintf(`response="%s"`, d.Response()),
	}

	if d.Algorithm != "" {
		parts = append(parts, "algorithm="+d.Algorithm)
	}
	if d.Qop != "" {
		parts = append(parts, "qop="+d.Qop, "nc="+d.Nc, fmt.Sprintf(`cnonce="%s"`, d.Cnonce))
	}
	if d.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, d.Opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

// GenerateCnonce generates a random client nonce.
func GenerateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
