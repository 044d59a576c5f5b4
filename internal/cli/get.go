package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbmengine/restclient/http"
)

func newGetCmd(g *globalOptions) *cobra.Command {
	return newRequestCmd(g, "GET", "Make a GET request to the specified URL")
}

func newHeadCmd(g *globalOptions) *cobra.Command {
	return newRequestCmd(g, "HEAD", "Make a HEAD request to the specified URL")
}

// parseURL splits a URL into base URL and path. The fragment is dropped
// since it is never sent to the server.
func parseURL(fullURL string) (string, string) {
	// Add scheme if missing
	if !hasScheme(fullURL) {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	// Include user info in the base URL if present
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.EscapedPath()
	if path == "" {
		path = "/"
	}

	if parsedURL.RawQuery != "" {
		path = path + "?" + parsedURL.RawQuery
	}

	return baseURL, path
}

// splitQuery separates the query string of path into ordered parameters.
func splitQuery(path string) (string, []http.QueryParam) {
	path, rawQuery, found := strings.Cut(path, "?")
	if !found || rawQuery == "" {
		return path, nil
	}

	var params []http.QueryParam
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		params = append(params, http.QueryParam{Key: key, Value: value})
	}
	return path, params
}

func hasScheme(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
