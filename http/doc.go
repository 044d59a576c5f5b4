// Package http provides a fluent REST client built on a pluggable transport.
//
// A Client accumulates a base URL, headers, transport options, query
// parameters and a body payload through chained setters, then dispatches
// the request with one of the verb methods. Headers, options and the base
// URL persist across requests; the payload and query parameters are cleared
// after every dispatch.
//
// Basic Usage:
//
//	client := http.NewClient(http.WithBaseURL("https://api.example.com"))
//
//	resp, err := client.
//	    SetAuthorizationBearer("token").
//	    SetQueryParam("limit", 10).
//	    Get(ctx, "users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if resp.IsValid() {
//	    fmt.Println(resp.ContentAsMap()["total"])
//	}
//
// Payloads:
//
//	client.SetJSONPayload(map[string]any{"name": "test"}).Post(ctx, "users")
//	client.SetFormParamsPayload(map[string]any{"grant_type": "client_credentials"}).Post(ctx, "oauth/token")
//	client.SetMultipartPayload(map[string]any{
//	    "title": "report",
//	    "file":  http.MultipartFile{Filename: "report.csv", Content: f},
//	}).Post(ctx, "uploads")
//
// Setting a payload replaces the previous one, whatever its kind.
//
// Transports:
//
// Requests go through a Transport. The default HTTPTransport uses net/http
// and understands the Option* keys (timeout, verify, auth, ...). Tests can
// inject a TransportFunc:
//
//	client := http.NewClient(http.WithTransport(http.TransportFunc(
//	    func(ctx context.Context, method, url string, opts http.Options) (*nethttp.Response, error) {
//	        ...
//	    })))
//
// Failed requests return a *RequestError wrapping the transport error.
// A response that is not JSON is not an error: Content returns nil and the
// raw body stays available through Body.
//
// Thread Safety:
//
// Client is not safe for concurrent use. HTTPTransport is.
package http
