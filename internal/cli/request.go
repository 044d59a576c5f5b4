package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pbmengine/restclient/config"
	"github.com/pbmengine/restclient/http"
	"github.com/pbmengine/restclient/internal/output"
	"github.com/pbmengine/restclient/internal/stats"
	"github.com/pbmengine/restclient/pkg/jsonschema"
)

// requestOptions holds the per-command request flags.
type requestOptions struct {
	headers   []string
	query     []string
	jsonBody  string
	data      string
	form      []string
	multipart []string
	bearer    string
	basic     string
	digest    string
	repeat    int
	rate      float64
	requestID bool
	schema    string
	extract   []string
	fail      bool
}

func newRequestCmd(g *globalOptions, method, short string) *cobra.Command {
	opts := &requestOptions{}

	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " URL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, g, opts, method, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "HTTP header 'Key: Value' (can be used multiple times)")
	flags.StringArrayVarP(&opts.query, "query", "q", nil, "Query parameter key=value (can be used multiple times)")
	flags.StringVarP(&opts.jsonBody, "json", "j", "", "JSON body, or @file to read it from a file")
	flags.StringVarP(&opts.data, "data", "d", "", "Raw request body")
	flags.StringArrayVarP(&opts.form, "form", "f", nil, "URL-encoded form field key=value")
	flags.StringArrayVarP(&opts.multipart, "multipart", "F", nil, "Multipart field key=value, or key=@file to upload a file")
	flags.StringVar(&opts.bearer, "bearer", "", "Bearer token for the Authorization header")
	flags.StringVar(&opts.basic, "basic", "", "Basic auth credentials user:pass")
	flags.StringVar(&opts.digest, "digest", "", "Digest auth credentials user:pass")
	flags.IntVarP(&opts.repeat, "repeat", "n", 1, "Send the request n times and print latency percentiles")
	flags.Float64Var(&opts.rate, "rate", 0, "Maximum requests per second when repeating (0 for unlimited)")
	flags.BoolVar(&opts.requestID, "request-id", false, "Send a fresh X-Request-ID header with every request")
	flags.StringVar(&opts.schema, "schema", "", "Validate the response body against a JSON Schema file")
	flags.StringArrayVarP(&opts.extract, "extract", "x", nil, "Print the value at a JSONPath expression, e.g. $.data[0].id")
	flags.BoolVar(&opts.fail, "fail", false, "Exit with an error on 4xx and 5xx responses")
	cmd.MarkFlagsMutuallyExclusive("json", "data", "form", "multipart")
	cmd.MarkFlagsMutuallyExclusive("bearer", "basic", "digest")

	return cmd
}

func runRequest(cmd *cobra.Command, g *globalOptions, opts *requestOptions, method, target string) error {
	if opts.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if opts.rate < 0 {
		return fmt.Errorf("--rate cannot be negative")
	}

	format, err := output.ParseFormat(g.format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	noColor := g.noColor || !isTerminal(out)
	formatter := output.GetFormatter(format, g.verbose, noColor)

	logger, err := newLogger(g.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client := http.NewClient(http.WithLogger(logger))
	endpoint, urlQuery, err := configureClient(client, g, opts, target)
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}

	recorder := stats.NewRecorder()
	var last *http.Response
	var lastErr error

	for i := 0; i < opts.repeat; i++ {
		if err := limiter.Wait(cmd.Context()); err != nil {
			return err
		}

		cleanup, err := applyRequestData(client, opts, urlQuery)
		if err != nil {
			return err
		}
		if i == 0 {
			fmt.Fprint(out, formatter.FormatRequest(output.DescribeRequest(client, method, endpoint)))
		}

		start := time.Now()
		resp, err := client.Dispatch(cmd.Context(), method, endpoint)
		cleanup()

		if err != nil {
			recorder.RecordFailure(time.Since(start))
			lastErr = err
			if opts.repeat == 1 {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", output.ErrorIcon(noColor), err)
			continue
		}
		recorder.Record(resp.Duration(), resp.StatusCode(), int64(len(resp.Body())))
		last = resp
	}

	if last != nil {
		fmt.Fprint(out, formatter.FormatResponse(last))
	}
	if opts.repeat > 1 {
		fmt.Fprint(out, formatter.FormatSummary(recorder.Summary()))
	}
	if last == nil {
		return fmt.Errorf("all %d requests failed: %w", opts.repeat, lastErr)
	}

	if err := printExtracts(out, last, opts.extract, noColor); err != nil {
		return err
	}
	if opts.schema != "" {
		if err := checkSchema(out, last, opts.schema, noColor); err != nil {
			return err
		}
	}

	if opts.fail && last.IsError() {
		return fmt.Errorf("request failed with status %s", last.Status())
	}
	return nil
}

// configureClient applies the profile and the persistent flags, and
// resolves target against the base URL. It returns the endpoint and the
// query parameters of the profile and of target, which must be set again
// before every dispatch.
func configureClient(client *http.Client, g *globalOptions, opts *requestOptions, target string) (string, []http.QueryParam, error) {
	var profileQuery []http.QueryParam
	if g.configPath != "" {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return "", nil, err
		}
		profile, err := cfg.Profile(g.profile)
		if err != nil {
			return "", nil, err
		}
		if err := profile.Apply(client); err != nil {
			return "", nil, err
		}
		profileQuery = client.QueryParams()
	} else if g.profile != "" {
		return "", nil, errors.New("--profile requires --config")
	}

	if client.BaseURL() == "" || hasScheme(target) {
		baseURL, path := parseURL(target)
		client.SetBaseURL(baseURL)
		target = path
	}
	endpoint, urlQuery := splitQuery(target)

	for _, header := range opts.headers {
		key, value, found := strings.Cut(header, ":")
		if !found || strings.TrimSpace(key) == "" {
			return "", nil, fmt.Errorf("invalid header %q (expected 'Key: Value')", header)
		}
		client.SetHeader(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	switch {
	case opts.bearer != "":
		client.SetAuthorizationBearer(opts.bearer)
	case opts.basic != "":
		username, password, _ := strings.Cut(opts.basic, ":")
		client.SetAuthorizationHTTP(username, password)
	case opts.digest != "":
		username, password, _ := strings.Cut(opts.digest, ":")
		client.SetAuthorizationDigest(username, password)
	}

	if g.insecure {
		client.SetVerifySSL(false)
	}
	if g.timeout > 0 {
		client.SetOption(http.OptionTimeout, g.timeout)
	}
	if opts.data != "" {
		client.SetOption(http.OptionBody, opts.data)
	}

	return endpoint, append(profileQuery, urlQuery...), nil
}

// applyRequestData sets the query parameters and the payload, which the
// client clears after every dispatch. The returned cleanup closes any files
// opened for a multipart upload.
func applyRequestData(client *http.Client, opts *requestOptions, urlQuery []http.QueryParam) (func(), error) {
	noop := func() {}

	if opts.requestID {
		client.SetHeader("X-Request-ID", uuid.New().String())
	}
	for _, param := range urlQuery {
		client.SetQueryParam(param.Key, param.Value)
	}
	for _, pair := range opts.query {
		key, value, err := splitPair(pair)
		if err != nil {
			return noop, err
		}
		client.SetQueryParam(key, value)
	}

	switch {
	case opts.jsonBody != "":
		payload, err := readJSON(opts.jsonBody)
		if err != nil {
			return noop, err
		}
		client.SetJSONPayload(payload)

	case len(opts.form) > 0:
		values := make(map[string]any, len(opts.form))
		for _, pair := range opts.form {
			key, value, err := splitPair(pair)
			if err != nil {
				return noop, err
			}
			values[key] = value
		}
		client.SetFormParamsPayload(values)

	case len(opts.multipart) > 0:
		values, files, err := multipartValues(opts.multipart)
		if err != nil {
			return noop, err
		}
		client.SetMultipartPayload(values)
		return func() {
			for _, f := range files {
				_ = f.Close()
			}
		}, nil
	}

	return noop, nil
}

func multipartValues(pairs []string) (values map[string]any, files []*os.File, err error) {
	defer func() {
		if err != nil {
			for _, f := range files {
				_ = f.Close()
			}
		}
	}()

	values = make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, files, err
		}
		if !strings.HasPrefix(value, "@") {
			values[key] = value
			continue
		}

		path := strings.TrimPrefix(value, "@")
		f, err := os.Open(path)
		if err != nil {
			return nil, files, fmt.Errorf("error opening upload: %w", err)
		}
		files = append(files, f)
		values[key] = http.MultipartFile{Filename: filepath.Base(path), Content: f}
	}
	return values, files, nil
}

func readJSON(value string) (any, error) {
	data := []byte(value)
	if strings.HasPrefix(value, "@") {
		var err error
		data, err = os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("error reading JSON body: %w", err)
		}
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return payload, nil
}

func splitPair(pair string) (string, string, error) {
	key, value, found := strings.Cut(pair, "=")
	if !found || key == "" {
		return "", "", fmt.Errorf("invalid pair %q (expected key=value)", pair)
	}
	return key, value, nil
}

func printExtracts(out io.Writer, resp *http.Response, paths []string, noColor bool) error {
	if len(paths) == 0 {
		return nil
	}

	collection := resp.ContentAsCollection()
	for _, path := range paths {
		value, err := collection.Path(path)
		if err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", output.ErrorIcon(noColor), path, err)
			return fmt.Errorf("extract %s: %w", path, err)
		}
		fmt.Fprintf(out, "%s = %s\n", path, value)
	}
	return nil
}

func checkSchema(out io.Writer, resp *http.Response, schemaPath string, noColor bool) error {
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("error reading schema: %w", err)
	}

	valid, errs := jsonschema.ValidateWithErrors(resp.BodyString(), string(schema))
	if valid {
		fmt.Fprintf(out, "%s response matches schema %s\n", output.SuccessIcon(noColor), schemaPath)
		return nil
	}

	fmt.Fprintf(out, "%s response does not match schema %s\n", output.ErrorIcon(noColor), schemaPath)
	for _, e := range errs {
		fmt.Fprintf(out, "    %s\n", e)
	}
	return fmt.Errorf("schema validation failed: %w", errs)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}
	return logger, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
