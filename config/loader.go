package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pbmengine/restclient/http"
)

// Supported auth types.
const (
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthDigest = "digest"
)

// Config represents the top-level configuration file structure.
type Config struct {
	// Default names the profile used when none is requested
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Profiles maps profile names to connection settings
	Profiles map[string]Profile `json:"profiles" yaml:"profiles"`
}

// Profile holds the settings applied to a client before a request.
type Profile struct {
	BaseURL   string            `json:"baseUrl" yaml:"baseUrl"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query     map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Timeout   string            `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	VerifySSL *bool             `json:"verifySsl,omitempty" yaml:"verifySsl,omitempty"`
	Auth      *Auth             `json:"auth,omitempty" yaml:"auth,omitempty"`
}

// Auth describes profile credentials.
type Auth struct {
	// Type is one of bearer, basic or digest
	Type     string `json:"type" yaml:"type"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Load reads, expands and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// Parse decodes configuration data. The format is chosen by the extension
// of path: .json is decoded as JSON, anything else as YAML.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing YAML config: %w", err)
		}
	}

	for name, profile := range cfg.Profiles {
		cfg.Profiles[name] = profile.expand(os.Getenv)
	}
	return &cfg, nil
}

// Profile returns the named profile. An empty name selects the default
// profile, or the only profile when the file defines exactly one.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" && len(c.Profiles) == 1 {
		for only := range c.Profiles {
			name = only
		}
	}
	if name == "" {
		return Profile{}, fmt.Errorf("no profile selected and no default configured (available: %s)",
			strings.Join(c.ProfileNames(), ", "))
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile not found: %s", name)
	}
	return profile, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply configures client with the profile settings. Settings already on
// the client are overwritten where the profile defines them.
func (p Profile) Apply(client *http.Client) error {
	if p.BaseURL != "" {
		client.SetBaseURL(p.BaseURL)
	}
	if len(p.Headers) > 0 {
		client.SetHeaders(p.Headers)
	}
	if len(p.Query) > 0 {
		params := make(map[string]any, len(p.Query))
		for key, value := range p.Query {
			params[key] = value
		}
		client.SetQueryParams(params)
	}

	if p.Timeout != "" {
		timeout, err := ParseDurationString(p.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", p.Timeout, err)
		}
		client.SetOption(http.OptionTimeout, timeout)
	}
	if p.VerifySSL != nil {
		client.SetVerifySSL(*p.VerifySSL)
	}

	if p.Auth == nil {
		return nil
	}
	switch strings.ToLower(p.Auth.Type) {
	case AuthBearer:
		client.SetAuthorizationBearer(p.Auth.Token)
	case AuthBasic:
		client.SetAuthorizationHTTP(p.Auth.Username, p.Auth.Password)
	case AuthDigest:
		client.SetAuthorizationDigest(p.Auth.Username, p.Auth.Password)
	default:
		return fmt.Errorf("unsupported auth type: %s", p.Auth.Type)
	}
	return nil
}

var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${NAME} references using lookup.
func ExpandEnv(input string, lookup func(string) string) string {
	if !strings.Contains(input, "${") {
		return input
	}
	return envReference.ReplaceAllStringFunc(input, func(ref string) string {
		return lookup(ref[2 : len(ref)-1])
	})
}

func (p Profile) expand(lookup func(string) string) Profile {
	p.BaseURL = ExpandEnv(p.BaseURL, lookup)
	p.Headers = expandMap(p.Headers, lookup)
	p.Query = expandMap(p.Query, lookup)
	if p.Auth != nil {
		auth := *p.Auth
		auth.Token = ExpandEnv(auth.Token, lookup)
		auth.Username = ExpandEnv(auth.Username, lookup)
		auth.Password = ExpandEnv(auth.Password, lookup)
		p.Auth = &auth
	}
	return p
}

func expandMap(input map[string]string, lookup func(string) string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ExpandEnv(value, lookup)
	}
	return result
}

// ParseDurationString parses durations like "30s", "1m30s" or "30"
// (plain seconds).
func ParseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(duration, "%d", &seconds); err == nil && fmt.Sprint(seconds) == duration {
		return time.Duration(seconds) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration: %s", duration)
}
