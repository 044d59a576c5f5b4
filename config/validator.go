package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(messages, "; ")
}

// Validate checks the configuration and returns every problem found, ordered
// by profile name. An empty result means the configuration is valid.
func Validate(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if len(cfg.Profiles) == 0 {
		errors = append(errors, ValidationError{
			Path:    "profiles",
			Message: "at least one profile is required",
		})
	}

	if cfg.Default != "" {
		if _, ok := cfg.Profiles[cfg.Default]; !ok {
			errors = append(errors, ValidationError{
				Path:    "default",
				Message: fmt.Sprintf("profile not found: %s", cfg.Default),
			})
		}
	}

	for _, name := range cfg.ProfileNames() {
		errors = append(errors, validateProfile(name, cfg.Profiles[name])...)
	}
	return errors
}

func validateProfile(name string, profile Profile) ValidationErrors {
	var errors ValidationErrors
	path := "profiles." + name

	if profile.BaseURL == "" {
		errors = append(errors, ValidationError{
			Path:    path + ".baseUrl",
			Message: "baseUrl is required",
		})
	} else if u, err := url.Parse(profile.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Path:    path + ".baseUrl",
			Message: fmt.Sprintf("invalid URL: %s", profile.BaseURL),
		})
	}

	if profile.Timeout != "" {
		if _, err := ParseDurationString(profile.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    path + ".timeout",
				Message: err.Error(),
			})
		}
	}

	if profile.Auth != nil {
		authPath := path + ".auth"
		switch strings.ToLower(profile.Auth.Type) {
		case AuthBearer:
			if profile.Auth.Token == "" {
				errors = append(errors, ValidationError{Path: authPath + ".token", Message: "token is required for bearer auth"})
			}
		case AuthBasic, AuthDigest:
			if profile.Auth.Username == "" {
				errors = append(errors, ValidationError{Path: authPath + ".username", Message: "username is required"})
			}
		default:
			errors = append(errors, ValidationError{
				Path:    authPath + ".type",
				Message: fmt.Sprintf("invalid auth type: %s", profile.Auth.Type),
			})
		}
	}

	return errors
}
