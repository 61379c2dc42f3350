// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SchemeHTTPS generates https:// URLs for schemeless inputs.
	SchemeHTTPS Scheme = "https"
	// SchemeHTTP generates http:// URLs for schemeless inputs.
	SchemeHTTP Scheme = "http"
)

var (
	// ErrInvalidScheme is returned when a Scheme value is not recognized.
	ErrInvalidScheme = errors.New("invalid scheme")
	// ErrInvalidNumTabs is returned when num_tabs is below 1.
	ErrInvalidNumTabs = errors.New("invalid num_tabs")
	// ErrInvalidOutputDirPath is returned when an OutputDirPath value is whitespace-only.
	ErrInvalidOutputDirPath = errors.New("invalid output dir path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Scheme is the URL scheme prefixed to schemeless base and search URLs.
	Scheme string

	// InvalidSchemeError is returned when a Scheme value is not recognized.
	// It wraps ErrInvalidScheme for errors.Is() compatibility.
	InvalidSchemeError struct {
		Value Scheme
	}

	// InvalidNumTabsError is returned when num_tabs is below 1.
	// It wraps ErrInvalidNumTabs for errors.Is() compatibility.
	InvalidNumTabsError struct {
		Value int
	}

	// OutputDirPath is a filesystem path compiled elvi are written into.
	// The zero value ("") is valid and means "the current directory".
	OutputDirPath string

	// InvalidOutputDirPathError is returned when an OutputDirPath value is
	// non-empty but whitespace-only.
	InvalidOutputDirPathError struct {
		Value OutputDirPath
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultScheme is used for base and search URLs given without one.
		DefaultScheme Scheme `json:"default_scheme" mapstructure:"default_scheme"`
		// NumTabs pads the elvis banner for 'surfraw -elvi' alignment.
		NumTabs int `json:"num_tabs" mapstructure:"num_tabs"`
		// EnableCompletions controls the completion hook in generated elvi.
		EnableCompletions bool `json:"enable_completions" mapstructure:"enable_completions"`
		// OutputDir is where elvi land when --output is not given.
		OutputDir OutputDirPath `json:"output_dir" mapstructure:"output_dir"`
		// UserAgent is sent when fetching OpenSearch descriptions.
		UserAgent string `json:"user_agent" mapstructure:"user_agent"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the Scheme.
func (s Scheme) String() string { return string(s) }

// IsValid returns whether the Scheme is one of the defined schemes, and a
// list of validation errors if it is not.
func (s Scheme) IsValid() (bool, []error) {
	switch s {
	case SchemeHTTPS, SchemeHTTP:
		return true, nil
	default:
		return false, []error{&InvalidSchemeError{Value: s}}
	}
}

// Error implements the error interface for InvalidSchemeError.
func (e *InvalidSchemeError) Error() string {
	return fmt.Sprintf("invalid scheme %q (valid: https, http)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidSchemeError) Unwrap() error { return ErrInvalidScheme }

// Error implements the error interface for InvalidNumTabsError.
func (e *InvalidNumTabsError) Error() string {
	return fmt.Sprintf("invalid num_tabs %d: must be at least 1", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidNumTabsError) Unwrap() error { return ErrInvalidNumTabs }

// String returns the string representation of the OutputDirPath.
func (p OutputDirPath) String() string { return string(p) }

// IsValid returns whether the OutputDirPath is valid.
// The zero value ("") is valid (means "the current directory").
// Non-zero values must not be whitespace-only.
func (p OutputDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidOutputDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidOutputDirPathError.
func (e *InvalidOutputDirPathError) Error() string {
	return fmt.Sprintf("invalid output dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputDirPathError) Unwrap() error { return ErrInvalidOutputDirPath }

// IsValid returns whether the Config has valid fields.
// It delegates to DefaultScheme.IsValid() and OutputDir.IsValid() and checks
// the NumTabs lower bound; bool fields need no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.DefaultScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.NumTabs < 1 {
		errs = append(errs, &InvalidNumTabsError{Value: c.NumTabs})
	}
	if valid, fieldErrs := c.OutputDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultScheme:     SchemeHTTPS,
		NumTabs:           1,
		EnableCompletions: true,
		OutputDir:         "", // current directory
		UserAgent:         "mkelvis (OpenSearch importer)",
		UI: UIConfig{
			Verbose: false,
		},
	}
}
