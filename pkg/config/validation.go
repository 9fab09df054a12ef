package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

var (
	validFormats   = []string{"table", "text", "json", "yaml"}
	validColors    = []string{"auto", "always", "never"}
	validLogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}
)

// Validator handles configuration validation.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates a complete configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	v.validateAnalyzer(&cfg.Analyzer)
	v.validateOutput(&cfg.Output)
	v.validateOneOf("log.level", cfg.Log.Level, validLogLevels)
	if cfg.History.MaxEntries < 0 {
		v.addError("history.max_entries", "must be zero or positive")
	}

	for i, path := range cfg.Manifests {
		if strings.TrimSpace(path) == "" {
			v.addError(fmt.Sprintf("manifests[%d]", i), "path is required")
		}
	}

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

func (v *Validator) validateAnalyzer(a *AnalyzerConfig) {
	if a.InternerSize < 0 {
		v.addError("analyzer.interner_size", "must be zero or positive")
	}
}

func (v *Validator) validateOutput(o *OutputConfig) {
	v.validateOneOf("output.format", o.Format, validFormats)
	v.validateOneOf("output.color", o.Color, validColors)
}

func (v *Validator) validateOneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, strings.ToLower(value)) {
		v.addError(field, fmt.Sprintf("invalid value '%s' (must be one of: %s)", value, strings.Join(allowed, ", ")))
	}
}

// addError adds a validation error.
func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}
