// Package secrets detects and masks sensitive argument values before they
// reach output or logs.
package secrets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/types"
)

// DefaultFieldPatterns are glob patterns for argument names that are masked
// even when the definition does not mark them sensitive.
func DefaultFieldPatterns() []string {
	return []string{
		"*password*",
		"*passwd*",
		"*secret*",
		"*token*",
		"*api_key*",
		"*apikey*",
		"*private_key*",
		"*credential*",
	}
}

// ValuePattern is a named regular expression matching secret-looking text.
type ValuePattern struct {
	Name    string
	Pattern string
}

// DefaultValuePatterns match well-known token formats in free text.
func DefaultValuePatterns() []ValuePattern {
	return []ValuePattern{
		{Name: "AWS Access Key ID", Pattern: `AKIA[0-9A-Z]{16}`},
		{Name: "Bearer Token", Pattern: `Bearer\s+[A-Za-z0-9\-._~+/]+=*`},
		{Name: "JWT Token", Pattern: `eyJ[A-Za-z0-9-_=]+\.eyJ[A-Za-z0-9-_=]+\.[A-Za-z0-9-_.+/=]*`},
		{Name: "GitHub Token", Pattern: `gh[pousr]_[0-9a-zA-Z]{36}`},
		{Name: "Slack Token", Pattern: `xox[baprs]-[0-9a-zA-Z]{10,48}`},
	}
}

// Detector decides which arguments are sensitive and masks them.
type Detector struct {
	masking       *Masking
	fieldPatterns []*regexp.Regexp
	valuePatterns []*regexp.Regexp
}

// NewDetector compiles the given patterns. A nil masking uses DefaultMasking.
func NewDetector(masking *Masking, fieldPatterns []string, valuePatterns []ValuePattern) (*Detector, error) {
	if masking == nil {
		masking = DefaultMasking()
	}
	d := &Detector{masking: masking}

	for _, pattern := range fieldPatterns {
		regex, err := globToRegex(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid field pattern %q: %w", pattern, err)
		}
		d.fieldPatterns = append(d.fieldPatterns, regex)
	}
	for _, vp := range valuePatterns {
		regex, err := regexp.Compile(vp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid value pattern %q (%s): %w", vp.Pattern, vp.Name, err)
		}
		d.valuePatterns = append(d.valuePatterns, regex)
	}
	return d, nil
}

// NewDefaultDetector returns a detector with the default patterns.
func NewDefaultDetector() *Detector {
	d, err := NewDetector(nil, DefaultFieldPatterns(), DefaultValuePatterns())
	if err != nil {
		panic(err)
	}
	return d
}

// IsSecretField reports whether an argument name matches a field pattern.
func (d *Detector) IsSecretField(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range d.fieldPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsSensitive reports whether the argument must be masked.
func (d *Detector) IsSensitive(arg *command.ArgumentDefinition) bool {
	return arg.Attributes.Sensitive || d.IsSecretField(arg.Name)
}

// Mask masks a single value.
func (d *Detector) Mask(value string) string {
	return MaskValue(value, d.masking)
}

// MaskArguments returns the displayable form of every bound argument of cmd.
// Sensitive values are masked; the rest are returned in native form.
func (d *Detector) MaskArguments(cmd *command.VerifiedCommand) map[string]any {
	out := make(map[string]any, len(cmd.Arguments))
	for name, value := range cmd.Arguments {
		out[name] = d.display(cmd.Definition, name, value)
	}
	return out
}

// MaskArgument returns the displayable text of one bound argument.
func (d *Detector) MaskArgument(cmd *command.VerifiedCommand, name string) string {
	value, ok := cmd.Arguments[name]
	if !ok {
		return ""
	}
	return fmt.Sprint(d.display(cmd.Definition, name, value))
}

func (d *Detector) display(def *command.CommandDefinition, name string, value types.Value) any {
	sensitive := d.IsSecretField(name)
	if def != nil {
		if arg, ok := def.Argument(name); ok {
			sensitive = d.IsSensitive(arg)
		}
	}
	if sensitive {
		return d.Mask(value.String())
	}
	return value.Native()
}

// MaskString masks secret-looking substrings of free text such as error
// messages.
func (d *Detector) MaskString(text string) string {
	for _, pattern := range d.valuePatterns {
		text = pattern.ReplaceAllStringFunc(text, d.Mask)
	}
	return text
}

// globToRegex converts a glob pattern to a case-insensitive anchored regex.
// Supports * and ?.
func globToRegex(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	escaped = strings.ReplaceAll(escaped, `\?`, ".")
	return regexp.Compile("(?i)^" + escaped + "$")
}
