package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/semantic"
)

// Manager selects a formatter by name and applies a shared FormatConfig.
type Manager struct {
	formatters    map[string]Formatter
	defaultFormat string
	config        *FormatConfig
}

// NewManager creates a new output manager with the built-in formatters.
func NewManager() *Manager {
	m := &Manager{
		formatters:    make(map[string]Formatter),
		defaultFormat: "table",
		config:        NewFormatConfig(),
	}

	m.RegisterFormatter(NewJSONFormatter())
	m.RegisterFormatter(NewYAMLFormatter())
	m.RegisterFormatter(NewTableFormatter())
	m.RegisterFormatter(NewTextFormatter())

	return m
}

// RegisterFormatter registers a new formatter.
func (m *Manager) RegisterFormatter(formatter Formatter) {
	m.formatters[formatter.Name()] = formatter
}

// GetFormatter returns a formatter by name.
func (m *Manager) GetFormatter(name string) (Formatter, error) {
	formatter, ok := m.formatters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("formatter '%s' not found (supported: %s)", name, strings.Join(m.SupportedFormats(), ", "))
	}
	return formatter, nil
}

// SetDefaultFormat sets the format used when none is given.
func (m *Manager) SetDefaultFormat(format string) {
	m.defaultFormat = format
}

// Config returns the shared format configuration.
func (m *Manager) Config() *FormatConfig {
	return m.config
}

// SupportedFormats returns the registered format names, sorted.
func (m *Manager) SupportedFormats() []string {
	formats := make([]string, 0, len(m.formatters))
	for name := range m.formatters {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// Format formats data using the given format, or the default when empty.
func (m *Manager) Format(w io.Writer, data any, format string) error {
	if format == "" {
		format = m.defaultFormat
	}
	formatter, err := m.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(w, data, m.config)
}

// FormatError renders err. Structured formats receive an object carrying the
// error kind and location of analysis errors; other formats get plain text.
func (m *Manager) FormatError(w io.Writer, err error, format string) error {
	if err == nil {
		return nil
	}
	if format == "" {
		format = m.defaultFormat
	}
	format = strings.ToLower(format)
	if format != "json" && format != "yaml" {
		_, werr := fmt.Fprintf(w, "Error: %v\n", err)
		return werr
	}

	data := map[string]any{"error": err.Error()}
	var pe *parser.ParseError
	var se *semantic.Error
	switch {
	case errors.As(err, &pe):
		data["error"] = pe.Message
		data["kind"] = pe.Kind.String()
		data["span"] = pe.Span.String()
	case errors.As(err, &se):
		data["error"] = se.Message
		data["kind"] = se.Kind.String()
		data["instruction"] = se.Instruction
		if se.Command != "" {
			data["command"] = se.Command
		}
		if se.Argument != "" {
			data["argument"] = se.Argument
		}
		if se.Suggestion != "" {
			data["suggestion"] = se.Suggestion
		}
	}
	return m.Format(w, data, format)
}
