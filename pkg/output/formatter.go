// Package output renders pipeline results as tables, text, JSON or YAML.
package output

import "io"

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes data to w.
	Format(w io.Writer, data any, config *FormatConfig) error

	// Name returns the format name (e.g. "json", "table").
	Name() string
}

// FormatConfig contains configuration options for formatting output.
type FormatConfig struct {
	// Pretty enables indentation for JSON.
	Pretty bool

	// Colors enables styled table output.
	Colors bool

	// ShowHeaders controls the header row of tables.
	ShowHeaders bool

	// Template overrides the per-row template of the text formatter.
	Template string
}

// NewFormatConfig creates a new FormatConfig with sensible defaults.
func NewFormatConfig() *FormatConfig {
	return &FormatConfig{
		Pretty:      true,
		Colors:      true,
		ShowHeaders: true,
	}
}

// WithPretty sets the pretty-printing option.
func (c *FormatConfig) WithPretty(pretty bool) *FormatConfig {
	c.Pretty = pretty
	return c
}

// WithColors sets the colors option.
func (c *FormatConfig) WithColors(colors bool) *FormatConfig {
	c.Colors = colors
	return c
}

// WithTemplate sets the text row template.
func (c *FormatConfig) WithTemplate(template string) *FormatConfig {
	c.Template = template
	return c
}

// Tabular is implemented by data that can be shown as rows. Table and text
// formatters only accept Tabular data.
type Tabular interface {
	// Columns returns the column keys in display order.
	Columns() []string

	// Records returns one map per row keyed by column.
	Records() []map[string]any

	// RowTemplate is the default text formatter template for one row.
	RowTemplate() string
}
