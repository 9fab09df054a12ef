package config

import "github.com/unilang/unilang/pkg/parser"

// Overrides carries command-line flag values. Nil fields leave the loaded
// value untouched.
type Overrides struct {
	Strict     *bool
	Format     *string
	NoColor    *bool
	LogLevel   *string
	CheckPaths *bool
	Manifests  []string
}

// Apply layers the overrides on top of cfg and revalidates the result.
func (o *Overrides) Apply(cfg *Config) error {
	if o == nil {
		return nil
	}
	if o.Strict != nil {
		cfg.Parser = parser.DefaultOptions()
		if *o.Strict {
			cfg.Parser = parser.StrictOptions()
		}
	}
	if o.Format != nil && *o.Format != "" {
		cfg.Output.Format = *o.Format
	}
	if o.NoColor != nil && *o.NoColor {
		cfg.Output.Color = "never"
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		cfg.Log.Level = *o.LogLevel
	}
	if o.CheckPaths != nil {
		cfg.Analyzer.CheckPaths = *o.CheckPaths
	}
	if len(o.Manifests) > 0 {
		cfg.Manifests = append(append([]string(nil), cfg.Manifests...), o.Manifests...)
	}
	return NewValidator().Validate(cfg)
}
