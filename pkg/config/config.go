// Package config handles loading, layering, and validation of unilang
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/unilang/unilang/pkg/parser"
)

// Config is the complete unilang configuration.
type Config struct {
	Parser    parser.Options `yaml:"parser" mapstructure:"parser"`
	Analyzer  AnalyzerConfig `yaml:"analyzer" mapstructure:"analyzer"`
	Output    OutputConfig   `yaml:"output" mapstructure:"output"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
	History   HistoryConfig  `yaml:"history" mapstructure:"history"`
	Manifests []string       `yaml:"manifests,omitempty" mapstructure:"manifests"`
}

// AnalyzerConfig controls semantic analysis.
type AnalyzerConfig struct {
	// CheckPaths enables existence checks for File and Directory arguments.
	CheckPaths bool `yaml:"check_paths" mapstructure:"check_paths"`
	// Suggest enables "did you mean" suggestions for unknown commands.
	Suggest bool `yaml:"suggest" mapstructure:"suggest"`
	// InternerSize bounds the string interner. Zero disables interning.
	InternerSize int `yaml:"interner_size" mapstructure:"interner_size"`
}

// OutputConfig controls result formatting.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Color  string `yaml:"color" mapstructure:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// HistoryConfig controls the instruction history.
type HistoryConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	MaxEntries int  `yaml:"max_entries" mapstructure:"max_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			Suggest:      true,
			InternerSize: 4096,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  "auto",
		},
		Log: LogConfig{
			Level: "warn",
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
	}
}

// Loader loads configuration from defaults, a YAML file and the environment.
// Priority: ENV > Config File > Default. Flags are applied afterwards with
// Overrides.
type Loader struct {
	appName    string
	envPrefix  string
	configPath string
	fs         afero.Fs
}

// NewLoader creates a new configuration loader.
func NewLoader(appName string) *Loader {
	return &Loader{
		appName:   appName,
		envPrefix: strings.ToUpper(strings.ReplaceAll(appName, "-", "_")),
		fs:        afero.NewOsFs(),
	}
}

// WithPath sets an explicit config file path.
func (l *Loader) WithPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithFs sets the filesystem used to read and write the config file.
func (l *Loader) WithFs(fs afero.Fs) *Loader {
	l.fs = fs
	return l
}

// Path returns the config file path: the explicit path, the <PREFIX>_CONFIG
// environment variable, or the XDG config location.
func (l *Loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}
	if custom := os.Getenv(l.envPrefix + "_CONFIG"); custom != "" {
		return custom
	}
	return filepath.Join(xdg.ConfigHome, l.appName, "config.yaml")
}

// Load reads and validates the configuration. A missing config file is not
// an error.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	v.SetFs(l.fs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	path := l.Path()
	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if exists {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so that environment overrides apply to
// keys missing from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("parser.error_on_positional_after_named", d.Parser.ErrorOnPositionalAfterNamed)
	v.SetDefault("parser.error_on_duplicate_named_arguments", d.Parser.ErrorOnDuplicateNamedArguments)
	v.SetDefault("analyzer.check_paths", d.Analyzer.CheckPaths)
	v.SetDefault("analyzer.suggest", d.Analyzer.Suggest)
	v.SetDefault("analyzer.interner_size", d.Analyzer.InternerSize)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("manifests", d.Manifests)
}

// Save writes cfg to the config path.
func (l *Loader) Save(cfg *Config) error {
	path := l.Path()

	if err := l.fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(l.fs, path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
