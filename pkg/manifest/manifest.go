// Package manifest loads command definitions from YAML or JSON documents.
//
// Every record is assembled through the command builder, so an invalid
// record fails the whole load instead of producing a definition that would
// be rejected later by a registry.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/types"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Manifest is the document root.
type Manifest struct {
	Version  string          `yaml:"version,omitempty" json:"version,omitempty"`
	Commands []CommandRecord `yaml:"commands" json:"commands"`
}

// CommandRecord is the serialized form of a command definition.
type CommandRecord struct {
	Name               string           `yaml:"name" json:"name"`
	Namespace          string           `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Description        string           `yaml:"description,omitempty" json:"description,omitempty"`
	Hint               string           `yaml:"hint,omitempty" json:"hint,omitempty"`
	Status             string           `yaml:"status,omitempty" json:"status,omitempty"`
	Version            string           `yaml:"version,omitempty" json:"version,omitempty"`
	Tags               []string         `yaml:"tags,omitempty" json:"tags,omitempty"`
	Aliases            []string         `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Permissions        []string         `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Idempotent         bool             `yaml:"idempotent,omitempty" json:"idempotent,omitempty"`
	DeprecationMessage string           `yaml:"deprecation_message,omitempty" json:"deprecation_message,omitempty"`
	HTTPMethodHint     string           `yaml:"http_method_hint,omitempty" json:"http_method_hint,omitempty"`
	Examples           []string         `yaml:"examples,omitempty" json:"examples,omitempty"`
	Arguments          []ArgumentRecord `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// ArgumentRecord is the serialized form of an argument definition.
type ArgumentRecord struct {
	Name            string           `yaml:"name" json:"name"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	Kind            string           `yaml:"kind" json:"kind"`
	Attributes      AttributesRecord `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	ValidationRules []string         `yaml:"validation_rules,omitempty" json:"validation_rules,omitempty"`
	Hint            string           `yaml:"hint,omitempty" json:"hint,omitempty"`
	Aliases         []string         `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Tags            []string         `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// AttributesRecord holds argument attributes. Default accepts any scalar and
// is normalized to its string form.
type AttributesRecord struct {
	Optional    bool `yaml:"optional,omitempty" json:"optional,omitempty"`
	Multiple    bool `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Default     any  `yaml:"default,omitempty" json:"default,omitempty"`
	Sensitive   bool `yaml:"sensitive,omitempty" json:"sensitive,omitempty"`
	Interactive bool `yaml:"interactive,omitempty" json:"interactive,omitempty"`
}

// DetectFormat picks the format from a file extension. Unknown extensions
// are treated as YAML, which also accepts JSON documents.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a manifest document.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse JSON manifest: %w", err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse YAML manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", format)
	}
	return &m, nil
}

// Load decodes a manifest and builds its definitions.
func Load(data []byte, format Format) ([]*command.CommandDefinition, error) {
	m, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return m.Definitions()
}

// LoadFile reads and builds a manifest from fs.
func LoadFile(fs afero.Fs, path string) ([]*command.CommandDefinition, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	defs, err := Load(data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Definitions builds every command record.
func (m *Manifest) Definitions() ([]*command.CommandDefinition, error) {
	defs := make([]*command.CommandDefinition, 0, len(m.Commands))
	for i := range m.Commands {
		def, err := m.Commands[i].Build()
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Build converts the record into a validated definition.
func (r *CommandRecord) Build() (*command.CommandDefinition, error) {
	b := command.NewCommand(r.Name).
		Namespace(r.Namespace).
		Description(r.Description).
		Hint(r.Hint).
		Version(r.Version).
		Tags(r.Tags...).
		Aliases(r.Aliases...).
		Permissions(r.Permissions...).
		Idempotent(r.Idempotent).
		HTTPMethodHint(r.HTTPMethodHint).
		Examples(r.Examples...)
	if r.Status != "" {
		b.Status(command.Status(strings.ToLower(r.Status)))
	}
	if r.DeprecationMessage != "" {
		b.Deprecated(r.DeprecationMessage)
	}

	for i := range r.Arguments {
		arg, err := r.Arguments[i].build()
		if err != nil {
			return nil, fmt.Errorf("command '%s' arguments[%d]: %w", r.Name, i, err)
		}
		b.Argument(arg)
	}
	return b.Build()
}

func (r *ArgumentRecord) build() (command.ArgumentDefinition, error) {
	kindText := r.Kind
	if kindText == "" {
		kindText = types.KindString.String()
	}
	kind, err := types.ParseKind(kindText)
	if err != nil {
		return command.ArgumentDefinition{}, err
	}

	b := command.NewArgument(r.Name, kind).
		Description(r.Description).
		Hint(r.Hint).
		Aliases(r.Aliases...).
		Tags(r.Tags...)
	if r.Attributes.Optional {
		b.Optional()
	}
	if r.Attributes.Multiple {
		b.Multiple()
	}
	if r.Attributes.Sensitive {
		b.Sensitive()
	}
	if r.Attributes.Interactive {
		b.Interactive()
	}
	if r.Attributes.Default != nil {
		raw, err := defaultString(r.Attributes.Default)
		if err != nil {
			return command.ArgumentDefinition{}, fmt.Errorf("argument '%s': %w", r.Name, err)
		}
		b.Default(raw)
	}

	for _, text := range r.ValidationRules {
		rule, err := types.ParseValidationRule(text)
		if err != nil {
			return command.ArgumentDefinition{}, fmt.Errorf("argument '%s': %w", r.Name, err)
		}
		b.Rules(rule)
	}
	return b.Build(), nil
}

// defaultString normalizes a decoded default to its raw string form. Lists
// are joined with commas so they coerce with the default List delimiter.
func defaultString(v any) (string, error) {
	if items, ok := v.([]any); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			s, err := cast.ToStringE(item)
			if err != nil {
				return "", fmt.Errorf("invalid default item %v: %w", item, err)
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("invalid default %v: %w", v, err)
	}
	return s, nil
}

// FromDefinitions converts definitions back into a manifest document.
func FromDefinitions(defs []*command.CommandDefinition) *Manifest {
	m := &Manifest{Commands: make([]CommandRecord, 0, len(defs))}
	for _, def := range defs {
		rec := CommandRecord{
			Name:               def.Name,
			Namespace:          def.Namespace,
			Description:        def.Description,
			Hint:               def.Hint,
			Status:             string(def.Status),
			Version:            def.Version,
			Tags:               def.Tags,
			Aliases:            def.Aliases,
			Permissions:        def.Permissions,
			Idempotent:         def.Idempotent,
			DeprecationMessage: def.DeprecationMessage,
			HTTPMethodHint:     def.HTTPMethodHint,
			Examples:           def.Examples,
		}
		for _, arg := range def.Arguments {
			ar := ArgumentRecord{
				Name:        arg.Name,
				Description: arg.Description,
				Kind:        arg.Kind.String(),
				Attributes: AttributesRecord{
					Optional:    arg.Attributes.Optional,
					Multiple:    arg.Attributes.Multiple,
					Sensitive:   arg.Attributes.Sensitive,
					Interactive: arg.Attributes.Interactive,
				},
				Hint:    arg.Hint,
				Aliases: arg.Aliases,
				Tags:    arg.Tags,
			}
			if arg.Attributes.Default != nil {
				ar.Attributes.Default = *arg.Attributes.Default
			}
			for _, rule := range arg.ValidationRules {
				ar.ValidationRules = append(ar.ValidationRules, rule.String())
			}
			rec.Arguments = append(rec.Arguments, ar)
		}
		m.Commands = append(m.Commands, rec)
	}
	return m
}

// Marshal encodes the manifest in the given format.
func (m *Manifest) Marshal(format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(m, "", "  ")
	}
	return yaml.Marshal(m)
}
