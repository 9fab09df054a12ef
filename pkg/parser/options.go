package parser

// Options controls the strictness of argument parsing.
type Options struct {
	// ErrorOnPositionalAfterNamed rejects a positional argument that follows
	// a named argument. When false the positional is appended normally.
	ErrorOnPositionalAfterNamed bool `yaml:"error_on_positional_after_named" json:"error_on_positional_after_named" mapstructure:"error_on_positional_after_named"`

	// ErrorOnDuplicateNamedArguments rejects a repeated named argument key.
	// When false the last occurrence wins.
	ErrorOnDuplicateNamedArguments bool `yaml:"error_on_duplicate_named_arguments" json:"error_on_duplicate_named_arguments" mapstructure:"error_on_duplicate_named_arguments"`
}

// DefaultOptions returns the permissive default options.
func DefaultOptions() Options {
	return Options{}
}

// StrictOptions returns options with every ordering and duplicate check on.
func StrictOptions() Options {
	return Options{
		ErrorOnPositionalAfterNamed:    true,
		ErrorOnDuplicateNamedArguments: true,
	}
}
