// Package registry maps fully qualified command names to definitions and
// routines.
//
// A Registry layers a mutable dynamic map over an immutable StaticMap.
// Lookups consult the static map first, without locking, and then the
// dynamic map under a read lock. Every insertion path runs through the same
// validation and duplicate detection.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pterm/pterm"

	"github.com/unilang/unilang/pkg/command"
)

type entry struct {
	def     *command.CommandDefinition
	routine command.Routine
}

// Registry holds static and dynamically registered commands.
type Registry struct {
	static *StaticMap

	mu       sync.RWMutex
	commands map[string]*entry
	// aliases maps qualified alias names to canonical names.
	aliases map[string]string
	// routines holds routines bound to static commands.
	routines map[string]command.Routine

	logger *pterm.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger *pterm.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a registry over the given static map, which may be nil.
func New(static *StaticMap, opts ...Option) *Registry {
	r := &Registry{
		static:   static,
		commands: make(map[string]*entry),
		aliases:  make(map[string]string),
		routines: make(map[string]command.Routine),
		logger:   pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a definition to the dynamic map.
func (r *Registry) Register(def *command.CommandDefinition) error {
	return r.register(def, nil, false)
}

// CommandAddRuntime adds a definition together with its routine.
func (r *Registry) CommandAddRuntime(def *command.CommandDefinition, routine command.Routine) error {
	if routine == nil {
		name := "<nil>"
		if def != nil {
			name = def.FullName()
		}
		return &Error{Name: name, Reason: "routine cannot be nil", Err: ErrInvalidDefinition}
	}
	return r.register(def, routine, false)
}

// Replace swaps the definition of an existing dynamic command. The routine
// bound to the command is kept.
func (r *Registry) Replace(def *command.CommandDefinition) error {
	return r.register(def, nil, true)
}

// register is the single insertion path shared by Register,
// CommandAddRuntime and Replace.
func (r *Registry) register(def *command.CommandDefinition, routine command.Routine, replace bool) error {
	if def == nil {
		return &Error{Name: "<nil>", Reason: "definition cannot be nil", Err: ErrInvalidDefinition}
	}

	name := def.FullName()
	if err := def.Validate(); err != nil {
		var verrs command.ValidationErrors
		if errors.As(err, &verrs) && verrs.Has("namespace") {
			return &Error{
				Name:   name,
				Reason: fmt.Sprintf("namespace '%s' must be empty or start with a dot prefix", def.Namespace),
				Err:    ErrInvalidNamespace,
			}
		}
		return &Error{Name: def.Name, Reason: err.Error(), Err: ErrInvalidDefinition}
	}

	keys := append([]string{name}, def.AliasNames()...)
	stored := def.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range keys {
		if _, exists := r.static.Get(key); exists {
			return &Error{
				Name:   key,
				Reason: fmt.Sprintf("command '%s' is already registered in the static registry and cannot be replaced or unregistered", key),
				Err:    ErrAlreadyRegistered,
			}
		}
		if owner, taken := r.owner(key); taken && !(replace && owner == name) {
			return &Error{
				Name:   key,
				Reason: fmt.Sprintf("command '%s' is already registered; unregister it first or use replace", key),
				Err:    ErrAlreadyRegistered,
			}
		}
	}

	old, exists := r.commands[name]
	if replace {
		if !exists {
			return &Error{Name: name, Reason: "cannot replace a command that is not registered", Err: ErrNotFound}
		}
		r.removeAliases(old.def)
		routine = old.routine
	}

	r.commands[name] = &entry{def: stored, routine: routine}
	for _, alias := range keys[1:] {
		r.aliases[alias] = name
	}

	r.logger.Debug("registered command", r.logger.Args(
		"name", name,
		"aliases", len(keys)-1,
		"arguments", len(def.Arguments),
		"routine", routine != nil,
		"replaced", replace,
	))
	return nil
}

// owner returns the canonical name holding key. Callers hold r.mu.
func (r *Registry) owner(key string) (string, bool) {
	if _, ok := r.commands[key]; ok {
		return key, true
	}
	canonical, ok := r.aliases[key]
	return canonical, ok
}

func (r *Registry) removeAliases(def *command.CommandDefinition) {
	for _, alias := range def.AliasNames() {
		delete(r.aliases, alias)
	}
}

// Unregister removes a dynamic command by name or alias.
func (r *Registry) Unregister(name string) error {
	if _, ok := r.static.Get(name); ok {
		return &Error{Name: name, Reason: "static commands cannot be unregistered", Err: ErrStatic}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	canonical, ok := r.owner(name)
	if !ok {
		return &Error{Name: name, Reason: fmt.Sprintf("command '%s' not found", name), Err: ErrNotFound}
	}
	r.removeAliases(r.commands[canonical].def)
	delete(r.commands, canonical)

	r.logger.Debug("unregistered command", r.logger.Args("name", canonical))
	return nil
}

// BindRoutine attaches a routine to an existing static or dynamic command.
func (r *Registry) BindRoutine(name string, routine command.Routine) error {
	if routine == nil {
		return &Error{Name: name, Reason: "routine cannot be nil", Err: ErrInvalidDefinition}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if def, ok := r.static.Get(name); ok {
		r.routines[def.FullName()] = routine
		return nil
	}
	canonical, ok := r.owner(name)
	if !ok {
		return &Error{Name: name, Reason: fmt.Sprintf("command '%s' not found", name), Err: ErrNotFound}
	}
	r.commands[canonical].routine = routine
	return nil
}

// Command returns the definition for a fully qualified name or alias.
func (r *Registry) Command(name string) (*command.CommandDefinition, bool) {
	if def, ok := r.static.Get(name); ok {
		return def, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.owner(name)
	if !ok {
		return nil, false
	}
	return r.commands[canonical].def, true
}

// Routine returns the routine bound to a command, if any.
func (r *Registry) Routine(name string) (command.Routine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.static.Get(name); ok {
		routine, bound := r.routines[def.FullName()]
		return routine, bound
	}
	canonical, ok := r.owner(name)
	if !ok || r.commands[canonical].routine == nil {
		return nil, false
	}
	return r.commands[canonical].routine, true
}

// IsStatic reports whether name resolves to a static command.
func (r *Registry) IsStatic(name string) bool {
	_, ok := r.static.Get(name)
	return ok
}

// Names returns every canonical command name in sorted order.
func (r *Registry) Names() []string {
	names := r.static.Names()

	r.mu.RLock()
	for name := range r.commands {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Commands returns every definition sorted by fully qualified name.
func (r *Registry) Commands() []*command.CommandDefinition {
	names := r.Names()
	defs := make([]*command.CommandDefinition, 0, len(names))
	for _, name := range names {
		if def, ok := r.Command(name); ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// Len returns the number of commands, not counting aliases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.static.Len() + len(r.commands)
}
