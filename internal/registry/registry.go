package registry

import (
	"errors"
	"fmt"

	"github.com/loomkit/loom/internal/log"
)

// Registry errors.
var (
	ErrNotFound       = errors.New("definition not found")
	ErrEmptyName      = errors.New("name must not be empty")
	ErrNilDefinition  = errors.New("definition cannot be nil")
	ErrDuplicateName  = errors.New("duplicate definition name")
	ErrAliasCollision = errors.New("alias already bound to a different name")
	ErrAliasCycle     = errors.New("alias registration would create a cycle")
)

// Registry maps names to component definitions and aliases to names.
//
// A registration pass assumes exclusive write access: callers must not run
// two passes against the same registry concurrently without external
// synchronization.
type Registry struct {
	defs          map[string]*Definition
	order         []string
	aliases       map[string]string
	allowOverride bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithOverride allows re-registration of an existing name or alias to
// replace the previous entry instead of failing.
func WithOverride() Option {
	return func(r *Registry) { r.allowOverride = true }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		defs:    make(map[string]*Definition),
		aliases: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores def under name. Under the strict (default) policy a
// duplicate name is rejected with ErrDuplicateName.
func (r *Registry) Register(name string, def *Definition) error {
	if name == "" {
		return ErrEmptyName
	}
	if def == nil {
		return ErrNilDefinition
	}
	if existing, ok := r.defs[name]; ok {
		if !r.allowOverride {
			return fmt.Errorf("%w: %q already registered from %s", ErrDuplicateName, name, existing.Source())
		}
		log.Debug(log.CatRegistry, "overriding definition %q from %s", name, existing.Source())
		r.defs[name] = def
		return nil
	}
	r.defs[name] = def
	r.order = append(r.order, name)
	return nil
}

// RegisterAlias binds alias to name. Binding a name to itself removes any
// alias previously registered under that name.
func (r *Registry) RegisterAlias(name, alias string) error {
	if name == "" || alias == "" {
		return ErrEmptyName
	}
	if alias == name {
		delete(r.aliases, alias)
		return nil
	}
	if existing, ok := r.aliases[alias]; ok {
		if existing == name {
			return nil
		}
		if !r.allowOverride {
			return fmt.Errorf("%w: alias %q is bound to %q, cannot bind to %q",
				ErrAliasCollision, alias, existing, name)
		}
	}
	if r.wouldCycle(name, alias) {
		return fmt.Errorf("%w: %q -> %q", ErrAliasCycle, alias, name)
	}
	r.aliases[alias] = name
	return nil
}

// wouldCycle reports whether canonicalizing name would pass through alias.
func (r *Registry) wouldCycle(name, alias string) bool {
	current := name
	for {
		target, ok := r.aliases[current]
		if !ok {
			return false
		}
		if target == alias {
			return true
		}
		current = target
	}
}

// Canonical follows the alias chain from name to the underlying
// registration name.
func (r *Registry) Canonical(name string) string {
	current := name
	for {
		target, ok := r.aliases[current]
		if !ok {
			return current
		}
		current = target
	}
}

// Get returns the definition registered under name or any of its aliases.
func (r *Registry) Get(name string) (*Definition, error) {
	def, ok := r.defs[r.Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return def, nil
}

// Contains reports whether name (or an alias of it) is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.defs[r.Canonical(name)]
	return ok
}

// Names returns registration names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Aliases returns every alias bound (directly or transitively) to name.
func (r *Registry) Aliases(name string) []string {
	var out []string
	for alias := range r.aliases {
		if alias != name && r.Canonical(alias) == r.Canonical(name) {
			out = append(out, alias)
		}
	}
	return out
}

// Len returns the number of registered definitions, aliases excluded.
func (r *Registry) Len() int {
	return len(r.defs)
}

// PostProcessor inspects or adjusts the registry after a load pass has
// populated it.
type PostProcessor interface {
	PostProcessRegistry(r *Registry) error
}
