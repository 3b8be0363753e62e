// Package registry holds component definitions and their name aliases.
// A definition is construction metadata only; nothing here instantiates
// components.
package registry

import "fmt"

// Scope names understood by consumers of the registry.
const (
	ScopeSingleton = "singleton"
	ScopePrototype = "prototype"
)

// Param is one construction parameter of a definition: a literal value or a
// reference to another component, never both.
type Param struct {
	Name  string
	Value string
	Ref   string
}

// Definition is a named, registrable unit of construction metadata.
// Immutable after registration.
type Definition struct {
	typeName string
	scope    string
	lazy     bool
	params   []Param
	source   string
}

// NewDefinition starts building a definition for the given component type.
func NewDefinition(typeName string) *DefinitionBuilder {
	return &DefinitionBuilder{def: &Definition{typeName: typeName, scope: ScopeSingleton}}
}

// TypeName returns the component type identifier.
func (d *Definition) TypeName() string { return d.typeName }

// Scope returns the definition scope.
func (d *Definition) Scope() string { return d.scope }

// Lazy reports whether the component should be created on demand.
func (d *Definition) Lazy() bool { return d.lazy }

// Params returns the construction parameters in document order.
func (d *Definition) Params() []Param { return d.params }

// Source describes the resource this definition was read from.
func (d *Definition) Source() string { return d.source }

// DefinitionBuilder assembles a Definition.
type DefinitionBuilder struct {
	def *Definition
	err error
}

// Scope sets the definition scope.
func (b *DefinitionBuilder) Scope(scope string) *DefinitionBuilder {
	b.def.scope = scope
	return b
}

// Lazy sets the lazy flag.
func (b *DefinitionBuilder) Lazy(lazy bool) *DefinitionBuilder {
	b.def.lazy = lazy
	return b
}

// Param appends a construction parameter.
func (b *DefinitionBuilder) Param(p Param) *DefinitionBuilder {
	if p.Name == "" {
		b.err = fmt.Errorf("param name must not be empty")
		return b
	}
	if p.Value != "" && p.Ref != "" {
		b.err = fmt.Errorf("param %q must not carry both a value and a ref", p.Name)
		return b
	}
	b.def.params = append(b.def.params, p)
	return b
}

// Source records the originating resource description.
func (b *DefinitionBuilder) Source(source string) *DefinitionBuilder {
	b.def.source = source
	return b
}

// Build finalizes the definition.
func (b *DefinitionBuilder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.typeName == "" {
		return nil, fmt.Errorf("definition type must not be empty")
	}
	return b.def, nil
}

// Holder pairs a definition with its registration name and aliases. It is
// the unit handed from the delegate parser to registration.
type Holder struct {
	def     *Definition
	name    string
	aliases []string
}

// NewHolder creates a holder for def under name with optional aliases.
func NewHolder(def *Definition, name string, aliases ...string) *Holder {
	return &Holder{def: def, name: name, aliases: aliases}
}

// Definition returns the held definition.
func (h *Holder) Definition() *Definition { return h.def }

// Name returns the registration name.
func (h *Holder) Name() string { return h.name }

// Aliases returns the additional names, possibly empty.
func (h *Holder) Aliases() []string { return h.aliases }

// WithDefinition returns a holder carrying the same names over a decorated
// definition.
func (h *Holder) WithDefinition(def *Definition) *Holder {
	return &Holder{def: def, name: h.name, aliases: h.aliases}
}
