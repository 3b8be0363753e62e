package reader

import (
	"strings"

	"github.com/loomkit/loom/internal/document"
	"github.com/loomkit/loom/internal/log"
	"github.com/loomkit/loom/internal/registry"
)

// DefaultNamespace is the namespace URI of the components vocabulary.
const DefaultNamespace = "https://loomkit.dev/schema/components"

// Element and attribute names of the components vocabulary.
const (
	rootTag      = "components"
	componentTag = "component"
	importTag    = "import"
	aliasTag     = "alias"
	paramTag     = "param"

	nameAttr     = "name"
	aliasAttr    = "alias"
	aliasesAttr  = "aliases"
	typeAttr     = "type"
	scopeAttr    = "scope"
	lazyAttr     = "lazy"
	valueAttr    = "value"
	refAttr      = "ref"
	resourceAttr = "resource"
	profileAttr  = "profile"

	defaultLazyAttr  = "default-lazy"
	defaultScopeAttr = "default-scope"

	// inheritToken in a scope-level default attribute means "keep the
	// enclosing scope's default".
	inheritToken = "default"
)

// multiValueDelimiters separates entries in list-valued attributes such as
// aliases and profile.
const multiValueDelimiters = ",; "

// splitMultiValue splits a list-valued attribute on commas, semicolons and
// spaces, dropping empty entries.
func splitMultiValue(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(multiValueDelimiters, r)
	})
}

// scopeDefaults are the document-scope defaults applied to components that
// do not set the corresponding attribute themselves.
type scopeDefaults struct {
	lazy  string
	scope string
}

// Delegate parses individual elements of one document scope. Each nested
// scope gets a fresh delegate so that scope defaults stack, while the used
// name set is shared across the whole document.
type Delegate struct {
	ctx       *Context
	defaults  scopeDefaults
	usedNames map[string]bool
}

// NewDelegate creates a delegate for one document scope. The parent's used
// name set carries over so that name uniqueness spans nested scopes.
func NewDelegate(ctx *Context, parent *Delegate) *Delegate {
	d := &Delegate{ctx: ctx, usedNames: make(map[string]bool)}
	if parent != nil {
		d.usedNames = parent.usedNames
	}
	return d
}

// InitDefaults computes this scope's defaults from the scope element,
// falling back to the parent scope where an attribute is absent or carries
// the inherit token.
func (d *Delegate) InitDefaults(root *document.Node, parent *Delegate) {
	d.defaults = scopeDefaults{lazy: "false", scope: registry.ScopeSingleton}
	if parent != nil {
		d.defaults = parent.defaults
	}
	if v := root.Attr(defaultLazyAttr); v != "" && v != inheritToken {
		d.defaults.lazy = v
	}
	if v := root.Attr(defaultScopeAttr); v != "" && v != inheritToken {
		d.defaults.scope = v
	}
}

// IsDefaultNamespace reports whether the node belongs to the components
// vocabulary. Documents written without a namespace declaration count too.
func (d *Delegate) IsDefaultNamespace(n *document.Node) bool {
	return n.Space == "" || n.Space == DefaultNamespace
}

// NodeNameEquals compares the node's local name.
func (d *Delegate) NodeNameEquals(n *document.Node, tag string) bool {
	return n.Tag == tag
}

// ParseComponentElement parses a <component> element into a holder carrying
// the definition, its name, and its aliases. Returns nil after recording a
// problem when the element is unusable.
func (d *Delegate) ParseComponentElement(n *document.Node) *registry.Holder {
	name := strings.TrimSpace(n.Attr(nameAttr))
	aliases := splitMultiValue(n.Attr(aliasesAttr))

	if name == "" && len(aliases) > 0 {
		// No name given: the first alias becomes the registration name.
		name = aliases[0]
		aliases = aliases[1:]
		log.Debug(log.CatReader, "no component name set, using first alias %q as name", name)
	}
	if name == "" {
		d.ctx.Error("component name must not be empty", n, nil)
		return nil
	}
	if !d.checkNameUniqueness(name, aliases, n) {
		return nil
	}

	typeName := strings.TrimSpace(n.Attr(typeAttr))
	if typeName == "" {
		d.ctx.Error("component type must not be empty for "+quote(name), n, nil)
		return nil
	}

	lazy := n.Attr(lazyAttr)
	if lazy == "" || lazy == inheritToken {
		lazy = d.defaults.lazy
	}
	scope := n.Attr(scopeAttr)
	if scope == "" {
		scope = d.defaults.scope
	}

	builder := registry.NewDefinition(typeName).
		Scope(scope).
		Lazy(lazy == "true").
		Source(d.ctx.Resource().Description())

	for _, child := range n.Children {
		if !d.IsDefaultNamespace(child) || !d.NodeNameEquals(child, paramTag) {
			continue
		}
		p := registry.Param{
			Name:  child.Attr(nameAttr),
			Value: child.Attr(valueAttr),
			Ref:   child.Attr(refAttr),
		}
		if p.Value == "" && p.Ref == "" {
			// Element body as value form: <param name="x">42</param>
			p.Value = child.Text
		}
		builder.Param(p)
	}

	def, err := builder.Build()
	if err != nil {
		d.ctx.Error("invalid component definition "+quote(name), n, err)
		return nil
	}
	return registry.NewHolder(def, name, aliases...)
}

// checkNameUniqueness enforces that a name or alias is used at most once
// within a document, nested scopes included.
func (d *Delegate) checkNameUniqueness(name string, aliases []string, n *document.Node) bool {
	clash := ""
	if d.usedNames[name] {
		clash = name
	}
	for _, a := range aliases {
		if clash != "" {
			break
		}
		if d.usedNames[a] {
			clash = a
		}
	}
	if clash != "" {
		d.ctx.Error("component name "+quote(clash)+" is already used in this document", n, nil)
		return false
	}
	d.usedNames[name] = true
	for _, a := range aliases {
		d.usedNames[a] = true
	}
	return true
}

// ParseCustomElement dispatches a non-default-namespace element to its
// namespace handler.
func (d *Delegate) ParseCustomElement(n *document.Node) {
	h, ok := d.ctx.reader.namespaces.Lookup(n.Space)
	if !ok {
		d.ctx.Error("unable to locate namespace handler for ["+n.Space+"]", n, nil)
		return
	}
	if err := h.Parse(n, d.ctx); err != nil {
		d.ctx.Error("custom element handling failed", n, err)
	}
}

// DecorateIfRequired runs namespace handlers over the component's custom
// attributes and custom child elements, threading the holder through each
// decoration. A decoration failure keeps the last good holder.
func (d *Delegate) DecorateIfRequired(n *document.Node, holder *registry.Holder) *registry.Holder {
	result := holder
	for _, a := range n.Attrs {
		if a.Space != "" && a.Space != DefaultNamespace {
			result = d.decorate(a.Space, n, result)
		}
	}
	for _, child := range n.Children {
		if !d.IsDefaultNamespace(child) {
			result = d.decorate(child.Space, child, result)
		}
	}
	return result
}

func (d *Delegate) decorate(uri string, n *document.Node, holder *registry.Holder) *registry.Holder {
	h, ok := d.ctx.reader.namespaces.Lookup(uri)
	if !ok {
		log.Warn(log.CatReader, "no namespace handler for [%s], ignoring decoration on %s", uri, n)
		return holder
	}
	decorated, err := h.Decorate(n, holder, d.ctx)
	if err != nil {
		d.ctx.Error("decoration by namespace ["+uri+"] failed", n, err)
		return holder
	}
	if decorated == nil {
		return holder
	}
	return decorated
}

func quote(s string) string {
	return "'" + s + "'"
}
