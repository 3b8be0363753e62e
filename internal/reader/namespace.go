package reader

import (
	"github.com/loomkit/loom/internal/document"
	"github.com/loomkit/loom/internal/registry"
)

// NamespaceHandler handles elements and attributes outside the default
// components namespace. Parse handles a top-level custom element; Decorate
// wraps or adjusts a component definition in response to a custom child
// element or attribute.
type NamespaceHandler interface {
	Parse(node *document.Node, ctx *Context) error
	Decorate(node *document.Node, holder *registry.Holder, ctx *Context) (*registry.Holder, error)
}

// NamespaceHandlers maps namespace URIs to their handlers.
type NamespaceHandlers struct {
	handlers map[string]NamespaceHandler
}

// NewNamespaceHandlers creates an empty handler table.
func NewNamespaceHandlers() *NamespaceHandlers {
	return &NamespaceHandlers{handlers: make(map[string]NamespaceHandler)}
}

// Register binds a handler to a namespace URI, replacing any previous
// binding.
func (n *NamespaceHandlers) Register(uri string, h NamespaceHandler) {
	n.handlers[uri] = h
}

// Lookup returns the handler for a namespace URI.
func (n *NamespaceHandlers) Lookup(uri string) (NamespaceHandler, bool) {
	h, ok := n.handlers[uri]
	return h, ok
}
