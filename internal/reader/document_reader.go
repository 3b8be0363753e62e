package reader

import (
	"fmt"
	"strings"

	"github.com/loomkit/loom/internal/document"
	"github.com/loomkit/loom/internal/log"
	"github.com/loomkit/loom/internal/registry"
	"github.com/loomkit/loom/internal/resource"
)

// Hook runs before or after the definitions of a document scope are
// processed. Nested scopes trigger hooks of their own.
type Hook func(root *document.Node, ctx *Context)

// DocumentReader walks a parsed document tree and registers what it finds.
// It owns the structural dispatch; element-level parsing lives in Delegate.
type DocumentReader struct {
	pre  Hook
	post Hook
}

// Register processes a whole document starting at its root scope.
func (dr *DocumentReader) Register(root *document.Node, ctx *Context) error {
	return dr.doRegister(root, ctx, nil)
}

// doRegister processes one document scope. Each scope gets its own delegate
// so defaults nest; parent carries the enclosing scope's delegate, nil at
// the root.
func (dr *DocumentReader) doRegister(root *document.Node, ctx *Context, parent *Delegate) error {
	delegate := NewDelegate(ctx, parent)
	delegate.InitDefaults(root, parent)

	if delegate.IsDefaultNamespace(root) {
		if spec := strings.TrimSpace(root.Attr(profileAttr)); spec != "" {
			profiles := splitMultiValue(spec)
			if !ctx.Environment().AcceptsProfiles(profiles...) {
				log.Debug(log.CatReader, "skipping scope %s in %s: profiles %v not active",
					root, ctx.Resource().Description(), profiles)
				return nil
			}
		}
	}

	if dr.pre != nil {
		dr.pre(root, ctx)
	}
	if err := dr.parseDefinitions(root, delegate, ctx); err != nil {
		return err
	}
	if dr.post != nil {
		dr.post(root, ctx)
	}
	return nil
}

// parseDefinitions dispatches each child of the scope element. Elements of
// the components vocabulary are handled here; anything else goes to its
// namespace handler.
func (dr *DocumentReader) parseDefinitions(root *document.Node, delegate *Delegate, ctx *Context) error {
	if !delegate.IsDefaultNamespace(root) {
		delegate.ParseCustomElement(root)
		return nil
	}
	for _, child := range root.Children {
		if !delegate.IsDefaultNamespace(child) {
			delegate.ParseCustomElement(child)
			continue
		}
		if err := dr.parseDefaultElement(child, delegate, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (dr *DocumentReader) parseDefaultElement(n *document.Node, delegate *Delegate, ctx *Context) error {
	switch {
	case delegate.NodeNameEquals(n, importTag):
		return dr.importDefinitionResource(n, ctx)
	case delegate.NodeNameEquals(n, aliasTag):
		dr.processAliasRegistration(n, ctx)
	case delegate.NodeNameEquals(n, componentTag):
		dr.processComponentDefinition(n, delegate, ctx)
	case delegate.NodeNameEquals(n, rootTag):
		// Nested scope, recursed with this scope's defaults inherited.
		return dr.doRegister(n, ctx, delegate)
	default:
		log.Debug(log.CatReader, "ignoring unknown element %s in %s", n, ctx.Resource().Description())
	}
	return nil
}

// importDefinitionResource loads the document named by an <import> element
// into the same pass. Location resolution order: URL-style or absolute
// locations go straight to the resolver; anything else is tried relative to
// the current resource first, falling back to the resolver when the
// relative target does not exist.
func (dr *DocumentReader) importDefinitionResource(n *document.Node, ctx *Context) error {
	location := strings.TrimSpace(n.Attr(resourceAttr))
	if location == "" {
		ctx.Error("resource location must not be empty", n, nil)
		return nil
	}

	resolved, err := ctx.Environment().ResolveRequiredPlaceholders(location)
	if err != nil {
		return fmt.Errorf("could not resolve placeholders in import location %q: %w", location, err)
	}

	var actual []resource.Resource
	if resource.IsLocationURL(resolved) || resource.IsAbsoluteURI(resolved) {
		if err := dr.importLocation(resolved, &actual, n, ctx); err != nil {
			return err
		}
	} else if err := dr.importRelative(resolved, &actual, n, ctx); err != nil {
		return err
	}

	// The notification fires whether or not the import succeeded.
	ctx.FireImportProcessed(resolved, actual)
	return nil
}

func (dr *DocumentReader) importRelative(location string, actual *[]resource.Resource, n *document.Node, ctx *Context) error {
	rel, err := ctx.Resource().CreateRelative(location)
	if err == nil && rel.Exists() {
		count, err := ctx.loadResource(rel)
		if err != nil {
			ctx.Error("failed to import definitions from "+quote(location), n, err)
			return nil
		}
		*actual = append(*actual, rel)
		log.Debug(log.CatReader, "imported %d definitions from relative location %s", count, location)
		return nil
	}

	// The relative target is absent: build an absolute location from the
	// base resource's URL form. The raw relative string must never reach
	// the resolver, which would reinterpret it against the working
	// directory.
	base, uerr := ctx.Resource().URL()
	if uerr != nil {
		ctx.Error("failed to resolve current resource location for import "+quote(location), n, uerr)
		return nil
	}
	return dr.importLocation(resource.ApplyRelativePath(base.String(), location), actual, n, ctx)
}

func (dr *DocumentReader) importLocation(location string, actual *[]resource.Resource, n *document.Node, ctx *Context) error {
	count, err := ctx.loadLocation(location, actual)
	if err != nil {
		// Load failures, cyclic imports included, stay local to this
		// import node; siblings keep processing.
		ctx.Error("failed to import definitions from "+quote(location), n, err)
		return nil
	}
	log.Debug(log.CatReader, "imported %d definitions from location %s", count, location)
	return nil
}

// processAliasRegistration registers the alias named by an <alias> element.
func (dr *DocumentReader) processAliasRegistration(n *document.Node, ctx *Context) {
	name := strings.TrimSpace(n.Attr(nameAttr))
	alias := strings.TrimSpace(n.Attr(aliasAttr))

	valid := true
	if name == "" {
		ctx.Error("name must not be empty", n, nil)
		valid = false
	}
	if alias == "" {
		ctx.Error("alias must not be empty", n, nil)
		valid = false
	}
	if !valid {
		return
	}

	if err := ctx.Registry().RegisterAlias(name, alias); err != nil {
		ctx.Error("failed to register alias "+quote(alias)+" for component "+quote(name), n, err)
	}
	ctx.FireAliasRegistered(name, alias)
}

// processComponentDefinition parses, decorates and registers one
// <component> element.
func (dr *DocumentReader) processComponentDefinition(n *document.Node, delegate *Delegate, ctx *Context) {
	holder := delegate.ParseComponentElement(n)
	if holder == nil {
		return
	}
	holder = delegate.DecorateIfRequired(n, holder)
	if err := registerHolder(holder, ctx.Registry()); err != nil {
		ctx.Error("failed to register component definition "+quote(holder.Name()), n, err)
	}
	ctx.FireComponentRegistered(holder.Name())
}

// registerHolder registers the held definition under its name and then
// binds its aliases.
func registerHolder(h *registry.Holder, reg *registry.Registry) error {
	if err := reg.Register(h.Name(), h.Definition()); err != nil {
		return err
	}
	for _, alias := range h.Aliases() {
		if err := reg.RegisterAlias(h.Name(), alias); err != nil {
			return err
		}
	}
	return nil
}
