package reader

import (
	"context"

	"github.com/loomkit/loom/internal/document"
	"github.com/loomkit/loom/internal/environment"
	"github.com/loomkit/loom/internal/log"
	"github.com/loomkit/loom/internal/pubsub"
	"github.com/loomkit/loom/internal/registry"
	"github.com/loomkit/loom/internal/resource"
)

// Context carries the state of reading one document within a registration
// pass: the resource being read, the shared problem sink, and the pass
// identity. Nested loads triggered by imports share the same pass.
type Context struct {
	reader   *Reader
	res      resource.Resource
	problems *Problems
	passID   string
	ctx      context.Context
}

// Resource returns the resource the current document was read from.
func (c *Context) Resource() resource.Resource { return c.res }

// Registry returns the registry definitions are registered into.
func (c *Context) Registry() *registry.Registry { return c.reader.registry }

// Environment returns the environment for profile and placeholder decisions.
func (c *Context) Environment() *environment.Environment { return c.reader.env }

// Problems returns the problem sink shared across the pass.
func (c *Context) Problems() *Problems { return c.problems }

// Error records a non-fatal problem against node and keeps the pass going.
func (c *Context) Error(message string, node *document.Node, cause error) {
	p := Problem{Message: message, Resource: c.res.Description(), Cause: cause}
	if node != nil {
		p.Node = node.String()
	}
	c.problems.add(p)
	if c.reader.problemHandler != nil {
		c.reader.problemHandler(p)
	}
	log.Warn(log.CatReader, "%s", p.Error())
}

// FireImportProcessed publishes an import-processed notification.
func (c *Context) FireImportProcessed(location string, actual []resource.Resource) {
	descs := make([]string, len(actual))
	for i, r := range actual {
		descs[i] = r.Description()
	}
	c.reader.broker.Publish(pubsub.ImportProcessedEvent, LoadEvent{
		PassID:   c.passID,
		Resource: c.res.Description(),
		Location: location,
		Imported: descs,
	})
}

// FireAliasRegistered publishes an alias-registered notification.
func (c *Context) FireAliasRegistered(name, alias string) {
	c.reader.broker.Publish(pubsub.AliasRegisteredEvent, LoadEvent{
		PassID:   c.passID,
		Resource: c.res.Description(),
		Name:     name,
		Alias:    alias,
	})
}

// FireComponentRegistered publishes a component-registered notification.
func (c *Context) FireComponentRegistered(name string) {
	c.reader.broker.Publish(pubsub.ComponentRegisteredEvent, LoadEvent{
		PassID:   c.passID,
		Resource: c.res.Description(),
		Name:     name,
	})
}

// loadResource loads an imported resource within the current pass, sharing
// the problem sink and cycle tracking.
func (c *Context) loadResource(res resource.Resource) (int, error) {
	return c.reader.loadResource(c.ctx, res, c.problems, c.passID)
}

// loadLocation loads an imported location within the current pass. Resolved
// resources are appended to actual when it is non-nil.
func (c *Context) loadLocation(location string, actual *[]resource.Resource) (int, error) {
	return c.reader.loadLocation(c.ctx, location, actual, c.problems, c.passID)
}
