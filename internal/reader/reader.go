// Package reader loads component definition documents into a registry. A
// top-level load is a registration pass: it parses documents, follows
// imports, accumulates non-fatal problems, and publishes events for
// observers.
package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/loomkit/loom/internal/document"
	"github.com/loomkit/loom/internal/environment"
	"github.com/loomkit/loom/internal/log"
	"github.com/loomkit/loom/internal/pubsub"
	"github.com/loomkit/loom/internal/registry"
	"github.com/loomkit/loom/internal/resource"
)

// ErrCyclicLoad marks a resource that imports itself, directly or through a
// chain of imports. Import handling records it as a problem at the
// importing node; it aborts the pass only when a top-level load hits it.
var ErrCyclicLoad = errors.New("cyclic loading of definition resource")

// Reader orchestrates registration passes. A Reader is not safe for
// concurrent passes against the same registry.
type Reader struct {
	registry       *registry.Registry
	env            *environment.Environment
	resolver       resource.LocationResolver
	broker         *pubsub.Broker[LoadEvent]
	namespaces     *NamespaceHandlers
	docReader      *DocumentReader
	tracer         trace.Tracer
	problemHandler func(Problem)
	postProcessors []registry.PostProcessor

	// loading tracks resource descriptions on the current import chain.
	loading map[string]bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithEnvironment sets the environment used for profiles and placeholders.
func WithEnvironment(env *environment.Environment) Option {
	return func(r *Reader) { r.env = env }
}

// WithResolver sets the location resolver used for imports and load
// locations.
func WithResolver(res resource.LocationResolver) Option {
	return func(r *Reader) { r.resolver = res }
}

// WithNamespaceHandler binds a handler for a custom namespace URI.
func WithNamespaceHandler(uri string, h NamespaceHandler) Option {
	return func(r *Reader) { r.namespaces.Register(uri, h) }
}

// WithPostProcessor appends a registry post-processor, run after each
// successful top-level pass in registration order.
func WithPostProcessor(pp registry.PostProcessor) Option {
	return func(r *Reader) { r.postProcessors = append(r.postProcessors, pp) }
}

// WithProblemHandler sets a callback invoked for every non-fatal problem as
// it is recorded.
func WithProblemHandler(fn func(Problem)) Option {
	return func(r *Reader) { r.problemHandler = fn }
}

// WithTracer sets the tracer used to span loads.
func WithTracer(tr trace.Tracer) Option {
	return func(r *Reader) { r.tracer = tr }
}

// WithPreHook runs fn before each document scope is processed.
func WithPreHook(fn Hook) Option {
	return func(r *Reader) { r.docReader.pre = fn }
}

// WithPostHook runs fn after each document scope is processed.
func WithPostHook(fn Hook) Option {
	return func(r *Reader) { r.docReader.post = fn }
}

// New creates a reader registering into reg.
func New(reg *registry.Registry, opts ...Option) *Reader {
	r := &Reader{
		registry:   reg,
		env:        environment.New(),
		resolver:   resource.NewResolver(),
		broker:     pubsub.NewBroker[LoadEvent](),
		namespaces: NewNamespaceHandlers(),
		docReader:  &DocumentReader{},
		tracer:     noop.NewTracerProvider().Tracer("loom/reader"),
		loading:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the target registry.
func (r *Reader) Registry() *registry.Registry { return r.registry }

// Environment returns the reader's environment.
func (r *Reader) Environment() *environment.Environment { return r.env }

// Events returns the broker publishing pass notifications.
func (r *Reader) Events() *pubsub.Broker[LoadEvent] { return r.broker }

// Result summarizes one registration pass.
type Result struct {
	PassID     string
	Registered int
	Problems   []Problem
	Resources  []resource.Resource
}

// LoadResource runs a registration pass over a single resource.
func (r *Reader) LoadResource(ctx context.Context, res resource.Resource) (*Result, error) {
	return r.runPass(ctx, func(result *Result, pc *Problems, passID string) error {
		count, err := r.loadResource(ctx, res, pc, passID)
		result.Registered += count
		result.Resources = append(result.Resources, res)
		return err
	})
}

// LoadLocations runs a single registration pass over the given locations in
// order.
func (r *Reader) LoadLocations(ctx context.Context, locations ...string) (*Result, error) {
	return r.runPass(ctx, func(result *Result, pc *Problems, passID string) error {
		for _, location := range locations {
			count, err := r.loadLocation(ctx, location, &result.Resources, pc, passID)
			result.Registered += count
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Reader) runPass(ctx context.Context, fn func(*Result, *Problems, string) error) (*Result, error) {
	passID := uuid.NewString()
	pc := &Problems{}
	result := &Result{PassID: passID}

	r.broker.Publish(pubsub.PassStartedEvent, LoadEvent{PassID: passID})
	log.Info(log.CatReader, "registration pass %s started", passID)

	err := fn(result, pc, passID)
	if err == nil {
		for _, pp := range r.postProcessors {
			if perr := pp.PostProcessRegistry(r.registry); perr != nil {
				err = fmt.Errorf("post-processing registry: %w", perr)
				break
			}
		}
	}

	result.Problems = pc.All()
	r.broker.Publish(pubsub.PassCompletedEvent, LoadEvent{
		PassID:   passID,
		Count:    result.Registered,
		Problems: pc.Count(),
	})
	log.Info(log.CatReader, "registration pass %s completed: %d registered, %d problems",
		passID, result.Registered, pc.Count())

	if err != nil {
		return result, err
	}
	return result, nil
}

// loadLocation resolves a location and loads every resource it denotes
// within the current pass.
func (r *Reader) loadLocation(ctx context.Context, location string, actual *[]resource.Resource, pc *Problems, passID string) (int, error) {
	resources, err := r.resolver.ResolveAll(location)
	if err != nil {
		return 0, fmt.Errorf("could not resolve location %q: %w", location, err)
	}
	count := 0
	for _, res := range resources {
		n, err := r.loadResource(ctx, res, pc, passID)
		count += n
		if err != nil {
			return count, err
		}
		if actual != nil {
			*actual = append(*actual, res)
		}
	}
	return count, nil
}

// loadResource parses one resource and registers its definitions. The
// returned count is the registry growth attributable to this resource,
// imports included.
func (r *Reader) loadResource(ctx context.Context, res resource.Resource, pc *Problems, passID string) (_ int, err error) {
	desc := res.Description()

	ctx, span := r.tracer.Start(ctx, "loom.load",
		trace.WithAttributes(attribute.String("loom.resource", desc)))
	defer span.End()

	if r.loading[desc] {
		return 0, fmt.Errorf("%w: %s is already being loaded, check the import chain", ErrCyclicLoad, desc)
	}
	r.loading[desc] = true
	defer delete(r.loading, desc)

	rc, err := res.Open()
	if err != nil {
		return 0, fmt.Errorf("document from %s cannot be opened: %w", desc, err)
	}
	root, perr := document.Parse(rc)
	if cerr := rc.Close(); cerr != nil && perr == nil {
		log.Warn(log.CatReader, "closing %s: %v", desc, cerr)
	}
	if perr != nil {
		return 0, fmt.Errorf("parsing document from %s: %w", desc, perr)
	}

	before := r.registry.Len()
	rctx := &Context{reader: r, res: res, problems: pc, passID: passID, ctx: ctx}
	if err := r.docReader.Register(root, rctx); err != nil {
		return r.registry.Len() - before, err
	}
	count := r.registry.Len() - before
	log.Debug(log.CatReader, "loaded %d definitions from %s", count, desc)
	span.SetAttributes(attribute.Int("loom.registered", count))
	return count, nil
}
