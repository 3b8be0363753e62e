package resource

import (
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loomkit/loom/internal/log"
)

// Location prefixes recognized by the resolver.
const (
	// FSPrefix addresses an entry inside the configured bundle fs.FS.
	FSPrefix = "fs:"
	// FilePrefix addresses a filesystem path explicitly.
	FilePrefix = "file:"
	// GlobPrefix is the multi-resource wildcard prefix; the remainder is a
	// filesystem glob pattern.
	GlobPrefix = "glob:"
)

// LocationResolver maps location strings to resource handles. CachingResolver
// wraps Resolver with the same surface.
type LocationResolver interface {
	Resolve(location string) (Resource, error)
	ResolveAll(location string) ([]Resource, error)
}

// Resolver is the plain location resolver.
type Resolver struct {
	bundle fs.FS
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBundle attaches an fs.FS serving "fs:" locations, typically an
// embedded definition bundle.
func WithBundle(fsys fs.FS) ResolverOption {
	return func(r *Resolver) { r.bundle = fsys }
}

// NewResolver creates a resolver with the given options applied.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a location to a single handle. Wildcard locations resolve to
// their first match.
func (r *Resolver) Resolve(location string) (Resource, error) {
	if strings.HasPrefix(location, GlobPrefix) {
		all, err := r.ResolveAll(location)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, fmt.Errorf("wildcard location %q matched no resources", location)
		}
		return all[0], nil
	}
	return r.resolveOne(location)
}

// ResolveAll maps a location to every handle it denotes. Non-wildcard
// locations yield exactly one handle; wildcard locations may yield none.
func (r *Resolver) ResolveAll(location string) ([]Resource, error) {
	if !strings.HasPrefix(location, GlobPrefix) {
		res, err := r.resolveOne(location)
		if err != nil {
			return nil, err
		}
		return []Resource{res}, nil
	}

	pattern := strings.TrimPrefix(location, GlobPrefix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad wildcard location %q: %w", location, err)
	}
	sort.Strings(matches)
	resources := make([]Resource, 0, len(matches))
	for _, m := range matches {
		resources = append(resources, NewFileResource(m))
	}
	log.Debug(log.CatResource, "wildcard %q matched %d resources", location, len(resources))
	return resources, nil
}

func (r *Resolver) resolveOne(location string) (Resource, error) {
	switch {
	case strings.HasPrefix(location, FSPrefix):
		if r.bundle == nil {
			return nil, fmt.Errorf("location %q requires a bundle, none configured", location)
		}
		return NewFSResource(r.bundle, strings.TrimPrefix(location, FSPrefix)), nil
	case strings.HasPrefix(location, FilePrefix):
		return NewFileResource(strings.TrimPrefix(location, FilePrefix)), nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return ParseURLResource(location)
	default:
		return NewFileResource(location), nil
	}
}

// IsLocationURL reports whether the location is a URL-style locator: a
// recognized prefix (including the wildcard prefix) or an http(s) URL.
func IsLocationURL(location string) bool {
	for _, prefix := range []string{GlobPrefix, FSPrefix, FilePrefix, "http://", "https://"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// IsAbsoluteURI reports whether the location parses as a URI whose syntax
// marks it absolute. Syntax failures are reported as "not absolute" so that
// callers treat such locations as relative.
func IsAbsoluteURI(location string) bool {
	u, err := url.Parse(location)
	return err == nil && u.IsAbs() && len(u.Scheme) > 1
}
