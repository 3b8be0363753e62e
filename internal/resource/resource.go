// Package resource provides uniform handles to external byte-bearing
// artifacts (files, URLs, embedded bundles) together with a resolver that
// maps location strings to handles. Concrete kinds implement the small
// primitive set (Open, Description) and override the probing defaults where
// they can do better.
package resource

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/url"
	"time"
)

// Resource is a handle to an external artifact. Handles are immutable once
// created; equality and hashing derive from the description string.
type Resource interface {
	// Open returns a fresh reader over the artifact's bytes.
	Open() (io.ReadCloser, error)

	// Description returns a human-readable descriptor, stable for the
	// lifetime of the handle.
	Description() string

	// Exists reports whether the artifact is present. Never errors: any
	// failure while probing counts as non-existence.
	Exists() bool

	// IsReadable reports whether content can actually be read.
	IsReadable() bool

	// IsOpen reports whether this handle represents an already-open stream.
	IsOpen() bool

	// IsFile reports whether the handle maps to a filesystem path.
	IsFile() bool

	// URL resolves the handle to a URL form.
	URL() (*url.URL, error)

	// URI derives a URI from the URL form.
	URI() (*url.URL, error)

	// File resolves the handle to an absolute filesystem path.
	File() (string, error)

	// ContentLength returns the artifact's size in bytes.
	ContentLength() (int64, error)

	// LastModified returns the artifact's modification timestamp.
	LastModified() (time.Time, error)

	// CreateRelative derives a sibling handle from a relative path string.
	CreateRelative(relativePath string) (Resource, error)

	// Filename returns the artifact's base name, or "" when it has none.
	Filename() string
}

// ErrUnresolvable marks an expected "cannot be resolved to this form"
// condition. Callers routinely probe and fall back on it.
var ErrUnresolvable = errors.New("unresolvable location")

// ErrInvalidURI marks a URL whose text is not syntactically a valid URI.
var ErrInvalidURI = errors.New("invalid URI")

func unresolvable(description, target string) error {
	return fmt.Errorf("%s cannot be resolved to %s: %w", description, target, ErrUnresolvable)
}

// Equal reports whether two handles refer to the same artifact. Identity
// short-circuits; otherwise description strings decide.
func Equal(a, b Resource) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	return a.Description() == b.Description()
}

// Hash returns a hash of the handle, derived from its description so that
// equal handles hash equally.
func Hash(r Resource) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(r.Description()))
	return h.Sum64()
}
