package resource

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	stdpath "path"
	"path/filepath"
	"time"
)

// httpClient is shared by all URL handles. Definition documents are small;
// a conservative timeout keeps a bad import from stalling a pass.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// URLResource is a handle backed by a file, http, or https URL.
type URLResource struct {
	u *url.URL
}

// NewURLResource creates a handle for the given URL.
func NewURLResource(u *url.URL) *URLResource {
	return &URLResource{u: u}
}

// ParseURLResource creates a handle from a URL string.
func ParseURLResource(raw string) (*URLResource, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w [%s]: %v", ErrInvalidURI, raw, err)
	}
	return &URLResource{u: u}, nil
}

// Open fetches the URL. File URLs open the local path directly; http and
// https URLs issue a GET and treat non-2xx statuses as open failures.
func (r *URLResource) Open() (io.ReadCloser, error) {
	switch r.u.Scheme {
	case "file":
		path, err := r.File()
		if err != nil {
			return nil, err
		}
		return os.Open(path)
	case "http", "https":
		resp, err := httpClient.Get(r.u.String())
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: unexpected status %s", r.u, resp.Status)
		}
		return resp.Body, nil
	default:
		return nil, unresolvable(r.Description(), "an openable stream")
	}
}

// Description identifies the handle by its URL.
func (r *URLResource) Description() string {
	return "url [" + r.u.String() + "]"
}

// Exists probes via the path form for file URLs and via an open/close probe
// otherwise.
func (r *URLResource) Exists() bool {
	return probeExists(r)
}

// IsReadable equals Exists.
func (r *URLResource) IsReadable() bool {
	return r.Exists()
}

// IsOpen always returns false.
func (r *URLResource) IsOpen() bool { return false }

// IsFile reports whether this is a file URL.
func (r *URLResource) IsFile() bool {
	return r.u.Scheme == "file"
}

// URL returns the underlying URL.
func (r *URLResource) URL() (*url.URL, error) {
	return r.u, nil
}

// URI derives a URI from the URL.
func (r *URLResource) URI() (*url.URL, error) {
	return deriveURI(r)
}

// File returns the local path for file URLs, and fails otherwise.
func (r *URLResource) File() (string, error) {
	if r.u.Scheme != "file" {
		return "", unresolvable(r.Description(), "absolute file path")
	}
	return filepath.FromSlash(r.u.Path), nil
}

// ContentLength reads the stream to exhaustion; remote servers are not
// trusted to report accurate lengths.
func (r *URLResource) ContentLength() (int64, error) {
	return readFullLength(r)
}

// LastModified resolves via the path form, so only file URLs succeed.
func (r *URLResource) LastModified() (time.Time, error) {
	return fileModTime(r)
}

// CreateRelative resolves the relative reference against this URL.
func (r *URLResource) CreateRelative(relativePath string) (Resource, error) {
	ref, err := url.Parse(relativePath)
	if err != nil {
		return nil, fmt.Errorf("%w [%s]: %v", ErrInvalidURI, relativePath, err)
	}
	return NewURLResource(r.u.ResolveReference(ref)), nil
}

// Filename returns the base name of the URL path.
func (r *URLResource) Filename() string {
	name := stdpath.Base(r.u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
