package resource

import (
	"io"
	"io/fs"
	"net/url"
	stdpath "path"
	"time"
)

// FSResource is a handle into an fs.FS, typically an embedded definition
// bundle. It has no URL or filesystem-path form; probing falls back to the
// stream-based defaults.
type FSResource struct {
	fsys fs.FS
	name string
}

// NewFSResource creates a handle for name within fsys. Names use forward
// slashes, as everywhere in io/fs.
func NewFSResource(fsys fs.FS, name string) *FSResource {
	return &FSResource{fsys: fsys, name: stdpath.Clean(name)}
}

// Open opens the entry for reading.
func (r *FSResource) Open() (io.ReadCloser, error) {
	return r.fsys.Open(r.name)
}

// Description identifies the handle by its bundle-relative name.
func (r *FSResource) Description() string {
	return "fs [" + r.name + "]"
}

// Exists reports whether the entry is present in the bundle.
func (r *FSResource) Exists() bool {
	_, err := fs.Stat(r.fsys, r.name)
	return err == nil
}

// IsReadable reports whether the entry is a readable non-directory.
func (r *FSResource) IsReadable() bool {
	fi, err := fs.Stat(r.fsys, r.name)
	return err == nil && !fi.IsDir()
}

// IsOpen always returns false.
func (r *FSResource) IsOpen() bool { return false }

// IsFile always returns false: bundle entries have no filesystem path.
func (r *FSResource) IsFile() bool { return false }

// URL fails: bundle entries have no URL form.
func (r *FSResource) URL() (*url.URL, error) {
	return nil, unresolvable(r.Description(), "URL")
}

// URI fails for the same reason URL does.
func (r *FSResource) URI() (*url.URL, error) {
	return deriveURI(r)
}

// File fails: bundle entries have no filesystem path.
func (r *FSResource) File() (string, error) {
	return "", unresolvable(r.Description(), "absolute file path")
}

// ContentLength returns the entry size from bundle metadata, reading the
// stream only when metadata is unavailable.
func (r *FSResource) ContentLength() (int64, error) {
	if fi, err := fs.Stat(r.fsys, r.name); err == nil {
		return fi.Size(), nil
	}
	return readFullLength(r)
}

// LastModified returns the entry's modification timestamp. Embedded bundles
// report a zero time for every entry; a zero time for a missing entry is
// reported as unresolvable.
func (r *FSResource) LastModified() (time.Time, error) {
	fi, err := fs.Stat(r.fsys, r.name)
	if err != nil {
		return time.Time{}, unresolvable(r.Description(), "a modification timestamp")
	}
	return fi.ModTime(), nil
}

// CreateRelative derives a sibling handle within the same bundle.
func (r *FSResource) CreateRelative(relativePath string) (Resource, error) {
	return NewFSResource(r.fsys, ApplyRelativePath(r.name, relativePath)), nil
}

// Filename returns the base name of the entry.
func (r *FSResource) Filename() string {
	return stdpath.Base(r.name)
}
