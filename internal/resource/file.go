package resource

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// FileResource is a filesystem-backed handle.
type FileResource struct {
	path string
}

// NewFileResource creates a handle for the given path, absolute or relative
// to the working directory.
func NewFileResource(path string) *FileResource {
	return &FileResource{path: filepath.Clean(path)}
}

// Open opens the underlying file for reading.
func (r *FileResource) Open() (io.ReadCloser, error) {
	return os.Open(r.path)
}

// Description identifies the handle by its path.
func (r *FileResource) Description() string {
	return "file [" + r.path + "]"
}

// Exists reports whether the path is present.
func (r *FileResource) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// IsReadable reports whether the path is a readable regular file.
func (r *FileResource) IsReadable() bool {
	fi, err := os.Stat(r.path)
	if err != nil || fi.IsDir() {
		return false
	}
	f, err := os.Open(r.path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// IsOpen always returns false: every Open call yields a fresh stream.
func (r *FileResource) IsOpen() bool { return false }

// IsFile always returns true.
func (r *FileResource) IsFile() bool { return true }

// URL returns the file URL for the absolute path.
func (r *FileResource) URL() (*url.URL, error) {
	abs, err := r.File()
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// URI derives a URI from the file URL.
func (r *FileResource) URI() (*url.URL, error) {
	return deriveURI(r)
}

// File returns the absolute path.
func (r *FileResource) File() (string, error) {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		return "", unresolvable(r.Description(), "absolute file path")
	}
	return abs, nil
}

// ContentLength returns the file size without reading the content.
func (r *FileResource) ContentLength() (int64, error) {
	fi, err := os.Stat(r.path)
	if err != nil {
		return readFullLength(r)
	}
	return fi.Size(), nil
}

// LastModified returns the file's modification timestamp.
func (r *FileResource) LastModified() (time.Time, error) {
	return fileModTime(r)
}

// CreateRelative derives a sibling handle by applying the relative path to
// this handle's path.
func (r *FileResource) CreateRelative(relativePath string) (Resource, error) {
	derived := ApplyRelativePath(filepath.ToSlash(r.path), relativePath)
	return NewFileResource(filepath.FromSlash(derived)), nil
}

// Filename returns the base name of the path.
func (r *FileResource) Filename() string {
	return filepath.Base(r.path)
}

// Path returns the path as given at construction, cleaned.
func (r *FileResource) Path() string {
	return r.path
}
