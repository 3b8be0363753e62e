package resource

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"
)

const probeChunkSize = 256

// probeExists implements the default existence check: resolve to a
// filesystem path and stat it; when the handle has no path form, fall back
// to opening the stream and immediately closing it. Only open/close errors
// are treated as non-existence; panics are not recovered.
func probeExists(r Resource) bool {
	if path, err := r.File(); err == nil {
		_, statErr := os.Stat(path)
		return statErr == nil
	}
	rc, err := r.Open()
	if err != nil {
		return false
	}
	return rc.Close() == nil
}

// readFullLength implements the default content-length probe: read the
// stream to exhaustion in fixed-size chunks. The stream is closed exactly
// once on every exit path; close errors after a successful read are ignored.
func readFullLength(r Resource) (int64, error) {
	rc, err := r.Open()
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	var size int64
	buf := make([]byte, probeChunkSize)
	for {
		n, err := rc.Read(buf)
		size += int64(n)
		if err == io.EOF {
			return size, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// fileModTime implements the default last-modified probe via the handle's
// path form, distinguishing a missing path from a legitimately zero
// timestamp.
func fileModTime(r Resource) (time.Time, error) {
	path, err := r.File()
	if err != nil {
		return time.Time{}, err
	}
	fi, statErr := os.Stat(path)
	if statErr != nil {
		return time.Time{}, fmt.Errorf(
			"%s cannot be resolved in the file system for checking its last-modified timestamp: %w",
			r.Description(), ErrUnresolvable)
	}
	return fi.ModTime(), nil
}

// deriveURI builds a URI from the handle's URL form, failing with
// ErrInvalidURI when the URL's text does not round-trip as a URI.
func deriveURI(r Resource) (*url.URL, error) {
	u, err := r.URL()
	if err != nil {
		return nil, err
	}
	parsed, parseErr := url.Parse(u.String())
	if parseErr != nil {
		return nil, fmt.Errorf("%w [%s]: %v", ErrInvalidURI, u.String(), parseErr)
	}
	return parsed, nil
}

// ApplyRelativePath replaces everything after the last '/' of path with the
// relative reference. A relative reference with a leading '/' replaces from
// the slash itself.
func ApplyRelativePath(path, relative string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return relative
	}
	if strings.HasPrefix(relative, "/") {
		return path[:idx] + relative
	}
	return path[:idx+1] + relative
}
