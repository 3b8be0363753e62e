package resource

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

// streamResource exercises the stream-based default probes: it has no path
// or URL form, so every probe falls through to Open.
type streamResource struct {
	data      []byte
	openErr   error
	closeErr  error
	opens     int
	closes    int
	readErrAt int // return an error after this many bytes; 0 disables
}

type countingReader struct {
	r      *streamResource
	reader io.Reader
	read   int
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.r.readErrAt > 0 && c.read >= c.r.readErrAt {
		return 0, errors.New("stream damaged")
	}
	n, err := c.reader.Read(p)
	c.read += n
	return n, err
}

func (c *countingReader) Close() error {
	c.r.closes++
	return c.r.closeErr
}

func (s *streamResource) Open() (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opens++
	return &countingReader{r: s, reader: bytes.NewReader(s.data)}, nil
}

func (s *streamResource) Description() string                    { return "stream [test]" }
func (s *streamResource) Exists() bool                           { return probeExists(s) }
func (s *streamResource) IsReadable() bool                       { return s.Exists() }
func (s *streamResource) IsOpen() bool                           { return false }
func (s *streamResource) IsFile() bool                           { return false }
func (s *streamResource) URL() (*url.URL, error)                 { return nil, unresolvable(s.Description(), "URL") }
func (s *streamResource) URI() (*url.URL, error)                 { return deriveURI(s) }
func (s *streamResource) File() (string, error)                  { return "", unresolvable(s.Description(), "absolute file path") }
func (s *streamResource) ContentLength() (int64, error)          { return readFullLength(s) }
func (s *streamResource) LastModified() (time.Time, error)       { return fileModTime(s) }
func (s *streamResource) CreateRelative(string) (Resource, error) {
	return nil, unresolvable(s.Description(), "a relative resource")
}
func (s *streamResource) Filename() string { return "" }

func TestExists_StreamFallback(t *testing.T) {
	r := &streamResource{data: []byte("payload")}
	require.True(t, r.Exists())

	// Exists implies a subsequent open succeeds.
	rc, err := r.Open()
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestExists_OpenFailureMeansAbsent(t *testing.T) {
	r := &streamResource{openErr: errors.New("gone")}
	require.False(t, r.Exists())
}

func TestExists_CloseFailureMeansAbsent(t *testing.T) {
	r := &streamResource{data: []byte("x"), closeErr: errors.New("close failed")}
	require.False(t, r.Exists())
}

func TestContentLength_FullTraversalClosesOnce(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 1000) // forces multiple 256-byte chunks
	r := &streamResource{data: payload}

	n, err := r.ContentLength()
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), n)
	require.Equal(t, 1, r.closes)
}

func TestContentLength_ReadFailureStillClosesOnce(t *testing.T) {
	r := &streamResource{data: bytes.Repeat([]byte("a"), 600), readErrAt: 256}

	_, err := r.ContentLength()
	require.Error(t, err)
	require.Equal(t, 1, r.closes)
}

func TestDefault_UnresolvableForms(t *testing.T) {
	r := &streamResource{data: []byte("x")}

	_, err := r.URL()
	require.ErrorIs(t, err, ErrUnresolvable)
	_, err = r.URI()
	require.ErrorIs(t, err, ErrUnresolvable)
	_, err = r.File()
	require.ErrorIs(t, err, ErrUnresolvable)
	_, err = r.LastModified()
	require.ErrorIs(t, err, ErrUnresolvable)
	_, err = r.CreateRelative("sibling.xml")
	require.ErrorIs(t, err, ErrUnresolvable)
	require.Empty(t, r.Filename())
	require.False(t, r.IsOpen())
	require.False(t, r.IsFile())
}

func TestEqualAndHash_DescriptionBased(t *testing.T) {
	a := NewFileResource("defs/app.xml")
	b := NewFileResource("defs/app.xml")
	c := NewFileResource("defs/other.xml")

	require.True(t, Equal(a, a))
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
	require.False(t, Equal(a, nil))
	require.True(t, Equal(nil, nil))

	require.Equal(t, Hash(a), Hash(b))
	require.NotEqual(t, Hash(a), Hash(c))
}

func TestApplyRelativePath(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"defs/app.xml", "extra.xml", "defs/extra.xml"},
		{"defs/sub/app.xml", "../up.xml", "defs/sub/../up.xml"},
		{"app.xml", "extra.xml", "extra.xml"},
		{"defs/app.xml", "/rooted.xml", "defs/rooted.xml"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ApplyRelativePath(tt.base, tt.rel), "base=%s rel=%s", tt.base, tt.rel)
	}
}

func TestFileResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.xml")
	require.NoError(t, os.WriteFile(path, []byte("<components/>"), 0o644))

	r := NewFileResource(path)
	require.True(t, r.Exists())
	require.True(t, r.IsReadable())
	require.True(t, r.IsFile())
	require.Equal(t, "app.xml", r.Filename())

	n, err := r.ContentLength()
	require.NoError(t, err)
	require.Equal(t, int64(len("<components/>")), n)

	mod, err := r.LastModified()
	require.NoError(t, err)
	require.False(t, mod.IsZero())

	u, err := r.URL()
	require.NoError(t, err)
	require.Equal(t, "file", u.Scheme)

	uri, err := r.URI()
	require.NoError(t, err)
	require.Equal(t, u.String(), uri.String())

	abs, err := r.File()
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(abs))

	rc, err := r.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "<components/>", string(data))
}

func TestFileResource_Missing(t *testing.T) {
	r := NewFileResource(filepath.Join(t.TempDir(), "missing.xml"))
	require.False(t, r.Exists())
	require.False(t, r.IsReadable())

	_, err := r.LastModified()
	require.ErrorIs(t, err, ErrUnresolvable)
}

func TestFileResource_CreateRelative(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "app.xml")
	sibling := filepath.Join(dir, "extra.xml")
	require.NoError(t, os.WriteFile(sibling, []byte("<components/>"), 0o644))

	r := NewFileResource(base)
	rel, err := r.CreateRelative("extra.xml")
	require.NoError(t, err)
	require.True(t, rel.Exists())
	require.Equal(t, "extra.xml", rel.Filename())
}

func TestFSResource(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/app.xml":   {Data: []byte("<components/>")},
		"defs/extra.xml": {Data: []byte("<components/>"), ModTime: time.Unix(100, 0)},
	}

	r := NewFSResource(fsys, "defs/app.xml")
	require.True(t, r.Exists())
	require.True(t, r.IsReadable())
	require.False(t, r.IsFile())
	require.Equal(t, "app.xml", r.Filename())

	n, err := r.ContentLength()
	require.NoError(t, err)
	require.Equal(t, int64(len("<components/>")), n)

	_, err = r.URL()
	require.ErrorIs(t, err, ErrUnresolvable)
	_, err = r.File()
	require.ErrorIs(t, err, ErrUnresolvable)

	rel, err := r.CreateRelative("extra.xml")
	require.NoError(t, err)
	require.True(t, rel.Exists())
	mod, err := rel.LastModified()
	require.NoError(t, err)
	require.Equal(t, time.Unix(100, 0), mod)

	missing := NewFSResource(fsys, "defs/missing.xml")
	require.False(t, missing.Exists())
	_, err = missing.LastModified()
	require.ErrorIs(t, err, ErrUnresolvable)
}
