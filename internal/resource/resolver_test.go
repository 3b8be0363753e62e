package resource

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolver_Prefixes(t *testing.T) {
	fsys := fstest.MapFS{"defs/app.xml": {Data: []byte("<components/>")}}
	r := NewResolver(WithBundle(fsys))

	res, err := r.Resolve("fs:defs/app.xml")
	require.NoError(t, err)
	require.IsType(t, &FSResource{}, res)

	res, err = r.Resolve("file:defs/app.xml")
	require.NoError(t, err)
	require.IsType(t, &FileResource{}, res)

	res, err = r.Resolve("https://example.com/defs/app.xml")
	require.NoError(t, err)
	require.IsType(t, &URLResource{}, res)

	res, err = r.Resolve("defs/app.xml")
	require.NoError(t, err)
	require.IsType(t, &FileResource{}, res)
}

func TestResolver_FSWithoutBundle(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve("fs:defs/app.xml")
	require.Error(t, err)
}

func TestResolver_Glob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.xml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<components/>"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	r := NewResolver()
	resources, err := r.ResolveAll("glob:" + filepath.Join(dir, "*.xml"))
	require.NoError(t, err)
	require.Len(t, resources, 2)
	// Matches come back sorted.
	require.Equal(t, "a.xml", resources[0].Filename())
	require.Equal(t, "b.xml", resources[1].Filename())

	// A pattern with no matches is not an error.
	resources, err = r.ResolveAll("glob:" + filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Empty(t, resources)

	// Resolve on an empty wildcard is an error.
	_, err = r.Resolve("glob:" + filepath.Join(dir, "*.json"))
	require.Error(t, err)
}

func TestResolver_ResolveAllSingle(t *testing.T) {
	r := NewResolver()
	resources, err := r.ResolveAll("defs/app.xml")
	require.NoError(t, err)
	require.Len(t, resources, 1)
}

func TestIsLocationURL(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"fs:defs/app.xml", true},
		{"file:/tmp/app.xml", true},
		{"glob:defs/*.xml", true},
		{"http://example.com/a.xml", true},
		{"https://example.com/a.xml", true},
		{"defs/app.xml", false},
		{"/abs/defs/app.xml", false},
		{"../up.xml", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsLocationURL(tt.location), tt.location)
	}
}

func TestIsAbsoluteURI(t *testing.T) {
	require.True(t, IsAbsoluteURI("https://example.com/a.xml"))
	require.True(t, IsAbsoluteURI("memory://defs/a"))
	require.False(t, IsAbsoluteURI("defs/app.xml"))
	require.False(t, IsAbsoluteURI("/abs/path.xml"))
	// Syntax failures classify as relative, never as errors.
	require.False(t, IsAbsoluteURI("://broken"))
	require.False(t, IsAbsoluteURI("a b\x00c"))
}

func TestURLResource_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/defs/app.xml" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte("<components/>"))
	}))
	defer srv.Close()

	res, err := ParseURLResource(srv.URL + "/defs/app.xml")
	require.NoError(t, err)
	require.True(t, res.Exists())

	n, err := res.ContentLength()
	require.NoError(t, err)
	require.Equal(t, int64(len("<components/>")), n)

	missing, err := ParseURLResource(srv.URL + "/defs/missing.xml")
	require.NoError(t, err)
	require.False(t, missing.Exists())
	_, err = missing.Open()
	require.Error(t, err)
}

func TestURLResource_FileScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.xml")
	require.NoError(t, os.WriteFile(path, []byte("<components/>"), 0o644))

	res, err := ParseURLResource("file://" + filepath.ToSlash(path))
	require.NoError(t, err)
	require.True(t, res.IsFile())
	require.True(t, res.Exists())

	mod, err := res.LastModified()
	require.NoError(t, err)
	require.False(t, mod.IsZero())
}

func TestURLResource_CreateRelative(t *testing.T) {
	res, err := ParseURLResource("https://example.com/defs/app.xml")
	require.NoError(t, err)

	rel, err := res.CreateRelative("extra.xml")
	require.NoError(t, err)
	require.Equal(t, "url [https://example.com/defs/extra.xml]", rel.Description())
}

func TestCachingResolver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<components/>"), 0o644))

	c := NewCachingResolver(NewResolver(), time.Minute)

	first, err := c.ResolveAll("glob:" + filepath.Join(dir, "*.xml"))
	require.NoError(t, err)
	require.Len(t, first, 1)

	// New file is invisible until invalidation.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte("<components/>"), 0o644))
	cached, err := c.ResolveAll("glob:" + filepath.Join(dir, "*.xml"))
	require.NoError(t, err)
	require.Len(t, cached, 1)

	c.Invalidate()
	fresh, err := c.ResolveAll("glob:" + filepath.Join(dir, "*.xml"))
	require.NoError(t, err)
	require.Len(t, fresh, 2)
}
