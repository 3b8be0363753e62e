package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/internal/watcher"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "app.xml")
	err := os.WriteFile(defPath, []byte("<components/>"), 0644)
	require.NoError(t, err, "failed to create definition file")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{defPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(defPath, []byte(fmt.Sprintf("<components n=\"%d\"/>", i)), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
		// Expected - no second notification
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "app.xml")
	otherPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(defPath, []byte("<components/>"), 0644))
	// Pre-create the other file so writes to it are just Write events
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{defPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
		// Expected
	}
}

func TestWatcher_MultiplePathsAcrossDirectories(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := filepath.Join(dirA, "a.xml")
	pathB := filepath.Join(dirB, "b.xml")
	require.NoError(t, os.WriteFile(pathA, []byte("<components/>"), 0644))
	require.NoError(t, os.WriteFile(pathB, []byte("<components/>"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{pathA, pathB},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(pathB, []byte("<components x=\"1\"/>"), 0644))

	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification for second watched file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "app.xml")
	require.NoError(t, os.WriteFile(defPath, []byte("<components/>"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{defPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
		// Expected
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_NoPaths(t *testing.T) {
	_, err := watcher.New(watcher.Config{DebounceDur: time.Second})
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/etc/loom/app.xml")

	assert.Equal(t, []string{"/etc/loom/app.xml"}, cfg.Paths)
	assert.Equal(t, 1*time.Second, cfg.DebounceDur)
}
