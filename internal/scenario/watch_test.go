package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yard.geojson")
	other := filepath.Join(dir, "other.geojson")
	require.NoError(t, os.WriteFile(path, []byte(courtyard), 0o644))

	w, err := NewWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(courtyard), 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o644))

	select {
	case got := <-w.Events:
		want, err := filepath.Abs(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no event after writes")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected second event %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yard.geojson")
	require.NoError(t, os.WriteFile(path, []byte(courtyard), 0o644))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(p string) { changes <- p })
	}()

	require.NoError(t, os.WriteFile(path, []byte(courtyard), 0o644))
	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.NoError(t, w.Close())
}
