package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWatchedSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Point.cs")
	gen := filepath.Join(dir, "Point.ValueChanged.cs")
	txt := filepath.Join(dir, "notes.txt")
	for _, p := range []string{src, gen, txt} {
		require.NoError(t, os.WriteFile(p, []byte("//"), 0o644))
	}
	idx := newTestIndexer(afero.NewOsFs(), false)

	cases := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"Should accept writes to sources", fsnotify.Event{Name: src, Op: fsnotify.Write}, true},
		{"Should accept created sources", fsnotify.Event{Name: src, Op: fsnotify.Create}, true},
		{"Should ignore chmod", fsnotify.Event{Name: src, Op: fsnotify.Chmod}, false},
		{"Should ignore generated companions", fsnotify.Event{Name: gen, Op: fsnotify.Write}, false},
		{"Should ignore other extensions", fsnotify.Event{Name: txt, Op: fsnotify.Write}, false},
		{"Should ignore removed files", fsnotify.Event{Name: filepath.Join(dir, "Gone.cs"), Op: fsnotify.Write}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, idx.isWatchedSource(tc.event))
		})
	}
}

func TestIsWatchedSourceUsesIndexerFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeSource(t, fs, "/proj/Point.cs", pointSource)
	idx := newTestIndexer(fs, false)

	t.Run("Should see files that exist only in the injected filesystem", func(t *testing.T) {
		assert.True(t, idx.isWatchedSource(fsnotify.Event{Name: "/proj/Point.cs", Op: fsnotify.Write}))
		assert.False(t, idx.isWatchedSource(fsnotify.Event{Name: "/proj/Missing.cs", Op: fsnotify.Write}))
	})
}

func TestWatchRegeneratesChangedSource(t *testing.T) {
	dir := t.TempDir()
	idx := newTestIndexer(afero.NewOsFs(), false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 4)
	done := make(chan error, 1)
	go func() {
		done <- idx.Watch(ctx, dir, func(res *Result, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	// Give the watcher time to register the root.
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Point.cs"), []byte(pointSource), 0o644))

	select {
	case res := <-results:
		assert.Equal(t, 1, res.Summary.Written)
		_, err := os.Stat(filepath.Join(dir, "Point.ValueChanged.cs"))
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("no regeneration after writing a source")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
