package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"
	"github.com/spf13/afero"

	"github.com/robert-at-pretension-io/notifygen/internal/logger"
)

// Debounce windows for watch mode.
const (
	watchDebounce = 200 * time.Millisecond
	watchMaxWait  = 2 * time.Second
)

var ignoredWatchDirs = map[string]bool{
	".git":         true,
	".vs":          true,
	".idea":        true,
	"bin":          true,
	"obj":          true,
	"node_modules": true,
}

// Watch regenerates companions whenever a source under rootPath changes.
// onRun receives every batch result; Watch returns when ctx is canceled.
func (idx *Indexer) Watch(ctx context.Context, rootPath string, onRun func(*Result, error)) error {
	if idx.FS == nil {
		idx.FS = afero.NewOsFs()
	}
	if idx.Log == nil {
		idx.Log = logger.FromContext(ctx)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	cacheDir := idx.resolveCacheDir(rootPath)
	dirs := 0
	if err := afero.Walk(idx.FS, rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != rootPath && (ignoredWatchDirs[info.Name()] || path == cacheDir) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			idx.Log.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		dirs++
		return nil
	}); err != nil {
		return fmt.Errorf("failed to walk %s: %w", rootPath, err)
	}
	idx.Log.Info("watching for changes", "root", rootPath, "directories", dirs)

	var mu sync.Mutex
	pending := make(map[string]bool)

	flush := func() {
		mu.Lock()
		files := make([]string, 0, len(pending))
		for f := range pending {
			files = append(files, f)
		}
		pending = make(map[string]bool)
		mu.Unlock()
		if len(files) == 0 || ctx.Err() != nil {
			return
		}
		sort.Strings(files)
		idx.Log.Debug("regenerating", "files", len(files))
		res, err := idx.RunFiles(ctx, rootPath, files)
		if onRun != nil {
			onRun(res, err)
		}
	}
	debounced, cancel := debounce.NewWithMaxWait(watchDebounce, watchMaxWait, flush)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := idx.FS.Stat(event.Name); err == nil && info.IsDir() && !ignoredWatchDirs[info.Name()] {
					_ = watcher.Add(event.Name)
					continue
				}
			}
			if !idx.isWatchedSource(event) {
				continue
			}
			mu.Lock()
			pending[event.Name] = true
			mu.Unlock()
			debounced()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			idx.Log.Warn("watch error", "error", err)
		}
	}
}

func (idx *Indexer) isWatchedSource(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".cs") {
		return false
	}
	if idx.Config.IsGeneratedFile(event.Name) || idx.Config.ShouldIgnoreFile(event.Name) {
		return false
	}
	_, err := idx.FS.Stat(event.Name)
	return err == nil
}
