package zonecache

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher purges a Cache when files change below its zoneinfo
// directories, so that updated zone files are read again.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// NewWatcher starts watching dirs and their subdirectories on behalf of c.
// Directories that do not exist are skipped. Call Run to process events
// and Close to release the watcher.
func NewWatcher(c *Cache, dirs ...string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		cache:   c,
		watcher: watcher,
		log:     c.log.With(slog.String("component", "zonecache_watcher")),
	}
	for _, dir := range dirs {
		err = w.addTree(dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			watcher.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

// Run processes file system events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.LogAttrs(ctx, slog.LevelDebug, "zoneinfo changed", slog.String("name", ev.Name), slog.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) {
				fi, err := os.Stat(ev.Name)
				if err == nil && fi.IsDir() {
					err = w.addTree(ev.Name)
					if err != nil {
						w.log.LogAttrs(ctx, slog.LevelError, "watch directory", slog.String("path", ev.Name), slog.Any("error", err))
					}
				}
			}
			w.cache.Purge()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.LogAttrs(ctx, slog.LevelError, "watch", slog.Any("error", err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
