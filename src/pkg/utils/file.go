package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// defaultSettleDelay is how long a new file must go without writes before it
// is handed to the handler.
const defaultSettleDelay = 500 * time.Millisecond

// DirWatcher reports regular files created in (or moved into) a directory,
// once each, after writes to them have settled.
type DirWatcher struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
}

// NewDirWatcher starts watching dir. Events that occur after it returns are
// delivered by Run.
func NewDirWatcher(dir string) (*DirWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	watcher, watcherErr := fsnotify.NewWatcher()
	if watcherErr != nil {
		return nil, watcherErr
	}

	if addErr := watcher.Add(dir); addErr != nil {
		_ = watcher.Close()
		return nil, addErr
	}

	return &DirWatcher{dir: dir, settle: defaultSettleDelay, watcher: watcher}, nil
}

// Run calls handle for each new regular file until ctx is done. A file is
// handled once, after it has seen no writes for the settle delay; it becomes
// eligible again only after it is removed or renamed away. Errors from handle
// are logged and do not stop the watch.
func (w *DirWatcher) Run(ctx context.Context, handle func(path string) error) error {
	pending := map[string]*time.Timer{}
	handled := map[string]bool{}
	ready := make(chan string)

	defer func() {
		for _, timer := range pending {
			timer.Stop()
		}
		if err := w.watcher.Close(); err != nil {
			slog.Error("DirWatcher: failed to close watcher", "error", err)
		}
	}()

	schedule := func(name string) {
		if timer, ok := pending[name]; ok {
			timer.Reset(w.settle)
			return
		}
		pending[name] = time.AfterFunc(w.settle, func() {
			select {
			case ready <- name:
			case <-ctx.Done():
			}
		})
	}

	slog.Debug("DirWatcher: starting to watch directory", "directory", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			slog.Debug("DirWatcher: received event", "event", event.Op, "name", event.Name)

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				if timer, ok := pending[event.Name]; ok {
					timer.Stop()
					delete(pending, event.Name)
				}
				delete(handled, event.Name)
			case event.Has(fsnotify.Create):
				if handled[event.Name] {
					continue
				}
				info, statErr := os.Stat(event.Name)
				if statErr != nil || !info.Mode().IsRegular() {
					continue
				}
				schedule(event.Name)
			case event.Has(fsnotify.Write):
				if _, ok := pending[event.Name]; ok {
					schedule(event.Name)
				}
			}
		case name := <-ready:
			delete(pending, name)
			if handled[name] {
				continue
			}
			info, statErr := os.Stat(name)
			if statErr != nil || !info.Mode().IsRegular() {
				continue
			}

			handled[name] = true
			if err := handle(name); err != nil {
				slog.Warn("DirWatcher: handler failed", "name", name, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			slog.Warn("DirWatcher: watcher error", "error", err)
		}
	}
}

// WatchNewFiles watches dir and calls handle for each new regular file until
// ctx is done.
func WatchNewFiles(ctx context.Context, dir string, handle func(path string) error) error {
	watcher, err := NewDirWatcher(dir)
	if err != nil {
		return err
	}
	return watcher.Run(ctx, handle)
}
