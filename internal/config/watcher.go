package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce matches the teacher's reload debounce window: editors
// commonly emit a WRITE followed by a CHMOD for a single save, and a
// naive watcher would otherwise reload twice.
const reloadDebounce = 500 * time.Millisecond

// Watcher watches a single config file path and invokes a callback,
// debounced, whenever it changes. Grounded on the teacher's path-list
// fsnotify reloader rather than its directory-scanning worker pool: a
// config file is one path with one consumer, so the simpler shape fits.
type Watcher struct {
	path     string
	onReload func(*Config)
	onError  func(error)

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
}

// NewWatcher builds a Watcher for path. onReload is invoked with the
// freshly loaded Config after each debounced change; onError is invoked
// if reload fails (the previous in-memory Config is left untouched by
// the caller in that case).
func NewWatcher(path string, onReload func(*Config), onError func(error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		onReload: onReload,
		onError:  onError,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(fmt.Errorf("config: watch error: %w", err))
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

// Exists reports whether path is present on disk (the doctor subcommand
// reports a missing config file as a failed check).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
