// Package watch triggers a Library reload when files under its root
// change, for "fae watch" and "fae serve --watch".
//
// Grounded on the teacher's cmd/glyph/main.go watchForChanges: an
// fsnotify.Watcher added to the directory (not the individual file, so
// editors' atomic-save-via-rename still fires Write/Create), a debounce
// timer collapsing a burst of events into one reload, and a dedicated
// goroutine fanning out watcher.Events/watcher.Errors.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fae-lang/fae/pkg/logging"
)

// Reloader is the subset of *library.Library that watch needs.
type Reloader interface {
	Reload(discard bool) error
}

// Watcher reloads a Reloader's backing directory on file-system changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	lib      Reloader
	debounce time.Duration
	logger   *logging.Logger
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the default 100ms debounce window.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option { return func(w *Watcher) { w.logger = l } }

// New watches root (and, if recursive, every subdirectory under it) and
// calls lib.Reload(false) whenever a file under it changes.
func New(root string, recursive bool, lib Reloader, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		lib:      lib,
		debounce: 100 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := addDirs(fsw, root, recursive); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func addDirs(fsw *fsnotify.Watcher, root string, recursive bool) error {
	if !recursive {
		return fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// Close stops the watcher and releases its underlying file descriptors.
func (w *Watcher) Close() error {
	close(w.stop)
	<-w.done
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.WarnWithFields("watcher error", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func (w *Watcher) reload() {
	if err := w.lib.Reload(false); err != nil {
		if w.logger != nil {
			w.logger.WarnWithFields("reload failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	if w.logger != nil {
		w.logger.Info("library reloaded after file change")
	}
}
