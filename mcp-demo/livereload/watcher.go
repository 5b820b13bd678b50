package livereload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher reports changes to a fixed set of files. Events for one file that
// arrive within the debounce window of each other are reported once.
type Watcher struct {
	files    map[string]string // absolute path -> name relative to root
	debounce time.Duration
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
	changes  chan string
}

// NewWatcher watches files, given relative to root. The files need not exist
// yet but their directories must.
func NewWatcher(root string, files []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]string, len(files)),
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		changes:  make(chan string, len(files)),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs := filepath.Join(absRoot, filepath.FromSlash(f))
		w.files[abs] = filepath.ToSlash(f)
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	return w, nil
}

// Changes delivers the root-relative name of each changed file. It is closed
// when Run returns.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run consumes filesystem events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.fsw.Close()

	done := make(chan struct{})
	defer close(done)

	fired := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			name, watched := w.files[filepath.Clean(ev.Name)]
			if !watched || !ev.Has(changeOps) {
				continue
			}
			w.logger.Debug("file event", zap.String("file", name), zap.String("op", ev.Op.String()))
			if t, ok := timers[name]; ok {
				t.Reset(w.debounce)
				continue
			}
			timers[name] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- name:
				case <-done:
				}
			})

		case name := <-fired:
			delete(timers, name)
			select {
			case w.changes <- name:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
