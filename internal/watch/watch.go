// Package watch re-runs a handler on the files that change under a set of
// directories.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay groups the bursts of events an editor save produces.
const DefaultDelay = 100 * time.Millisecond

// suppressWindow is how long a suppressed path ignores its own events.
const suppressWindow = time.Second

// Handler is called with a path whose content changed.
type Handler func(ctx context.Context, path string) error

type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	handle  Handler
	exts    map[string]bool
	delay   time.Duration

	mu         sync.Mutex
	pending    map[string]time.Time
	suppressed map[string]time.Time
}

// New watches dirs recursively for files with one of exts.
func New(dirs, exts []string, handle Handler, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		watcher:    fw,
		logger:     logger,
		handle:     handle,
		exts:       map[string]bool{},
		delay:      DefaultDelay,
		pending:    map[string]time.Time{},
		suppressed: map[string]time.Time{},
	}
	for _, ext := range exts {
		w.exts[ext] = true
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return w, nil
}

// SetDelay changes how long a file must stay quiet before it is handled.
// A non-positive delay restores DefaultDelay.
func (w *Watcher) SetDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultDelay
	}
	w.delay = d
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Suppress ignores the changes of path for a short while. Callers use it
// before writing a file they are watching.
func (w *Watcher) Suppress(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.suppressed[filepath.Clean(path)] = time.Now().Add(suppressWindow)
}

// Run dispatches changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(w.delay/2, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.observe(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		case now := <-ticker.C:
			for _, path := range w.due(now) {
				if err := w.handle(ctx, path); err != nil {
					w.logger.Error("Error handling change", zap.String("path", path), zap.Error(err))
				}
			}
		}
	}
}

func (w *Watcher) observe(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("Cannot watch new directory", zap.String("path", path), zap.Error(err))
			}
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.exts[filepath.Ext(path)] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if until, ok := w.suppressed[path]; ok {
		if time.Now().Before(until) {
			return
		}
		delete(w.suppressed, path)
	}
	w.pending[path] = time.Now()
}

// due returns the pending paths that stayed quiet for the delay, sorted.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.delay {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
