package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the bursts of events editors emit per save.
const DefaultDebounce = 500 * time.Millisecond

// Retrainer is told when the corpus has changed. session.Session satisfies it.
type Retrainer interface {
	ScheduleRetrain()
}

// Watcher observes a corpus directory tree and schedules one retrain per
// quiet period after matching files change.
type Watcher struct {
	root     string
	target   Retrainer
	debounce time.Duration
	matcher  *Matcher
	skip     func(path string) bool
	logger   *log.Logger

	mu      sync.Mutex
	changed []string
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithSkip ignores changes to paths for which skip returns true, such as
// files the caller writes itself.
func WithSkip(skip func(path string) bool) Option {
	return func(w *Watcher) {
		w.skip = skip
	}
}

func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(root string, target Retrainer, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		target:   target,
		debounce: DefaultDebounce,
		matcher:  NewMatcher(root),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Changed returns and clears the files seen since the last call.
func (w *Watcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.changed
	w.changed = nil
	return out
}

// Run watches until ctx is done. ready, when non-nil, is called once the
// initial directories are registered.
func (w *Watcher) Run(ctx context.Context, ready func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := os.MkdirAll(w.root, 0755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}
	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	if ready != nil {
		ready()
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, ev) {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("Corpus watcher error: %v", err)
		case <-fire:
			timer, fire = nil, nil
			w.logger.Printf("Corpus changed, retraining")
			w.target.ScheduleRetrain()
		}
	}
}

// handle reports whether ev touches corpus text.
func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, ev.Name); err != nil {
				w.logger.Printf("Failed to watch %s: %v", ev.Name, err)
			}
			return false
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if !w.matcher.Match(ev.Name) {
		return false
	}
	if w.skip != nil && w.skip(ev.Name) {
		return false
	}
	w.mu.Lock()
	w.changed = append(w.changed, ev.Name)
	w.mu.Unlock()
	return true
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			name := d.Name()
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
