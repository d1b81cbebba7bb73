// Package watcher turns noisy filesystem notifications into a single
// handler call per dropped file.
package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	// DefaultSettleDelay is the wait before treating a file as fully
	// written.
	DefaultSettleDelay = 200 * time.Millisecond
	// DefaultDebounceWindow is how long a path's debounce flag stays set. A
	// burst of raw events inside the window collapses to one dispatch; a
	// genuinely new write after it triggers again.
	DefaultDebounceWindow = 2 * time.Second
)

// Handler receives the path of a stabilized file.
type Handler func(path string)

// Watcher observes one directory for newly written files and invokes its
// handler exactly once per settled file. Watchers on different directories
// are fully independent.
type Watcher struct {
	dir       string
	handler   Handler
	debouncer *debouncer
	fsw       *fsnotify.Watcher
	logger    zerolog.Logger
}

// Option adjusts watcher timing.
type Option func(*Watcher)

// WithSettleDelay overrides the settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) { w.debouncer.settle = d }
}

// WithDebounceWindow overrides the debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(w *Watcher) { w.debouncer.window = d }
}

// New creates a watcher for dir. Start must be called before any events are
// delivered.
func New(dir string, handler Handler, logger zerolog.Logger, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	w := &Watcher{
		dir:     dir,
		handler: handler,
		logger:  logger.With().Str("component", "watcher").Str("dir", dir).Logger(),
	}
	w.debouncer = newDebouncer(DefaultSettleDelay, DefaultDebounceWindow, w.dispatch)
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The watch loop exits when ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw

	go w.loop(ctx)

	w.logger.Info().Msg("watching directory")
	return nil
}

// Stop ends watching and releases the underlying notifier.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Creates and writes both mean "a file may be arriving";
			// everything else is noise here.
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.debouncer.offer(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("watch error")
		}
	}
}

// dispatch fires the handler once the settle delay has elapsed, provided
// the path still names a regular file. A file deleted before settling, or a
// directory entry, is silently skipped.
func (w *Watcher) dispatch(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		w.logger.Debug().Str("file", path).Msg("skipping settled event for non-regular path")
		return
	}
	w.logger.Info().Str("file", path).Msg("file settled")
	w.handler(path)
}

// debouncer is the per-path debounce state machine: Idle, then PendingSettle
// once the first raw event arms the settle timer, then Dispatched until the
// debounce window clears the flag. Raw events for a flagged path are
// ignored, so a burst collapses to one dispatch while the flag's
// independent expiry lets a later write trigger again.
type debouncer struct {
	settle time.Duration
	window time.Duration
	fire   func(path string)

	mu      sync.Mutex
	flagged map[string]bool
}

func newDebouncer(settle, window time.Duration, fire func(path string)) *debouncer {
	return &debouncer{
		settle:  settle,
		window:  window,
		fire:    fire,
		flagged: make(map[string]bool),
	}
}

// offer registers one raw event for path.
func (d *debouncer) offer(path string) {
	d.mu.Lock()
	if d.flagged[path] {
		d.mu.Unlock()
		return
	}
	d.flagged[path] = true
	d.mu.Unlock()

	time.AfterFunc(d.settle, func() {
		d.fire(path)
	})
	time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.flagged, path)
		d.mu.Unlock()
	})
}
