// Package watch hot-plugs Lua sources when scripts appear, change or vanish.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/provider"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
)

// DefaultDelay is how long a script must stay quiet before it is reloaded.
const DefaultDelay = 250 * time.Millisecond

// Watcher reloads registry plugins from a directory of scripts.
type Watcher struct {
	reg    *registry.Registry
	dir    string
	delay  time.Duration
	plugin func(path string) registry.Plugin
	match  func(path string) bool
	post   func(func())

	mu     sync.Mutex
	timers map[string]*time.Timer
}

type Option func(*Watcher)

// WithDelay sets the debounce interval.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithPlugin replaces the function turning a script path into a plugin.
func WithPlugin(fn func(path string) registry.Plugin) Option {
	return func(w *Watcher) { w.plugin = fn }
}

// WithMatch replaces the filter deciding which files are scripts.
func WithMatch(fn func(path string) bool) Option {
	return func(w *Watcher) { w.match = fn }
}

// WithPost runs reloads through post, e.g. an event loop.
func WithPost(post func(func())) Option {
	return func(w *Watcher) { w.post = post }
}

// Serial returns a post function running every reload on one goroutine, so
// registry listeners never run concurrently. Posts after ctx is done are
// dropped.
func Serial(ctx context.Context) func(func()) {
	queue := make(chan func())
	go func() {
		for {
			select {
			case fn := <-queue:
				fn()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(fn func()) {
		if ctx.Err() != nil {
			return
		}
		select {
		case queue <- fn:
		case <-ctx.Done():
		}
	}
}

func New(reg *registry.Registry, dir string, opts ...Option) *Watcher {
	w := &Watcher{
		reg:    reg,
		dir:    dir,
		delay:  DefaultDelay,
		plugin: provider.Custom,
		match:  provider.IsScript,
		post:   func(fn func()) { fn() },
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	log.WithFields(log.Fields{"dir": w.dir}).Info("watching sources")

	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.match(ev.Name) && ev.Op != fsnotify.Chmod {
				w.schedule(ctx, filepath.Clean(ev.Name))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch %s: %v", w.dir, err)
		}
	}
}

// schedule debounces bursts of events for the same file into one reload.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.delay)
		return
	}

	w.timers[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.post(func() { w.Sync(ctx, path) })
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// Sync brings the registry in line with the script at path:
// a present script is reloaded, a missing one is unloaded.
func (w *Watcher) Sync(ctx context.Context, path string) {
	p := w.plugin(path)
	logger := log.WithFields(log.Fields{"plugin": p.ID, "path": path})

	if err := w.reg.UnloadPlugin(p.ID); err != nil && !errors.Is(err, source.ErrNotFound) {
		logger.Warn(err)
	}

	exists, err := filesystem.API().Exists(path)
	if err != nil || !exists {
		logger.Info("script removed")
		return
	}

	if err := w.reg.Add(ctx, p); err != nil {
		logger.Warn(err)
		return
	}
	logger.Info("script reloaded")
}
