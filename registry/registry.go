// Package registry loads plugins into sources and answers capability queries over them.
package registry

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	"github.com/samber/lo"
)

// Plugin describes a loadable unit that produces one source.
type Plugin struct {
	ID string

	// Filename is the file the plugin was read from. Empty for builtins.
	Filename string

	// Info holds free-form descriptive pairs shown by inspect.
	Info map[string]string

	Load func(config.Bundle) (source.Source, error)
}

// Entry is a loaded source. Entries are never modified after publication.
type Entry struct {
	Source     source.Source
	Info       source.Info
	Descriptor source.Descriptor
	Plugin     Plugin
}

// ID returns the source identifier.
func (e *Entry) ID() string {
	return e.Info.ID
}

// Supports reports whether the source negotiated op.
func (e *Entry) Supports(op caps.Op) bool {
	return e.Descriptor.Supports(op)
}

type catalog struct {
	entries []*Entry
	byID    map[string]*Entry
}

func (c *catalog) with(e *Entry) *catalog {
	next := &catalog{
		entries: append(slices.Clone(c.entries), e),
		byID:    make(map[string]*Entry, len(c.byID)+1),
	}
	for id, entry := range c.byID {
		next.byID[id] = entry
	}
	next.byID[e.ID()] = e
	slices.SortStableFunc(next.entries, compareEntries)
	return next
}

func (c *catalog) without(id string) *catalog {
	next := &catalog{
		entries: lo.Filter(c.entries, func(e *Entry, _ int) bool { return e.ID() != id }),
		byID:    make(map[string]*Entry, len(c.byID)),
	}
	for other, entry := range c.byID {
		if other != id {
			next.byID[other] = entry
		}
	}
	return next
}

// compareEntries orders by descending rank, then ascending id.
func compareEntries(a, b *Entry) int {
	if c := cmp.Compare(b.Info.Rank, a.Info.Rank); c != 0 {
		return c
	}
	return strings.Compare(a.ID(), b.ID())
}

// Listener observes catalog changes. It runs on the goroutine that changed
// the catalog, which may be a watcher goroutine, so it must be safe to call
// concurrently with the rest of the program.
type Listener func(*Entry)

// Registry owns the loaded sources and the metadata key table they share.
type Registry struct {
	// mu serializes load and unload sequences.
	mu      sync.Mutex
	plugins map[string]Plugin
	order   []string
	loaded  map[string]string // plugin id -> source id

	current atomic.Pointer[catalog]

	listenersMu sync.RWMutex
	onAdded     []Listener
	onRemoved   []Listener

	keys   *metakey.Table
	bundle func(id string) config.Bundle
	ranks  config.Ranks
	allow  []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig sets the resolver of provider configuration bundles.
func WithConfig(bundle func(id string) config.Bundle) Option {
	return func(r *Registry) { r.bundle = bundle }
}

// WithRanks overrides declared source ranks.
func WithRanks(ranks config.Ranks) Option {
	return func(r *Registry) { r.ranks = ranks }
}

// WithAllow restricts loading to the listed plugin ids. An empty list allows all.
func WithAllow(ids []string) Option {
	return func(r *Registry) { r.allow = slices.Clone(ids) }
}

// WithKeys uses table as the registry's metadata key table.
func WithKeys(table *metakey.Table) Option {
	return func(r *Registry) { r.keys = table }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		plugins: make(map[string]Plugin),
		loaded:  make(map[string]string),
		keys:    metakey.NewTable(),
		bundle:  config.BundleFor,
		ranks:   config.ParseRanks(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(&catalog{byID: make(map[string]*Entry)})
	return r
}

// Keys returns the metadata key table owned by the registry.
func (r *Registry) Keys() *metakey.Table {
	return r.keys
}

// Register queues plugins for Load. Registering an id twice is an error.
func (r *Registry) Register(plugins ...Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, p := range plugins {
		if err := r.register(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) register(p Plugin) error {
	if p.ID == "" {
		return errors.New("plugin has no identifier")
	}
	if p.Load == nil {
		return fmt.Errorf("plugin %s has no loader", p.ID)
	}
	if _, ok := r.plugins[p.ID]; ok {
		return fmt.Errorf("plugin %s is already registered", p.ID)
	}
	r.plugins[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Map(r.order, func(id string, _ int) Plugin { return r.plugins[id] })
}

// Allowed reports whether plugin id passes the allow-list.
func (r *Registry) Allowed(id string) bool {
	return len(r.allow) == 0 || slices.Contains(r.allow, id)
}

// Load initializes every registered plugin that is not loaded yet. A failing
// plugin never prevents the others from loading; each failure is returned
// once as a *source.LoadError.
func (r *Registry) Load(ctx context.Context) []error {
	r.mu.Lock()

	var (
		errs  []error
		added []*Entry
		next  = r.current.Load()
	)
	for _, id := range r.order {
		if _, ok := r.loaded[id]; ok {
			continue
		}
		if !r.Allowed(id) {
			log.Debugf("plugin %s is not in the allow-list, skipping", id)
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, &source.LoadError{Plugin: id, Err: err})
			continue
		}

		entry, err := r.load(r.plugins[id], next)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		next = next.with(entry)
		added = append(added, entry)
	}

	// readers see the catalog before or after the whole load, never in between
	r.current.Store(next)
	r.mu.Unlock()

	for _, e := range added {
		r.notify(r.addedListeners(), e)
	}
	return errs
}

// Add registers and loads a single plugin. A plugin whose id was unloaded
// may be added again, replacing its previous descriptor.
func (r *Registry) Add(ctx context.Context, p Plugin) error {
	if err := ctx.Err(); err != nil {
		return &source.LoadError{Plugin: p.ID, Err: err}
	}

	r.mu.Lock()
	if _, ok := r.loaded[p.ID]; ok {
		r.mu.Unlock()
		return &source.LoadError{Plugin: p.ID, Err: errors.New("already loaded")}
	}
	if _, ok := r.plugins[p.ID]; ok {
		r.plugins[p.ID] = p
	} else if err := r.register(p); err != nil {
		r.mu.Unlock()
		return &source.LoadError{Plugin: p.ID, Err: err}
	}
	if !r.Allowed(p.ID) {
		r.mu.Unlock()
		return &source.LoadError{Plugin: p.ID, Err: errors.New("not in the allow-list")}
	}

	entry, err := r.load(p, r.current.Load())
	if err == nil {
		r.current.Store(r.current.Load().with(entry))
	}
	r.mu.Unlock()

	if err != nil {
		return err
	}
	r.notify(r.addedListeners(), entry)
	return nil
}

// load initializes p and checks its source id against cat. The caller
// publishes the entry. It must be called with mu held.
func (r *Registry) load(p Plugin, cat *catalog) (*Entry, error) {
	logger := log.WithFields(log.Fields{"plugin": p.ID})

	fail := func(err error) (*Entry, error) {
		err = &source.LoadError{Plugin: p.ID, Err: err}
		logger.Warn(err)
		return nil, err
	}

	src, err := p.Load(r.bundle(p.ID))
	if err != nil {
		return fail(err)
	}
	if src == nil {
		return fail(errors.New("loader returned no source"))
	}

	descriptor, err := source.Negotiate(src, r.keys)
	if err != nil {
		closeSource(src)
		return fail(err)
	}

	if binder, ok := src.(source.KeyBinder); ok {
		binder.BindKeys(r.keys)
	}

	info := src.Info()
	if _, taken := cat.byID[info.ID]; taken {
		closeSource(src)
		return fail(fmt.Errorf("source %s is already provided by another plugin", info.ID))
	}
	info.Rank = r.ranks.Apply(info.ID, info.Rank)
	info.Origin = lo.Ternary(p.Filename == "", constant.Builtin, p.Filename)
	info.Tags = slices.Clone(info.Tags)

	entry := &Entry{Source: src, Info: info, Descriptor: descriptor, Plugin: p}
	r.loaded[p.ID] = info.ID

	logger.WithFields(log.Fields{
		"source": info.ID,
		"rank":   info.Rank,
		"ops":    descriptor.Ops.String(),
	}).Info("source loaded")
	return entry, nil
}

// Unload removes the source with the given id and releases it.
func (r *Registry) Unload(id string) error {
	r.mu.Lock()

	entry, ok := r.current.Load().byID[id]
	if !ok {
		r.mu.Unlock()
		return r.notFound(id)
	}

	r.current.Store(r.current.Load().without(id))
	delete(r.loaded, entry.Plugin.ID)
	r.mu.Unlock()

	closeSource(entry.Source)
	log.WithSource(id).Info("source unloaded")
	r.notify(r.removedListeners(), entry)
	return nil
}

// UnloadPlugin removes whatever source plugin id produced.
func (r *Registry) UnloadPlugin(id string) error {
	r.mu.Lock()
	sourceID, ok := r.loaded[id]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: plugin %q is not loaded", source.ErrNotFound, id)
	}
	return r.Unload(sourceID)
}

// Close unloads every source.
func (r *Registry) Close() {
	for e := range r.List(caps.None) {
		_ = r.Unload(e.ID())
	}
}

func closeSource(src source.Source) {
	if c, ok := src.(source.Closer); ok {
		if err := c.Close(); err != nil {
			log.WithSource(src.Info().ID).Warnf("close: %v", err)
		}
	}
}

// Lookup returns the entry of source id.
func (r *Registry) Lookup(id string) (*Entry, error) {
	if entry, ok := r.current.Load().byID[id]; ok {
		return entry, nil
	}
	return nil, r.notFound(id)
}

func (r *Registry) notFound(id string) error {
	if suggestion, ok := r.suggest(id); ok {
		return fmt.Errorf("%w: source %q, did you mean %q?", source.ErrNotFound, id, suggestion)
	}
	return fmt.Errorf("%w: source %q", source.ErrNotFound, id)
}

func (r *Registry) suggest(id string) (string, bool) {
	best, distance := "", -1
	for _, e := range r.current.Load().entries {
		d := levenshtein.Distance(id, e.ID())
		if distance < 0 || d < distance {
			best, distance = e.ID(), d
		}
	}
	return best, distance >= 0 && distance <= len(id)/2+1
}

// List yields the sources supporting every operation in filter, by
// descending rank then ascending id. A zero filter yields every source.
// Each iteration reads the catalog as it is when the iteration starts.
func (r *Registry) List(filter caps.Op) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range r.current.Load().entries {
			if filter != caps.None && !e.Supports(filter) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of loaded sources.
func (r *Registry) Len() int {
	return len(r.current.Load().entries)
}
