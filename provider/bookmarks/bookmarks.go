// Package bookmarks stores user bookmarks in folders.
package bookmarks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/where"
	"github.com/metafates/gache"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

// ID identifies the bookmarks source.
const ID = "bookmarks"

// root is the id of the top-level folder.
const root = ""

var writable = []metakey.ID{metakey.Title, metakey.URL, metakey.Description, metakey.Thumbnail}

type record struct {
	ID        string    `json:"id"`
	Parent    string    `json:"parent"`
	Folder    bool      `json:"folder"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Desc      string    `json:"description,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Added     time.Time `json:"added"`
}

type store = map[string]*record

// Source keeps bookmarks in a JSON file.
type Source struct {
	mu    sync.Mutex
	cache *gache.Cache[store]
}

// New returns a bookmarks source persisted at the path field of bundle, or where.Bookmarks().
func New(bundle config.Bundle) *Source {
	return &Source{
		cache: gache.New[store](&gache.Options{
			Path:       bundle.GetOr("path", where.Bookmarks()),
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (s *Source) Info() source.Info {
	return source.Info{
		ID:          ID,
		Name:        "Bookmarks",
		Description: "A source for organizing media bookmarks",
		Rank:        -32,
	}
}

func (s *Source) SupportedKeys() []string {
	return []string{"id", "title", "url", "description", "thumbnail", "childcount", "date"}
}

func (s *Source) WritableKeys() []string {
	return []string{"title", "url", "description", "thumbnail"}
}

func (s *Source) load() store {
	cached, expired, err := s.cache.Get()
	if err != nil || expired || cached == nil {
		return make(store)
	}
	return cached
}

func (s *Source) children(st store, parent string) []*record {
	kids := lo.Filter(lo.Values(st), func(r *record, _ int) bool { return r.Parent == parent })
	slices.SortFunc(kids, func(a, b *record) int {
		if c := a.Added.Compare(b.Added); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return kids
}

func (s *Source) toMedia(st store, r *record) *media.Media {
	var m *media.Media
	if r.Folder {
		m = media.NewContainer(ID, r.ID).Set(metakey.ChildCount, len(s.children(st, r.ID)))
	} else {
		m = media.New(ID, r.ID)
	}

	m.Set(metakey.MediaID, r.ID).Set(metakey.Date, r.Added.Format(time.RFC3339))
	for k, v := range map[metakey.ID]string{
		metakey.Title:       r.Title,
		metakey.URL:         r.URL,
		metakey.Description: r.Desc,
		metakey.Thumbnail:   r.Thumbnail,
	} {
		if v != "" {
			m.Set(k, v)
		}
	}
	return m
}

func (s *Source) Browse(ctx context.Context, container *media.Media, _ source.Options, emit source.Emitter) error {
	parent := root
	if container != nil {
		parent = container.ID
	}

	s.mu.Lock()
	st := s.load()
	if _, ok := st[parent]; parent != root && !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: folder %s", source.ErrNotFound, parent)
	}
	items := lo.Map(s.children(st, parent), func(r *record, _ int) *media.Media { return s.toMedia(st, r) })
	s.mu.Unlock()

	return emitAll(ctx, items, emit)
}

// Search matches text against titles, urls and descriptions, ignoring case.
func (s *Source) Search(ctx context.Context, text string, _ source.Options, emit source.Emitter) error {
	text = strings.ToLower(strings.TrimSpace(text))

	s.mu.Lock()
	st := s.load()
	matches := lo.Filter(lo.Values(st), func(r *record, _ int) bool {
		if r.Folder {
			return false
		}
		return text == "" ||
			strings.Contains(strings.ToLower(r.Title), text) ||
			strings.Contains(strings.ToLower(r.URL), text) ||
			strings.Contains(strings.ToLower(r.Desc), text)
	})
	slices.SortFunc(matches, func(a, b *record) int { return a.Added.Compare(b.Added) })
	items := lo.Map(matches, func(r *record, _ int) *media.Media { return s.toMedia(st, r) })
	s.mu.Unlock()

	return emitAll(ctx, items, emit)
}

func emitAll(ctx context.Context, items []*media.Media, emit source.Emitter) error {
	for i, m := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !emit(m, len(items)-i-1) {
			return nil
		}
	}
	return nil
}

func (s *Source) Metadata(_ context.Context, id string, _ source.Options) (*media.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	r, ok := st[id]
	if !ok {
		return nil, fmt.Errorf("%w: bookmark %s", source.ErrNotFound, id)
	}
	return s.toMedia(st, r), nil
}

// Store adds item to the top-level folder.
func (s *Source) Store(ctx context.Context, item *media.Media) (*media.Media, error) {
	return s.StoreIn(ctx, media.NewContainer(ID, root), item)
}

// StoreIn adds item to parent. Containers become folders; other items need a url.
func (s *Source) StoreIn(_ context.Context, parent, item *media.Media) (*media.Media, error) {
	if !item.Container && item.URL() == "" {
		return nil, fmt.Errorf("%w: bookmarks need a url", source.ErrInvalidParams)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	if p, ok := st[parent.ID]; parent.ID != root && (!ok || !p.Folder) {
		return nil, fmt.Errorf("%w: folder %s", source.ErrNotFound, parent.ID)
	}

	r := &record{
		ID:        ulid.Make().String(),
		Parent:    parent.ID,
		Folder:    item.Container,
		Title:     item.Title(),
		URL:       item.URL(),
		Desc:      item.Description(),
		Thumbnail: item.Thumbnail(),
		Added:     time.Now().UTC(),
	}
	st[r.ID] = r

	if err := s.cache.Set(st); err != nil {
		delete(st, r.ID)
		return nil, err
	}
	return s.toMedia(st, r), nil
}

// Remove deletes a bookmark, or a folder with everything inside it.
func (s *Source) Remove(_ context.Context, item *media.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	if _, ok := st[item.ID]; !ok {
		return fmt.Errorf("%w: bookmark %s", source.ErrNotFound, item.ID)
	}

	var drop func(id string)
	drop = func(id string) {
		for _, child := range s.children(st, id) {
			drop(child.ID)
		}
		delete(st, id)
	}
	drop(item.ID)

	return s.cache.Set(st)
}

// Plugin registers the bookmarks source.
func Plugin() registry.Plugin {
	return registry.Plugin{
		ID: ID,
		Load: func(bundle config.Bundle) (source.Source, error) {
			return New(bundle), nil
		},
	}
}
