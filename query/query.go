// Package query keeps the history of search texts and suggests previous ones.
package query

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

type record struct {
	Rank     int       `json:"rank"`
	Query    string    `json:"query"`
	LastUsed time.Time `json:"last_used"`
}

var (
	mu     sync.Mutex
	cacher = gache.New[map[string]*record](
		&gache.Options{
			Path:       where.Queries(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
	suggestions = make(map[string][]string)
)

func load() map[string]*record {
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		return make(map[string]*record)
	}
	return cached
}

// Remember records q or raises its rank by weight.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached := load()
	if r, ok := cached[q]; ok {
		r.Rank += weight
		r.LastUsed = time.Now()
	} else {
		cached[q] = &record{Rank: weight, Query: q, LastUsed: time.Now()}
	}

	clear(suggestions)
	return cacher.Set(cached)
}

// Forget removes q from the history.
func Forget(q string) error {
	mu.Lock()
	defer mu.Unlock()

	cached := load()
	delete(cached, sanitize(q))
	clear(suggestions)
	return cacher.Set(cached)
}

// Suggest returns the best previous query for the partial input q.
func Suggest(q string) mo.Option[string] {
	found := SuggestMany(q)
	if len(found) == 0 {
		return mo.None[string]()
	}
	return mo.Some(found[0])
}

// SuggestMany returns previous queries fuzzy matching q, most used first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return nil
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	if prev, ok := suggestions[q]; ok {
		return prev
	}

	matches := lo.Filter(lo.Values(load()), func(r *record, _ int) bool {
		return r.Query != q && fuzzy.MatchNormalizedFold(q, r.Query)
	})

	slices.SortFunc(matches, func(a, b *record) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return b.LastUsed.Compare(a.LastUsed)
	})

	found := lo.Map(matches, func(r *record, _ int) string { return r.Query })
	suggestions[q] = found
	return found
}

func sanitize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
