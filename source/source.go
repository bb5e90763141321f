// Package source defines the contract every media provider implements and
// derives what a provider can do from the interfaces it satisfies.
package source

import (
	"context"

	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
)

// Info identifies a source.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rank        int      `json:"rank"`
	Origin      string   `json:"origin"`
	Tags        []string `json:"tags,omitempty"`
}

// RemainingUnknown is reported when a provider cannot tell how many items
// follow.
const RemainingUnknown = -1

// Emitter receives streamed items together with the number of items the
// provider still expects to send, or RemainingUnknown. Returning false asks
// the provider to stop.
type Emitter func(item *media.Media, remaining int) bool

// Source is the identity every provider exposes.
type Source interface {
	Info() Info
}

// Searcher streams items matching free text.
type Searcher interface {
	Search(ctx context.Context, text string, opts Options, emit Emitter) error
}

// Browser streams the children of a container. A nil container is the root.
type Browser interface {
	Browse(ctx context.Context, container *media.Media, opts Options, emit Emitter) error
}

// Querier streams items matching a provider-specific query expression.
type Querier interface {
	Query(ctx context.Context, query string, opts Options, emit Emitter) error
}

// Resolver fills in metadata for an item.
type Resolver interface {
	Resolve(ctx context.Context, item *media.Media, opts Options) (*media.Media, error)
}

// MetadataFetcher builds an item from its identifier.
type MetadataFetcher interface {
	Metadata(ctx context.Context, id string, opts Options) (*media.Media, error)
}

// Storer persists an item at the root of the source.
type Storer interface {
	Store(ctx context.Context, item *media.Media) (*media.Media, error)
}

// ParentStorer persists an item inside a container.
type ParentStorer interface {
	StoreIn(ctx context.Context, parent, item *media.Media) (*media.Media, error)
}

// Remover deletes an item.
type Remover interface {
	Remove(ctx context.Context, item *media.Media) error
}

// KeyDescriber declares the metadata keys a source reads and writes.
type KeyDescriber interface {
	SupportedKeys() []string
	WritableKeys() []string
}

// Closer releases resources held by a source when it is unloaded.
type Closer interface {
	Close() error
}

// KeyBinder is implemented by sources that translate key names themselves.
// The registry binds its key table after negotiation.
type KeyBinder interface {
	BindKeys(table *metakey.Table)
}
