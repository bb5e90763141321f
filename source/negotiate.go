package source

import (
	"errors"
	"slices"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/metakey"
)

// Gated is implemented by sources whose Go type satisfies more handler
// interfaces than the provider behind it actually serves, such as scripted
// sources. The returned set masks the negotiated operations.
type Gated interface {
	Operations() caps.Op
}

// Descriptor is the capability description computed once when a source loads.
type Descriptor struct {
	Ops      caps.Op       `json:"operations"`
	Readable []metakey.ID `json:"readable"`
	Writable []metakey.ID `json:"writable"`
}

// Supports reports whether op is within the negotiated set.
func (d Descriptor) Supports(op caps.Op) bool {
	return d.Ops.Has(op)
}

// Reads reports whether key is among the readable keys.
func (d Descriptor) Reads(key metakey.ID) bool {
	return slices.Contains(d.Readable, key)
}

// Writes reports whether key is among the writable keys.
func (d Descriptor) Writes(key metakey.ID) bool {
	return slices.Contains(d.Writable, key)
}

// handlers maps each operation to the interface that serves it.
var handlers = []struct {
	op  caps.Op
	has func(Source) bool
}{
	{caps.Metadata, func(s Source) bool { _, ok := s.(MetadataFetcher); return ok }},
	{caps.Resolve, func(s Source) bool { _, ok := s.(Resolver); return ok }},
	{caps.Browse, func(s Source) bool { _, ok := s.(Browser); return ok }},
	{caps.Search, func(s Source) bool { _, ok := s.(Searcher); return ok }},
	{caps.Query, func(s Source) bool { _, ok := s.(Querier); return ok }},
	{caps.Store, func(s Source) bool { _, ok := s.(Storer); return ok }},
	{caps.StoreParent, func(s Source) bool { _, ok := s.(ParentStorer); return ok }},
	{caps.Remove, func(s Source) bool { _, ok := s.(Remover); return ok }},
}

// Negotiate derives the descriptor of src. Key names unknown to table are
// registered as plugin keys of type string.
func Negotiate(src Source, table *metakey.Table) (Descriptor, error) {
	if src == nil {
		return Descriptor{}, errors.New("nil source")
	}
	if src.Info().ID == "" {
		return Descriptor{}, errors.New("source has no identifier")
	}

	var d Descriptor
	for _, h := range handlers {
		if h.has(src) {
			d.Ops |= h.op
		}
	}
	if g, ok := src.(Gated); ok {
		d.Ops &= g.Operations()
	}

	if kd, ok := src.(KeyDescriber); ok {
		var err error
		if d.Readable, err = resolveKeys(table, kd.SupportedKeys()); err != nil {
			return Descriptor{}, err
		}
		if d.Writable, err = resolveKeys(table, kd.WritableKeys()); err != nil {
			return Descriptor{}, err
		}
	}

	return d, nil
}

func resolveKeys(table *metakey.Table, names []string) ([]metakey.ID, error) {
	ids := make([]metakey.ID, 0, len(names))
	for _, name := range names {
		k, ok := table.ByName(name)
		if !ok {
			var err error
			if k, err = table.Register(name, "", metakey.String); err != nil {
				return nil, err
			}
		}
		if !slices.Contains(ids, k.ID) {
			ids = append(ids, k.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
