package dispatch

import (
	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
)

// resolve asks the target source first. With ResolveFull, the other
// resolvers of the registry then fill the keys still missing, by rank.
func (d *Dispatcher) resolve(op *Operation) (*media.Media, error) {
	opts := op.Params.Options
	item := op.Params.Media.Clone()

	result, err := op.Entry.Source.(source.Resolver).Resolve(op.ctx, item, opts)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = item
	}

	if !opts.Flags.Has(source.ResolveFull) || d.registry == nil {
		return result, nil
	}

	want := opts.Keys
	if len(want) == 0 {
		want = wanted(d, op.Entry.ID())
	}

	relay := opts
	relay.Flags &^= source.ResolveFull

	for other := range d.registry.List(caps.Resolve) {
		missing := result.Missing(want)
		if len(missing) == 0 {
			break
		}
		if other.ID() == op.Entry.ID() || op.ctx.Err() != nil {
			continue
		}
		if !readsAny(other.Descriptor, missing) {
			continue
		}

		relay.Keys = missing
		extra, err := other.Source.(source.Resolver).Resolve(op.ctx, result.Clone(), relay)
		if err != nil {
			log.WithSource(other.ID()).Debugf("full resolution of %s: %v", result.ID, err)
			continue
		}
		if extra != nil {
			result.Merge(extra)
		}
	}

	return result, op.ctx.Err()
}

// wanted returns every key the resolvers of the registry can read, except
// those of exclude.
func wanted(d *Dispatcher, exclude string) []metakey.ID {
	var keys []metakey.ID
	seen := make(map[metakey.ID]bool)
	for e := range d.registry.List(caps.Resolve) {
		if e.ID() == exclude {
			continue
		}
		for _, k := range e.Descriptor.Readable {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// readsAny reports whether d reads one of keys. Sources that declare no keys
// are assumed to read anything.
func readsAny(d source.Descriptor, keys []metakey.ID) bool {
	if len(d.Readable) == 0 {
		return true
	}
	for _, k := range keys {
		if d.Reads(k) {
			return true
		}
	}
	return false
}
