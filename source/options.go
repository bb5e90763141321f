package source

import (
	"fmt"
	"strings"

	"github.com/medley-cli/medley/metakey"
)

// CountInfinity requests every available item.
const CountInfinity = -1

// Flags alter how metadata is resolved.
type Flags uint

const (
	ResolveNormal Flags = 0
	// ResolveFull asks other sources to fill keys the target could not provide.
	ResolveFull Flags = 1
	// ResolveIdleRelay delivers results from an idle callback.
	ResolveIdleRelay Flags = 2
	// ResolveFastOnly limits resolution to cheap, local lookups.
	ResolveFastOnly Flags = 4
)

// Has reports whether f carries flag.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f Flags) String() string {
	var parts []string
	if f.Has(ResolveFull) {
		parts = append(parts, "full")
	}
	if f.Has(ResolveIdleRelay) {
		parts = append(parts, "idle_relay")
	}
	if f.Has(ResolveFastOnly) {
		parts = append(parts, "fast_only")
	}
	if len(parts) == 0 {
		return "normal"
	}
	return strings.Join(parts, "|")
}

// ParseFlags reads a "|" or "," separated flag list.
func ParseFlags(s string) (Flags, error) {
	var flags Flags
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "normal", "":
		case "full":
			flags |= ResolveFull
		case "idle_relay", "idle-relay":
			flags |= ResolveIdleRelay
		case "fast_only", "fast-only":
			flags |= ResolveFastOnly
		default:
			return 0, fmt.Errorf("unknown resolution flag %q", part)
		}
	}
	return flags, nil
}

// Options tune a single operation.
type Options struct {
	// Keys lists the metadata keys the caller is interested in.
	Keys []metakey.ID

	// Count caps the number of streamed items. CountInfinity means no limit.
	Count int

	// Skip drops the first items of a stream.
	Skip int

	Flags Flags
}

// DefaultOptions requests every item with normal resolution.
func DefaultOptions() Options {
	return Options{Count: CountInfinity}
}

// Limited reports whether Count bounds the stream.
func (o Options) Limited() bool {
	return o.Count >= 0
}

// Window returns the number of provider items needed to satisfy Skip and
// Count, or CountInfinity.
func (o Options) Window() int {
	if !o.Limited() {
		return CountInfinity
	}
	return o.Skip + o.Count
}
