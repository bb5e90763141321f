// Package caps defines the operation capability set a source may support.
package caps

import (
	"fmt"
	"math/bits"
	"strings"
)

// Op is a set of operation kinds. A single-bit Op names one operation.
type Op uint

const (
	Metadata Op = 1 << iota
	Resolve
	Browse
	Search
	Query
	Store
	StoreParent
	Remove
)

// None is the empty set.
const None Op = 0

// All is the union of every known operation.
const All = Metadata | Resolve | Browse | Search | Query | Store | StoreParent | Remove

var names = []struct {
	op   Op
	name string
}{
	{Metadata, "metadata"},
	{Resolve, "resolve"},
	{Browse, "browse"},
	{Search, "search"},
	{Query, "query"},
	{Store, "store"},
	{StoreParent, "store_parent"},
	{Remove, "remove"},
}

// Has reports whether every bit of k is present in o.
func (o Op) Has(k Op) bool {
	return k != None && o&k == k
}

// Single reports whether o names exactly one known operation.
func (o Op) Single() bool {
	return o != None && o&All == o && bits.OnesCount(uint(o)) == 1
}

// Streaming reports whether o is an operation that delivers a sequence of items.
func (o Op) Streaming() bool {
	return o == Browse || o == Search || o == Query
}

// List splits o into single operations in ascending bit order.
func (o Op) List() []Op {
	var ops []Op
	for _, n := range names {
		if o&n.op != 0 {
			ops = append(ops, n.op)
		}
	}
	return ops
}

// String renders the set as comma-separated lowercase names.
func (o Op) String() string {
	if o == None {
		return "none"
	}

	var parts []string
	for _, n := range names {
		if o&n.op != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := o &^ All; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint(rest)))
	}
	return strings.Join(parts, ",")
}

// MarshalText renders the set like String.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Parse reads a single operation name, or a comma-separated list of them.
func Parse(s string) (Op, error) {
	var op Op
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		found := false
		for _, n := range names {
			if n.name == part || strings.ReplaceAll(n.name, "_", "-") == part {
				op |= n.op
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("unknown operation %q", part)
		}
	}
	return op, nil
}

// Names returns the name of every known operation in bit order.
func Names() []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.name
	}
	return out
}
