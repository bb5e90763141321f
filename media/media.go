// Package media defines the items sources produce.
package media

import (
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/medley-cli/medley/metakey"
	"github.com/samber/mo"
	"github.com/spf13/cast"
)

// ChildCountUnknown is reported by containers that cannot cheaply count their children.
const ChildCountUnknown = -1

// Media is a single item or container produced by a source.
type Media struct {
	// ID is unique within the producing source.
	ID string

	// Source is the identifier of the producing source.
	Source string

	// Container marks items that can be browsed into.
	Container bool

	// Fields holds metadata keyed by metakey id. Multi-valued keys keep
	// their first value here.
	Fields map[metakey.ID]any

	// more holds the values after the first of multi-valued keys.
	more map[metakey.ID][]any
}

// New returns an item with the given id and source.
func New(source, id string) *Media {
	return &Media{ID: id, Source: source, Fields: make(map[metakey.ID]any)}
}

// NewContainer returns a container with the given id and source.
func NewContainer(source, id string) *Media {
	m := New(source, id)
	m.Container = true
	return m
}

// Set stores v as the only value of key. A nil value removes the key.
func (m *Media) Set(key metakey.ID, v any) *Media {
	if m.Fields == nil {
		m.Fields = make(map[metakey.ID]any)
	}
	delete(m.more, key)
	if v == nil {
		delete(m.Fields, key)
		return m
	}
	m.Fields[key] = v
	return m
}

// Add appends v to the values of key. Nil values are ignored.
func (m *Media) Add(key metakey.ID, v any) *Media {
	if v == nil {
		return m
	}
	if !m.Has(key) {
		return m.Set(key, v)
	}
	if m.more == nil {
		m.more = make(map[metakey.ID][]any)
	}
	m.more[key] = append(m.more[key], v)
	return m
}

// GetAll returns every value of key in insertion order.
func (m *Media) GetAll(key metakey.ID) []any {
	v, ok := m.Fields[key]
	if !ok {
		return nil
	}
	return append([]any{v}, m.more[key]...)
}

// Count returns the number of values of key.
func (m *Media) Count(key metakey.ID) int {
	if !m.Has(key) {
		return 0
	}
	return 1 + len(m.more[key])
}

// Strings returns every value of key as a string.
func (m *Media) Strings(key metakey.ID) []string {
	return cast.ToStringSlice(m.GetAll(key))
}

// Get returns the raw value under key, or nil.
func (m *Media) Get(key metakey.ID) any {
	return m.Fields[key]
}

// Lookup returns the value under key as an option.
func (m *Media) Lookup(key metakey.ID) mo.Option[any] {
	v, ok := m.Fields[key]
	if !ok {
		return mo.None[any]()
	}
	return mo.Some(v)
}

// Has reports whether key is set.
func (m *Media) Has(key metakey.ID) bool {
	_, ok := m.Fields[key]
	return ok
}

// Keys returns the set keys in ascending order.
func (m *Media) Keys() []metakey.ID {
	return slices.Sorted(maps.Keys(m.Fields))
}

// String returns the value under key as a string.
func (m *Media) String(key metakey.ID) string {
	return cast.ToString(m.Fields[key])
}

// Int returns the value under key as an int, or 0.
func (m *Media) Int(key metakey.ID) int {
	return cast.ToInt(m.Fields[key])
}

// Float returns the value under key as a float64, or 0.
func (m *Media) Float(key metakey.ID) float64 {
	return cast.ToFloat64(m.Fields[key])
}

func (m *Media) Title() string       { return m.String(metakey.Title) }
func (m *Media) Artist() string      { return m.String(metakey.Artist) }
func (m *Media) Album() string       { return m.String(metakey.Album) }
func (m *Media) URL() string         { return m.String(metakey.URL) }
func (m *Media) Description() string { return m.String(metakey.Description) }
func (m *Media) Thumbnail() string   { return m.String(metakey.Thumbnail) }
func (m *Media) MimeType() string    { return m.String(metakey.MimeType) }

// Duration returns the duration of the media.
func (m *Media) Duration() time.Duration {
	return time.Duration(m.Int(metakey.Duration)) * time.Second
}

// ChildCount returns the number of children of a container, or ChildCountUnknown.
func (m *Media) ChildCount() int {
	if !m.Has(metakey.ChildCount) {
		return ChildCountUnknown
	}
	return m.Int(metakey.ChildCount)
}

// Clone returns a copy that shares no field storage with m.
func (m *Media) Clone() *Media {
	c := *m
	c.Fields = maps.Clone(m.Fields)
	if c.Fields == nil {
		c.Fields = make(map[metakey.ID]any)
	}
	c.more = nil
	for k, vs := range m.more {
		if c.more == nil {
			c.more = make(map[metakey.ID][]any, len(m.more))
		}
		c.more[k] = slices.Clone(vs)
	}
	return &c
}

// Merge copies fields from other that m does not already carry.
// It returns the ids that were filled.
func (m *Media) Merge(other *Media) []metakey.ID {
	var filled []metakey.ID
	for _, k := range other.Keys() {
		if m.Has(k) {
			continue
		}
		for _, v := range other.GetAll(k) {
			m.Add(k, v)
		}
		filled = append(filled, k)
	}
	return filled
}

// Missing returns the keys from want that m does not carry.
func (m *Media) Missing(want []metakey.ID) []metakey.ID {
	var missing []metakey.ID
	for _, k := range want {
		if !m.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Render returns the fields keyed by name. Multi-valued keys render as a
// slice. Ids absent from table are dropped.
func (m *Media) Render(table *metakey.Table) map[string]any {
	out := make(map[string]any, len(m.Fields))
	for id, v := range m.Fields {
		name := table.Name(id)
		if name == "" {
			continue
		}
		if m.Count(id) > 1 {
			out[name] = m.GetAll(id)
			continue
		}
		out[name] = v
	}
	return out
}

type encoded struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Container bool           `json:"container"`
	Fields    map[string]any `json:"fields"`
}

// Encode marshals m as JSON with field names resolved through table.
func (m *Media) Encode(table *metakey.Table) ([]byte, error) {
	return json.Marshal(encoded{
		ID:        m.ID,
		Source:    m.Source,
		Container: m.Container,
		Fields:    m.Render(table),
	})
}

// Decode parses JSON produced by Encode. Unknown field names are dropped.
func Decode(table *metakey.Table, data []byte) (*Media, error) {
	var e encoded
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}

	m := New(e.Source, e.ID)
	m.Container = e.Container
	for name, v := range e.Fields {
		k, ok := table.ByName(name)
		if !ok {
			continue
		}
		if vs, ok := v.([]any); ok {
			for _, item := range vs {
				m.Add(k.ID, item)
			}
			continue
		}
		m.Set(k.ID, v)
	}
	return m, nil
}
