// Package inspect builds read-only reports about the sources in a registry.
package inspect

import (
	"maps"
	"slices"

	"github.com/invopop/jsonschema"
	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/registry"
)

// Summary is the one-line view of a source.
type Summary struct {
	ID         string `json:"id" jsonschema:"description=Source identifier."`
	Rank       int    `json:"rank" jsonschema:"description=Effective rank after configured overrides."`
	Operations caps.Op `json:"operations" jsonschema:"type=string,description=Comma separated list of supported operations."`
}

// Operation is a supported operation together with its description.
type Operation struct {
	Name        string `json:"name" jsonschema:"description=Operation name as accepted by launch."`
	Description string `json:"description"`
}

// Report is the full introspection of one source.
type Report struct {
	ID          string            `json:"id" jsonschema:"description=Source identifier."`
	Plugin      string            `json:"plugin" jsonschema:"description=Identifier of the plugin that provides the source."`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Origin      string            `json:"origin" jsonschema:"description=Script path, or builtin."`
	Rank        int               `json:"rank"`
	Tags        []string          `json:"tags,omitempty"`
	Info        map[string]string `json:"info,omitempty" jsonschema:"description=Free-form plugin details."`
	Operations  []Operation       `json:"operations"`
	Readable    []string          `json:"readable_keys" jsonschema:"description=Metadata keys the source can provide."`
	Writable    []string          `json:"writable_keys" jsonschema:"description=Metadata keys the source can store."`
}

var descriptions = map[caps.Op]string{
	caps.Resolve:     "Resolve metadata",
	caps.Metadata:    "Retrieve metadata",
	caps.Browse:      "Browse",
	caps.Search:      "Search",
	caps.Query:       "Query",
	caps.Store:       "Update metadata",
	caps.StoreParent: "Add new media",
	caps.Remove:      "Remove media",
}

// Summaries lists every loaded source in registry order.
func Summaries(reg *registry.Registry) []Summary {
	var out []Summary
	for e := range reg.List(caps.None) {
		out = append(out, Summarize(e))
	}
	return out
}

func Summarize(e *registry.Entry) Summary {
	return Summary{ID: e.ID(), Rank: e.Info.Rank, Operations: e.Descriptor.Ops}
}

// Describe returns the full report for the source with the given id.
func Describe(reg *registry.Registry, id string) (*Report, error) {
	e, err := reg.Lookup(id)
	if err != nil {
		return nil, err
	}

	keys := reg.Keys()
	r := &Report{
		ID:          e.ID(),
		Plugin:      e.Plugin.ID,
		Name:        e.Info.Name,
		Description: e.Info.Description,
		Origin:      e.Info.Origin,
		Rank:        e.Info.Rank,
		Tags:        slices.Clone(e.Info.Tags),
		Info:        maps.Clone(e.Plugin.Info),
		Readable:    keys.Names(e.Descriptor.Readable),
		Writable:    keys.Names(e.Descriptor.Writable),
	}

	for _, op := range e.Descriptor.Ops.List() {
		r.Operations = append(r.Operations, Operation{Name: op.String(), Description: descriptions[op]})
	}

	return r, nil
}

// Schema returns the JSON schema of the report, or of the summary list when list is set.
func Schema(list bool) *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true

	if list {
		return reflector.Reflect([]Summary{})
	}
	return reflector.Reflect(&Report{})
}
