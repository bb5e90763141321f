// Package launch runs a single source operation without user interaction.
package launch

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
)

// DefaultKeys are printed when no keys are requested.
var DefaultKeys = []metakey.ID{metakey.MediaID, metakey.Title, metakey.URL}

// Options tune a launch.
type Options struct {
	Out    io.Writer
	Count  int
	Skip   int
	Keys   []metakey.ID
	Flags  source.Flags
	Delay  time.Duration
	JSON   bool
	Titles bool
}

func (o *Options) defaults() {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if len(o.Keys) == 0 {
		o.Keys = DefaultKeys
	}
}

func (o *Options) source() source.Options {
	return source.Options{Keys: o.Keys, Count: o.Count, Skip: o.Skip, Flags: o.Flags}
}

// Request is a parsed "<operation> <params...>" invocation.
type Request struct {
	Kind caps.Op

	// Source is the identifier of the target source.
	Source string

	// Arg is the search text, query expression or media id.
	Arg string
}

var usage = map[caps.Op]string{
	caps.Browse:   "browse <source> [container-id]",
	caps.Search:   "search <term> <source>",
	caps.Query:    "query <expr> <source>",
	caps.Resolve:  "resolve <media-id> <source>",
	caps.Metadata: "metadata <media-id> <source>",
	caps.Remove:   "remove <media-id> <source>",
}

// Usage lists the accepted operations.
func Usage() []string {
	return []string{
		usage[caps.Browse],
		usage[caps.Search],
		usage[caps.Query],
		usage[caps.Resolve],
		usage[caps.Metadata],
		usage[caps.Remove],
	}
}

// Parse reads an operation and its parameters from args.
func Parse(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("%w: missing operation", source.ErrInvalidParams)
	}

	kind, err := caps.Parse(args[0])
	if err != nil {
		return Request{}, err
	}
	form, ok := usage[kind]
	if !ok || !kind.Single() {
		return Request{}, fmt.Errorf("%w: %s cannot be launched", source.ErrUnsupportedOperation, args[0])
	}

	params := args[1:]
	bad := func() (Request, error) {
		return Request{}, fmt.Errorf("%w: usage: %s", source.ErrInvalidParams, form)
	}

	if kind == caps.Browse {
		switch len(params) {
		case 1:
			return Request{Kind: kind, Source: params[0]}, nil
		case 2:
			return Request{Kind: kind, Source: params[0], Arg: params[1]}, nil
		default:
			return bad()
		}
	}

	if len(params) != 2 || strings.TrimSpace(params[0]) == "" {
		return bad()
	}
	return Request{Kind: kind, Arg: params[0], Source: params[1]}, nil
}

// formatValue renders v like a CSV cell, quoting strings with commas.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		if strings.Contains(v, ",") {
			return `"` + v + `"`
		}
		return v
	case float32, float64:
		return fmt.Sprintf("%f", v)
	case time.Time:
		return v.Format("2006-01-02T15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

func row(m *media.Media, keys []metakey.ID) string {
	cells := make([]string, len(keys))
	for i, k := range keys {
		cells[i] = formatValue(m.Get(k))
	}
	return strings.Join(cells, ",")
}
