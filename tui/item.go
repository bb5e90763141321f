package tui

import (
	"fmt"
	"strings"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/util"
)

// listItem adapts sources and media to list.Item.
type listItem struct {
	internal any
}

func (t *listItem) Title() string {
	switch e := t.internal.(type) {
	case *registry.Entry:
		name := e.Info.Name
		if name == "" {
			name = e.ID()
		}
		return name
	case *media.Media:
		title := e.Title()
		if title == "" {
			title = e.ID
		}
		if e.Container {
			return icon.Get(icon.Container) + " " + title
		}
		return icon.Get(icon.Item) + " " + title
	default:
		return t.FilterValue()
	}
}

func (t *listItem) Description() string {
	switch e := t.internal.(type) {
	case *registry.Entry:
		var ops []string
		for _, op := range []caps.Op{caps.Browse, caps.Search} {
			if e.Supports(op) {
				ops = append(ops, op.String())
			}
		}
		return style.Faint(fmt.Sprintf("%s · rank %d · %s", e.ID(), e.Info.Rank, strings.Join(ops, " ")))
	case *media.Media:
		var parts []string
		if e.Container {
			if n := e.ChildCount(); n >= 0 {
				parts = append(parts, util.Quantify(n, "item", "items"))
			}
		}
		for _, s := range []string{e.Artist(), e.Album()} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if d := e.Duration(); d > 0 {
			parts = append(parts, d.String())
		}
		if len(parts) == 0 && e.URL() != "" {
			parts = append(parts, e.URL())
		}
		return style.Faint(strings.Join(parts, " · "))
	default:
		return ""
	}
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *registry.Entry:
		return e.ID() + " " + e.Info.Name
	case *media.Media:
		return e.Title() + " " + e.Artist()
	default:
		return ""
	}
}
