package launch

import (
	"context"
	"fmt"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/loop"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
)

// Result summarizes a search across sources.
type Result struct {
	Sources  int
	Items    int
	Failures []error
}

// SearchAll searches text in every source able to search and prints one
// "<source>: <title> - <artist>" line per item. It returns once every
// search reached a terminal state. Failing sources do not stop the others.
func SearchAll(ctx context.Context, reg *registry.Registry, text string, opts Options) (Result, error) {
	opts.defaults()

	var entries []*registry.Entry
	for e := range reg.List(caps.Search) {
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("%w: no source can search", source.ErrNotFound)
	}

	l := loop.New()
	d := dispatch.New(l, dispatch.WithRegistry(reg), dispatch.WithContext(ctx))

	var (
		res     = Result{Sources: len(entries)}
		pending = len(entries)
	)

	finish := func() {
		pending--
		if pending == 0 {
			l.Quit()
		}
	}

	l.Post(func() {
		for _, e := range entries {
			_, err := d.Invoke(e, caps.Search, dispatch.Params{Text: text, Options: opts.source()}, func(ev dispatch.Event) {
				switch ev.Type {
				case dispatch.Item:
					res.Items++
					fmt.Fprintln(opts.Out, headline(ev.Operation.Source(), ev.Item))
				case dispatch.Error:
					res.Failures = append(res.Failures, ev.Err)
				}

				if ev.Terminal() {
					finish()
				}
			})
			if err != nil {
				res.Failures = append(res.Failures, err)
				finish()
			}
		}
	})

	if err := l.Run(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func headline(id string, m *media.Media) string {
	second := m.Artist()
	if second == "" {
		second = m.URL()
	}
	if second == "" {
		return fmt.Sprintf("%s: %s", id, m.Title())
	}
	return fmt.Sprintf("%s: %s - %s", id, m.Title(), second)
}
