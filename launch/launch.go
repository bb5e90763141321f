package launch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/loop"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/util"
)

// Run performs req against reg and prints its results to opts.Out. It returns
// once the operation reached a terminal state, with the operation's error if it failed.
func Run(ctx context.Context, reg *registry.Registry, req Request, opts Options) error {
	opts.defaults()

	entry, err := reg.Lookup(req.Source)
	if err != nil {
		return err
	}

	l := loop.New()
	d := dispatch.New(l, dispatch.WithRegistry(reg), dispatch.WithContext(ctx))
	p := &printer{out: opts.Out, keys: opts.Keys, table: reg.Keys(), json: opts.JSON}

	var result error
	start := func() {
		if opts.Titles {
			p.titles()
		}

		_, err := d.Invoke(entry, req.Kind, params(entry, req, opts), func(ev dispatch.Event) {
			switch ev.Type {
			case dispatch.Item:
				p.item(ev.Item)
			case dispatch.Done:
				if req.Kind.Streaming() {
					p.tally()
				} else if ev.Item != nil {
					p.item(ev.Item)
				}
			case dispatch.Error:
				result = ev.Err
			case dispatch.Cancel:
				result = source.ErrCancelled
			}

			if ev.Terminal() {
				l.Quit()
			}
		})
		if err != nil {
			result = err
			l.Quit()
		}
	}

	if opts.Delay > 0 {
		timer := time.AfterFunc(opts.Delay, func() { l.Post(start) })
		defer timer.Stop()
	} else {
		l.Post(start)
	}

	if err := l.Run(ctx); err != nil {
		return err
	}
	return result
}

func params(entry *registry.Entry, req Request, opts Options) dispatch.Params {
	p := dispatch.Params{Options: opts.source()}

	switch req.Kind {
	case caps.Browse:
		if req.Arg != "" {
			p.Container = media.NewContainer(entry.ID(), req.Arg)
		}
	case caps.Search, caps.Query:
		p.Text = req.Arg
	case caps.Metadata:
		p.ID = req.Arg
	case caps.Resolve, caps.Remove:
		p.Media = media.New(entry.ID(), req.Arg)
	}
	return p
}

type printer struct {
	out   io.Writer
	keys  []metakey.ID
	table *metakey.Table
	json  bool
	count int
}

func (p *printer) titles() {
	if p.json {
		return
	}
	fmt.Fprintln(p.out, strings.Join(p.table.Names(p.keys), ","))
}

func (p *printer) item(m *media.Media) {
	p.count++

	if !p.json {
		fmt.Fprintln(p.out, row(m, p.keys))
		return
	}

	data, err := m.Encode(p.table)
	if err != nil {
		log.Warnf("encode %s: %v", m.ID, err)
		return
	}
	fmt.Fprintln(p.out, string(data))
}

func (p *printer) tally() {
	if p.json {
		return
	}
	if p.count == 0 {
		fmt.Fprintln(p.out, "No results")
		return
	}
	fmt.Fprintln(p.out, util.Quantify(p.count, "result", "results"))
}
