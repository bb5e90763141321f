package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/loop"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	. "github.com/smartystreets/goconvey/convey"
)

// catalog searches a fixed number of tracks.
type catalog struct {
	id    string
	rank  int
	total int
	calls atomic.Int32
}

func (c *catalog) Info() source.Info { return source.Info{ID: c.id, Rank: c.rank} }

func (c *catalog) Search(ctx context.Context, text string, _ source.Options, emit source.Emitter) error {
	c.calls.Add(1)
	for i := range c.total {
		item := media.New(c.id, fmt.Sprint(i)).Set(metakey.Title, fmt.Sprintf("%s %d", text, i))
		if !emit(item, c.total-i-1) {
			return nil
		}
	}
	return nil
}

// library adds browsing, resolution and failure modes to catalog.
type library struct {
	*catalog
	fields map[metakey.ID]any
	fail   error
}

func (l *library) Browse(ctx context.Context, _ *media.Media, _ source.Options, emit source.Emitter) error {
	l.calls.Add(1)
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
		if !emit(media.New(l.id, fmt.Sprint(i)), source.CountInfinity) {
			return nil
		}
	}
}

func (l *library) Resolve(_ context.Context, item *media.Media, _ source.Options) (*media.Media, error) {
	l.calls.Add(1)
	if l.fail != nil {
		return nil, l.fail
	}
	for k, v := range l.fields {
		if !item.Has(k) {
			item.Set(k, v)
		}
	}
	return item, nil
}

// stream searches a fixed number of tracks without knowing how many follow.
type stream struct {
	id    string
	total int
}

func (s *stream) Info() source.Info { return source.Info{ID: s.id} }

func (s *stream) Search(_ context.Context, text string, _ source.Options, emit source.Emitter) error {
	for i := range s.total {
		if !emit(media.New(s.id, fmt.Sprint(i)), source.RemainingUnknown) {
			return nil
		}
	}
	return nil
}

func (l *library) SupportedKeys() []string { return []string{"title", "artist", "album"} }
func (l *library) WritableKeys() []string  { return nil }

func plugin(src source.Source) registry.Plugin {
	return registry.Plugin{
		ID:   src.Info().ID,
		Load: func(config.Bundle) (source.Source, error) { return src, nil },
	}
}

func setup(sources ...source.Source) *registry.Registry {
	r := registry.New()
	for _, s := range sources {
		So(r.Register(plugin(s)), ShouldBeNil)
	}
	So(r.Load(context.Background()), ShouldBeEmpty)
	return r
}

func lookup(r *registry.Registry, id string) *registry.Entry {
	e, err := r.Lookup(id)
	So(err, ShouldBeNil)
	return e
}

// collect runs the loop until the terminal event, or until timeout when
// keepRunning is set.
func collect(l *loop.Loop, timeout time.Duration, keepRunning bool) (*[]Event, func(Event), func()) {
	var events []Event
	cb := func(ev Event) {
		events = append(events, ev)
		if ev.Terminal() && !keepRunning {
			l.Quit()
		}
	}
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = l.Run(ctx)
	}
	return &events, cb, run
}

func TestInvoke(t *testing.T) {
	Convey("Given A (rank 10, search) and B (rank 20, search and browse)", t, func() {
		a := &catalog{id: "A", rank: 10, total: 3}
		b := &library{catalog: &catalog{id: "B", rank: 20, total: 8}}
		r := setup(a, b)
		l := loop.New()
		d := New(l, WithRegistry(r))

		Convey("Browse on A is rejected without contacting the provider", func() {
			_, err := d.Invoke(lookup(r, "A"), caps.Browse, Params{}, func(Event) {})
			So(errors.Is(err, source.ErrUnsupportedOperation), ShouldBeTrue)
			So(a.calls.Load(), ShouldEqual, 0)
		})

		Convey("Composite kinds are rejected", func() {
			_, err := d.Invoke(lookup(r, "B"), caps.Search|caps.Browse, Params{}, func(Event) {})
			So(errors.Is(err, source.ErrUnsupportedOperation), ShouldBeTrue)
		})

		Convey("Missing parameters are rejected", func() {
			_, err := d.Invoke(lookup(r, "B"), caps.Resolve, Params{}, func(Event) {})
			So(errors.Is(err, source.ErrInvalidParams), ShouldBeTrue)

			_, err = d.Invoke(lookup(r, "B"), caps.Search, Params{Options: source.Options{Count: -5}}, func(Event) {})
			So(errors.Is(err, source.ErrInvalidParams), ShouldBeTrue)
			So(b.calls.Load(), ShouldEqual, 0)
		})

		Convey("Search with a limit of 5 yields at most 5 items then one completion", func() {
			events, cb, run := collect(l, time.Second, false)
			op, err := d.Invoke(lookup(r, "B"), caps.Search, Params{Text: "jazz", Options: source.Options{Count: 5}}, cb)
			So(err, ShouldBeNil)
			So(op.ID, ShouldNotBeEmpty)
			run()

			So(len(*events), ShouldEqual, 6)
			for i, ev := range (*events)[:5] {
				So(ev.Type, ShouldEqual, Item)
				So(ev.Remaining, ShouldEqual, 4-i)
			}
			So((*events)[5].Type, ShouldEqual, Done)
			So(op.State(), ShouldEqual, Completed)
			So(op.Cancel(), ShouldBeFalse)
		})

		Convey("Skip drops the first provider items", func() {
			events, cb, run := collect(l, time.Second, false)
			_, err := d.Invoke(lookup(r, "A"), caps.Search, Params{Text: "x", Options: source.Options{Count: source.CountInfinity, Skip: 2}}, cb)
			So(err, ShouldBeNil)
			run()

			So(len(*events), ShouldEqual, 2)
			So((*events)[0].Item.ID, ShouldEqual, "2")
			So((*events)[0].Remaining, ShouldEqual, 0)
		})

		Convey("Cancelling after the second item stops delivery", func() {
			events, cb, run := collect(l, 200*time.Millisecond, true)
			items := 0
			_, err := d.Invoke(lookup(r, "B"), caps.Browse, Params{Options: source.DefaultOptions()}, func(ev Event) {
				cb(ev)
				if ev.Type == Item {
					items++
					if items == 2 {
						So(ev.Operation.Cancel(), ShouldBeTrue)
					}
				}
			})
			So(err, ShouldBeNil)
			run()

			So(len(*events), ShouldEqual, 3)
			So((*events)[2].Type, ShouldEqual, Cancel)
			So((*events)[2].Operation.State(), ShouldEqual, Cancelled)
		})

		Convey("Single-shot operations deliver one terminal event", func() {
			b.fields = map[metakey.ID]any{metakey.Artist: "Miles Davis"}
			events, cb, run := collect(l, time.Second, false)
			item := media.New("B", "1").Set(metakey.Title, "So What")
			_, err := d.Invoke(lookup(r, "B"), caps.Resolve, Params{Media: item, Options: source.DefaultOptions()}, cb)
			So(err, ShouldBeNil)
			run()

			So(len(*events), ShouldEqual, 1)
			So((*events)[0].Type, ShouldEqual, Done)
			So((*events)[0].Item.Artist(), ShouldEqual, "Miles Davis")
			So(item.Has(metakey.Artist), ShouldBeFalse)
		})

		Convey("Provider errors are wrapped and delivered", func() {
			b.fail = errors.New("upstream down")
			events, cb, run := collect(l, time.Second, false)
			_, err := d.Invoke(lookup(r, "B"), caps.Resolve, Params{Media: media.New("B", "1")}, cb)
			So(err, ShouldBeNil)
			run()

			So(len(*events), ShouldEqual, 1)
			So((*events)[0].Type, ShouldEqual, Error)

			var provider *source.ProviderError
			So(errors.As((*events)[0].Err, &provider), ShouldBeTrue)
			So(provider.Source, ShouldEqual, "B")
			So(provider.Op, ShouldEqual, caps.Resolve)
		})

		Convey("A zero count completes without items", func() {
			events, cb, run := collect(l, time.Second, false)
			_, err := d.Invoke(lookup(r, "A"), caps.Search, Params{Options: source.Options{Count: 0}}, cb)
			So(err, ShouldBeNil)
			run()

			So(len(*events), ShouldEqual, 1)
			So((*events)[0].Type, ShouldEqual, Done)
		})
	})
}

func TestResolveFull(t *testing.T) {
	Convey("Given two resolvers with different knowledge", t, func() {
		primary := &library{
			catalog: &catalog{id: "primary", rank: 10},
			fields:  map[metakey.ID]any{metakey.Title: "Kind of Blue"},
		}
		secondary := &library{
			catalog: &catalog{id: "secondary", rank: 5},
			fields:  map[metakey.ID]any{metakey.Artist: "Miles Davis", metakey.Title: "Ignored"},
		}
		r := setup(primary, secondary)
		l := loop.New()
		d := New(l, WithRegistry(r))

		resolve := func(flags source.Flags) *media.Media {
			events, cb, run := collect(l, time.Second, false)
			_, err := d.Invoke(lookup(r, "primary"), caps.Resolve, Params{
				Media:   media.New("primary", "kob"),
				Options: source.Options{Count: source.CountInfinity, Flags: flags, Keys: []metakey.ID{metakey.Title, metakey.Artist}},
			}, cb)
			So(err, ShouldBeNil)
			run()
			So(len(*events), ShouldEqual, 1)
			return (*events)[0].Item
		}

		Convey("Normal resolution only asks the target", func() {
			item := resolve(source.ResolveNormal)
			So(item.Title(), ShouldEqual, "Kind of Blue")
			So(item.Has(metakey.Artist), ShouldBeFalse)
			So(secondary.calls.Load(), ShouldEqual, 0)
		})

		Convey("Full resolution fills missing keys from other sources", func() {
			item := resolve(source.ResolveFull)
			So(item.Title(), ShouldEqual, "Kind of Blue")
			So(item.Artist(), ShouldEqual, "Miles Davis")
			So(secondary.calls.Load(), ShouldEqual, 1)
		})
	})
}

func TestRemaining(t *testing.T) {
	Convey("Given a source that never knows how many items follow", t, func() {
		r := setup(&stream{id: "radio", total: 3})
		l := loop.New()
		d := New(l, WithRegistry(r))

		search := func(opts source.Options) []Event {
			events, cb, run := collect(l, time.Second, false)
			_, err := d.Invoke(lookup(r, "radio"), caps.Search, Params{Text: "jazz", Options: opts}, cb)
			So(err, ShouldBeNil)
			run()
			return *events
		}
		remaining := func(events []Event) []int {
			var out []int
			for _, ev := range events {
				if ev.Type == Item {
					out = append(out, ev.Remaining)
				}
			}
			return out
		}

		Convey("Unlimited searches pass the unknown count through", func() {
			events := search(source.DefaultOptions())
			So(remaining(events), ShouldResemble, []int{source.RemainingUnknown, source.RemainingUnknown, source.RemainingUnknown})
			So(events[len(events)-1].Type, ShouldEqual, Done)
		})

		Convey("Only the item that fills the limit reports zero", func() {
			events := search(source.Options{Count: 2})
			So(remaining(events), ShouldResemble, []int{source.RemainingUnknown, 0})
			So(events[len(events)-1].Type, ShouldEqual, Done)
		})

		Convey("Zero value options complete without items", func() {
			events := search(source.Options{})
			So(len(events), ShouldEqual, 1)
			So(events[0].Type, ShouldEqual, Done)
		})
	})
}
