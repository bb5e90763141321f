package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/loop"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type shelf struct{}

func (shelf) Info() source.Info { return source.Info{ID: "shelf", Name: "Shelf"} }

func (shelf) Browse(_ context.Context, container *media.Media, _ source.Options, emit source.Emitter) error {
	if container == nil {
		emit(media.NewContainer("shelf", "jazz").Set(metakey.Title, "Jazz"), 1)
		emit(media.New("shelf", "intro").Set(metakey.Title, "Intro"), 0)
		return nil
	}
	for i := range 3 {
		if !emit(media.New("shelf", fmt.Sprint(i)).Set(metakey.Title, fmt.Sprintf("%s %d", container.ID, i)), 2-i) {
			return nil
		}
	}
	return nil
}

func (shelf) Metadata(_ context.Context, id string, _ source.Options) (*media.Media, error) {
	return media.New("shelf", id).Set(metakey.Artist, "Quartet"), nil
}

// pump feeds events to the model until the operations it waits for are over.
func pump(b *statefulBubble) {
	deadline := time.After(2 * time.Second)
	for len(b.handlers) > 0 {
		select {
		case ev := <-b.events:
			b.Update(eventMsg(ev))
		case <-deadline:
			return
		}
	}
}

func titles(b *statefulBubble) []string {
	var out []string
	for _, it := range b.itemsC.Items() {
		out = append(out, it.(*listItem).internal.(*media.Media).Title())
	}
	return out
}

func TestExplorer(t *testing.T) {
	Convey("Given an explorer over a browsable source", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reg := registry.New()
		So(reg.Register(registry.Plugin{
			ID:   "shelf",
			Load: func(config.Bundle) (source.Source, error) { return shelf{}, nil },
		}), ShouldBeNil)
		So(reg.Load(ctx), ShouldBeEmpty)

		l := loop.New()
		go func() { _ = l.Run(ctx) }()
		defer l.Quit()

		b := newBubble(reg, dispatch.New(l, dispatch.WithRegistry(reg)), &Options{Source: "shelf"})
		b.Init()
		pump(b)

		Convey("Opening a source browses its root", func() {
			So(b.state, ShouldEqual, itemsState)
			So(titles(b), ShouldResemble, []string{"Jazz", "Intro"})
			So(b.loading, ShouldBeFalse)
		})

		Convey("Entering a container browses it and back returns to the root", func() {
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			pump(b)
			So(titles(b), ShouldResemble, []string{"jazz 0", "jazz 1", "jazz 2"})
			So(b.path.Len(), ShouldEqual, 1)

			b.Update(tea.KeyMsg{Type: tea.KeyEsc})
			pump(b)
			So(titles(b), ShouldResemble, []string{"Jazz", "Intro"})
			So(b.state, ShouldEqual, itemsState)

			b.Update(tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, sourcesState)
		})

		Convey("Details are completed with fetched metadata", func() {
			b.itemsC.Select(1)
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(b.state, ShouldEqual, detailsState)
			pump(b)
			So(b.details.pending, ShouldBeFalse)
			So(b.details.item.Title(), ShouldEqual, "Intro")
			So(b.details.item.Artist(), ShouldEqual, "Quartet")
		})

		Convey("Search is refused for sources that cannot search", func() {
			So(b.openSearch(), ShouldNotBeNil)
			So(b.state, ShouldEqual, itemsState)
		})
	})

	Convey("Opening an unknown source shows an error", t, func() {
		b := newBubble(registry.New(), nil, &Options{Source: "nope"})
		b.Init()
		So(b.state, ShouldEqual, errorState)
		So(b.View(), ShouldContainSubstring, "nope")
	})
}

func TestDeliverAfterExit(t *testing.T) {
	Convey("Given an explorer whose program has exited", t, func() {
		b := newBubble(registry.New(), nil, &Options{})
		b.events = make(chan dispatch.Event)
		done := make(chan struct{})
		b.done = done

		returned := make(chan struct{})
		go func() {
			b.deliver(dispatch.Event{Type: dispatch.Item})
			close(returned)
		}()

		Convey("Pending events are dropped instead of blocking the loop", func() {
			close(done)
			var unblocked bool
			select {
			case <-returned:
				unblocked = true
			case <-time.After(time.Second):
			}
			So(unblocked, ShouldBeTrue)
		})
	})
}
