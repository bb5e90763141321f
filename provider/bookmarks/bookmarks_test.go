package bookmarks

import (
	"context"
	"errors"
	"testing"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	"github.com/oklog/ulid/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func collect(run func(source.Emitter) error) []string {
	var out []string
	So(run(func(m *media.Media, _ int) bool {
		out = append(out, m.Title())
		return true
	}), ShouldBeNil)
	return out
}

func TestBookmarks(t *testing.T) {
	Convey("Given an empty bookmarks store", t, func() {
		ctx := context.Background()
		path := "/bookmarks/" + ulid.Make().String() + ".json"
		src := New(config.NewBundle(ID, map[string]string{"path": path}))

		link := func(title, url string) *media.Media {
			return media.New("", "").Set(metakey.Title, title).Set(metakey.URL, url)
		}

		Convey("Stored bookmarks appear at the root", func() {
			stored, err := src.Store(ctx, link("Jazz FM", "https://jazz.example"))
			So(err, ShouldBeNil)
			So(stored.ID, ShouldNotBeEmpty)
			So(stored.Source, ShouldEqual, ID)

			titles := collect(func(emit source.Emitter) error { return src.Browse(ctx, nil, source.DefaultOptions(), emit) })
			So(titles, ShouldResemble, []string{"Jazz FM"})

			got, err := src.Metadata(ctx, stored.ID, source.DefaultOptions())
			So(err, ShouldBeNil)
			So(got.URL(), ShouldEqual, "https://jazz.example")
		})

		Convey("Bookmarks without a url are rejected", func() {
			_, err := src.Store(ctx, media.New("", "").Set(metakey.Title, "nothing"))
			So(errors.Is(err, source.ErrInvalidParams), ShouldBeTrue)
		})

		Convey("Folders hold bookmarks", func() {
			folder, err := src.Store(ctx, media.NewContainer("", "").Set(metakey.Title, "Radio"))
			So(err, ShouldBeNil)
			So(folder.Container, ShouldBeTrue)

			_, err = src.StoreIn(ctx, folder, link("Rock FM", "https://rock.example"))
			So(err, ShouldBeNil)

			titles := collect(func(emit source.Emitter) error { return src.Browse(ctx, folder, source.DefaultOptions(), emit) })
			So(titles, ShouldResemble, []string{"Rock FM"})

			refreshed, _ := src.Metadata(ctx, folder.ID, source.DefaultOptions())
			So(refreshed.ChildCount(), ShouldEqual, 1)

			Convey("Removing a folder removes its content", func() {
				So(src.Remove(ctx, folder), ShouldBeNil)
				titles := collect(func(emit source.Emitter) error { return src.Search(ctx, "", source.DefaultOptions(), emit) })
				So(titles, ShouldBeEmpty)
			})
		})

		Convey("Storing into an unknown folder fails", func() {
			_, err := src.StoreIn(ctx, media.NewContainer(ID, "missing"), link("x", "https://x"))
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("Search matches titles and urls", func() {
			_, _ = src.Store(ctx, link("Jazz FM", "https://jazz.example"))
			_, _ = src.Store(ctx, link("Talk", "https://news.example/jazz"))
			_, _ = src.Store(ctx, link("Rock", "https://rock.example"))

			titles := collect(func(emit source.Emitter) error { return src.Search(ctx, "JAZZ", source.DefaultOptions(), emit) })
			So(titles, ShouldHaveLength, 2)
		})

		Convey("Bookmarks persist across instances", func() {
			_, err := src.Store(ctx, link("Jazz FM", "https://jazz.example"))
			So(err, ShouldBeNil)

			again := New(config.NewBundle(ID, map[string]string{"path": path}))
			titles := collect(func(emit source.Emitter) error { return again.Browse(ctx, nil, source.DefaultOptions(), emit) })
			So(titles, ShouldResemble, []string{"Jazz FM"})
		})

		Convey("Removing an unknown bookmark is not found", func() {
			So(errors.Is(src.Remove(ctx, media.New(ID, "nope")), source.ErrNotFound), ShouldBeTrue)
		})
	})
}
