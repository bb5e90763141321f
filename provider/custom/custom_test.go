package custom

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func init() {
	filesystem.SetMemMapFs()
}

const radio = `
Source = {
	id = "radio",
	name = "Radio",
	description = "Test stations",
	rank = 15,
	keys = { "id", "title", "url", "genre" },
	writable_keys = { "title" },
	requires = { "token" },
}

local stations = {
	{ id = "jazz-fm", title = "Jazz FM", url = "https://radio.example/jazz", genre = "jazz" },
	{ id = "rock-fm", title = "Rock FM", url = "https://radio.example/rock", genre = "rock" },
	{ id = "blues-fm", title = "Blues FM", url = "https://radio.example/blues", genre = "blues" },
}

function Search(text, options)
	local out = {}
	for _, s in ipairs(stations) do
		if text == "" or string.find(s.genre, text, 1, true) then
			table.insert(out, s)
		end
	end
	return out
end

function Browse(container, options)
	if container == nil then
		return { { id = "genres", title = "Genres", container = true } }
	end
	return stations
end

function Resolve(item, options)
	return { id = item.id, title = "Resolved " .. item.id, url = Config.token }
end

function Query(expr, options)
	while true do end
end
`

func write(name, content string) string {
	path := filepath.Join(where.Sources(), name)
	So(afero.WriteFile(filesystem.API(), path, []byte(content), 0o644), ShouldBeNil)
	return path
}

func collect(ctx context.Context, run func(source.Emitter) error) ([]*media.Media, []int, error) {
	var (
		items     []*media.Media
		remaining []int
	)
	err := run(func(item *media.Media, r int) bool {
		items = append(items, item)
		remaining = append(remaining, r)
		return true
	})
	return items, remaining, err
}

func TestLoadSource(t *testing.T) {
	Convey("Given a Lua source script", t, func() {
		path := write("radio.lua", radio)
		bundle := config.NewBundle("radio", map[string]string{"token": "secret"})

		Convey("It fails without its required configuration", func() {
			_, err := LoadSource(path, config.NewBundle("radio", nil))
			So(errors.Is(err, source.ErrConfigMissing), ShouldBeTrue)
		})

		Convey("It declares identity, keys and operations", func() {
			src, err := LoadSource(path, bundle)
			So(err, ShouldBeNil)
			defer src.(source.Closer).Close()

			info := src.Info()
			So(info.ID, ShouldEqual, "radio")
			So(info.Rank, ShouldEqual, 15)

			d, err := source.Negotiate(src, metakey.NewTable())
			So(err, ShouldBeNil)
			So(d.Ops, ShouldEqual, caps.Search|caps.Browse|caps.Resolve|caps.Query)
			So(d.Writes(metakey.Title), ShouldBeTrue)
		})

		Convey("Streaming functions report remaining counts", func() {
			src, err := LoadSource(path, bundle)
			So(err, ShouldBeNil)
			ctx := context.Background()

			items, remaining, err := collect(ctx, func(emit source.Emitter) error {
				return src.(source.Searcher).Search(ctx, "", source.DefaultOptions(), emit)
			})
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 3)
			So(remaining, ShouldResemble, []int{2, 1, 0})
			So(items[0].Title(), ShouldEqual, "Jazz FM")
			So(items[0].Source, ShouldEqual, "radio")

			roots, _, err := collect(ctx, func(emit source.Emitter) error {
				return src.(source.Browser).Browse(ctx, nil, source.DefaultOptions(), emit)
			})
			So(err, ShouldBeNil)
			So(roots[0].Container, ShouldBeTrue)
		})

		Convey("Resolve sees the Config global", func() {
			src, err := LoadSource(path, bundle)
			So(err, ShouldBeNil)

			item := media.New("radio", "jazz-fm").Set(metakey.Genre, "jazz")
			resolved, err := src.(source.Resolver).Resolve(context.Background(), item, source.DefaultOptions())
			So(err, ShouldBeNil)
			So(resolved.Title(), ShouldEqual, "Resolved jazz-fm")
			So(resolved.URL(), ShouldEqual, "secret")
			So(resolved.String(metakey.Genre), ShouldEqual, "jazz")
		})

		Convey("Cancellation interrupts a running script", func() {
			src, err := LoadSource(path, bundle)
			So(err, ShouldBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			err = src.(source.Querier).Query(ctx, "forever", source.DefaultOptions(), func(*media.Media, int) bool { return true })
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("A mismatched id is rejected", func() {
			other := write("other.lua", radio)
			_, err := LoadSource(other, bundle)
			So(err, ShouldNotBeNil)
		})

		Convey("A script without operations is rejected", func() {
			empty := write("empty.lua", `Source = { name = "Empty" }`)
			_, err := LoadSource(empty, config.NewBundle("empty", nil))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestIDFromFilename(t *testing.T) {
	Convey("Plugin ids derive from file names", t, func() {
		So(IDFromFilename("/x/Radio.lua"), ShouldEqual, "radio")
	})
}

const tagged = `
Source = { id = "tagged", name = "Tagged", keys = { "title", "genre" } }

function Search(text, options)
	return { { id = "kob", title = "Kind of Blue", genre = { "jazz", "modal" } } }
end

function Resolve(item, options)
	return { id = item.id, title = item.genre[1] .. "+" .. item.genre[2] .. " (" .. #item.genre .. ")" }
end
`

func TestMultiValuedKeys(t *testing.T) {
	Convey("Given a script returning a sequence for one key", t, func() {
		path := write("tagged.lua", tagged)
		src, err := LoadSource(path, config.NewBundle("tagged", nil))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("Each element becomes a separate value", func() {
			items, _, err := collect(ctx, func(emit source.Emitter) error {
				return src.(source.Searcher).Search(ctx, "", source.DefaultOptions(), emit)
			})
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 1)
			So(items[0].Strings(metakey.Genre), ShouldResemble, []string{"jazz", "modal"})
			So(items[0].String(metakey.Genre), ShouldEqual, "jazz")
		})

		Convey("Scripts receive every value back as a sequence", func() {
			item := media.New("tagged", "kob").Add(metakey.Genre, "jazz").Add(metakey.Genre, "modal")
			resolved, err := src.(source.Resolver).Resolve(ctx, item, source.DefaultOptions())
			So(err, ShouldBeNil)
			So(resolved.Title(), ShouldEqual, "jazz+modal (2)")
		})
	})
}
