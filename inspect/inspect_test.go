package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type radio struct{ rank int }

func (r radio) Info() source.Info {
	return source.Info{ID: "radio", Name: "Radio", Description: "Internet radio stations", Rank: r.rank}
}

func (radio) Search(context.Context, string, source.Options, source.Emitter) error { return nil }

func (radio) Browse(context.Context, *media.Media, source.Options, source.Emitter) error { return nil }

func (radio) SupportedKeys() []string { return []string{"title", "url", "bitrate"} }

func (radio) WritableKeys() []string { return nil }

type tape struct{}

func (tape) Info() source.Info { return source.Info{ID: "tape", Rank: 1} }

func (tape) Metadata(context.Context, string, source.Options) (*media.Media, error) { return nil, nil }

func load(sources ...source.Source) *registry.Registry {
	reg := registry.New()
	for _, s := range sources {
		src := s
		So(reg.Register(registry.Plugin{
			ID:   src.Info().ID,
			Info: map[string]string{"kind": "test"},
			Load: func(config.Bundle) (source.Source, error) { return src, nil },
		}), ShouldBeNil)
	}
	So(reg.Load(context.Background()), ShouldBeEmpty)
	return reg
}

func TestInspect(t *testing.T) {
	Convey("Given a registry with two sources", t, func() {
		reg := load(radio{rank: 5}, tape{})

		Convey("Summaries follow registry order", func() {
			summaries := Summaries(reg)
			So(summaries, ShouldHaveLength, 2)
			So(summaries[0], ShouldResemble, Summary{ID: "radio", Rank: 5, Operations: caps.Browse | caps.Search})

			var buf bytes.Buffer
			So(RenderSummaries(&buf, summaries), ShouldBeNil)
			So(buf.String(), ShouldEqual, "radio: rank 5, browse,search\ntape: rank 1, metadata\n")
		})

		Convey("A report lists operations and keys", func() {
			r, err := Describe(reg, "radio")
			So(err, ShouldBeNil)
			So(r.Name, ShouldEqual, "Radio")
			So(r.Origin, ShouldNotBeEmpty)
			So(r.Info, ShouldResemble, map[string]string{"kind": "test"})
			So(r.Readable, ShouldResemble, []string{"title", "url", "bitrate"})
			So(r.Writable, ShouldBeEmpty)
			So(r.Operations, ShouldResemble, []Operation{
				{Name: "browse", Description: "Browse"},
				{Name: "search", Description: "Search"},
			})

			var buf bytes.Buffer
			So(RenderReport(&buf, r, 80), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Internet radio stations")
			So(buf.String(), ShouldContainSubstring, "title, url, bitrate")
		})

		Convey("Summaries serialize operations as names", func() {
			data, err := json.Marshal(Summaries(reg)[1])
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"id":"tape","rank":1,"operations":"metadata"}`)
		})

		Convey("Unknown sources are not found", func() {
			_, err := Describe(reg, "radios")
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("Schemas describe both shapes", func() {
			So(Schema(false), ShouldNotBeNil)
			data, err := json.Marshal(Schema(true))
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "operations")
		})
	})
}
