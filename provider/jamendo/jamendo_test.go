package jamendo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/internal/cache"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

// api serves total tracks named "<search> <n>".
func api(total int, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		if q.Get("client_id") != "key" {
			_, _ = w.Write([]byte(`{"headers":{"status":"failed","error_message":"bad client id"},"results":[]}`))
			return
		}

		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		var results []string
		for i := offset; i < min(total, offset+limit); i++ {
			results = append(results, fmt.Sprintf(
				`{"id":"%d","name":"%s %d","artist_name":"Artist","album_name":"Album","duration":%d,"audio":"https://cdn/%d.mp3","musicinfo":{"tags":{"genres":["jazz"]}}}`,
				i, q.Get("search"), i, 100+i, i))
		}
		_, _ = fmt.Fprintf(w, `{"headers":{"status":"success","results_count":%d},"results":[%s]}`, len(results), strings.Join(results, ","))
	}))
}

func TestJamendo(t *testing.T) {
	Convey("Given the Jamendo API", t, func() {
		So(cache.Clear(), ShouldBeNil)

		var hits atomic.Int32
		srv := api(3, &hits)
		Reset(srv.Close)

		ctx := context.Background()
		bundle := config.NewBundle(ID, map[string]string{"client_id": "key", "endpoint": srv.URL})

		Convey("Loading without a client id reports missing configuration", func() {
			_, err := New(config.NewBundle(ID, nil))
			So(errors.Is(err, source.ErrConfigMissing), ShouldBeTrue)
		})

		Convey("Search streams tracks with metadata", func() {
			src, err := New(bundle)
			So(err, ShouldBeNil)

			var items []*media.Media
			var remaining []int
			err = src.Search(ctx, "blue", source.DefaultOptions(), func(m *media.Media, r int) bool {
				items = append(items, m)
				remaining = append(remaining, r)
				return true
			})
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 3)
			So(items[0].Title(), ShouldEqual, "blue 0")
			So(items[0].ID, ShouldEqual, "track/0")
			So(items[0].Artist(), ShouldEqual, "Artist")
			So(items[0].Duration().Seconds(), ShouldEqual, 100)
			So(remaining, ShouldResemble, []int{2, 1, 0})
		})

		Convey("Responses are cached", func() {
			src, _ := New(bundle)
			noop := func(*media.Media, int) bool { return true }
			So(src.Search(ctx, "x", source.Options{Count: 2}, noop), ShouldBeNil)
			So(src.Search(ctx, "x", source.Options{Count: 2}, noop), ShouldBeNil)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("Browse starts with artists and albums", func() {
			src, _ := New(bundle)
			var ids []string
			So(src.Browse(ctx, nil, source.DefaultOptions(), func(m *media.Media, _ int) bool {
				ids = append(ids, m.ID)
				return true
			}), ShouldBeNil)
			So(ids, ShouldResemble, []string{"artists", "albums"})

			err := src.Browse(ctx, media.NewContainer(ID, "bogus"), source.DefaultOptions(), func(*media.Media, int) bool { return true })
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("Metadata fetches one track", func() {
			src, _ := New(bundle)
			_, err := src.Metadata(ctx, "track/1", source.DefaultOptions())
			So(errors.Is(err, source.ErrNotFound), ShouldBeTrue)
		})

		Convey("API failures are reported", func() {
			src, _ := New(config.NewBundle(ID, map[string]string{"client_id": "wrong", "endpoint": srv.URL}))
			err := src.Search(ctx, "x", source.DefaultOptions(), func(*media.Media, int) bool { return true })
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "bad client id")
		})
	})
}
