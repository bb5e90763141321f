package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/util"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetOsFs()
}

type fake struct{ id string }

func (f fake) Info() source.Info { return source.Info{ID: f.id, Name: f.id} }

func (fake) Search(context.Context, string, source.Options, source.Emitter) error { return nil }

func fakePlugin(loads *int, mu *sync.Mutex) func(string) registry.Plugin {
	return func(path string) registry.Plugin {
		id := util.FileStem(filepath.Base(path))
		return registry.Plugin{
			ID:       id,
			Filename: path,
			Load: func(config.Bundle) (source.Source, error) {
				mu.Lock()
				*loads++
				mu.Unlock()
				return fake{id: id}, nil
			},
		}
	}
}

func TestWatcher(t *testing.T) {
	Convey("Given a watched directory", t, func() {
		dir := t.TempDir()
		reg := registry.New()

		var (
			mu     sync.Mutex
			loads  int
			events []string
		)
		reg.OnSourceAdded(func(e *registry.Entry) {
			mu.Lock()
			events = append(events, "+"+e.ID())
			mu.Unlock()
		})
		reg.OnSourceRemoved(func(e *registry.Entry) {
			mu.Lock()
			events = append(events, "-"+e.ID())
			mu.Unlock()
		})

		w := New(reg, dir,
			WithDelay(50*time.Millisecond),
			WithPlugin(fakePlugin(&loads, &mu)),
			WithMatch(func(p string) bool { return strings.HasSuffix(p, ".lua") }),
		)

		Convey("Sync adds, reloads and removes sources", func() {
			path := filepath.Join(dir, "radio.lua")
			So(os.WriteFile(path, []byte("--"), 0o644), ShouldBeNil)

			w.Sync(context.Background(), path)
			_, err := reg.Lookup("radio")
			So(err, ShouldBeNil)

			w.Sync(context.Background(), path)
			So(reg.Len(), ShouldEqual, 1)

			So(os.Remove(path), ShouldBeNil)
			w.Sync(context.Background(), path)
			So(reg.Len(), ShouldEqual, 0)

			So(events, ShouldResemble, []string{"+radio", "-radio", "+radio", "-radio"})
		})

		Convey("Bursts of writes are loaded once", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()
			time.Sleep(50 * time.Millisecond)

			path := filepath.Join(dir, "burst.lua")
			for range 5 {
				So(os.WriteFile(path, []byte("--"), 0o644), ShouldBeNil)
			}
			So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644), ShouldBeNil)

			deadline := time.Now().Add(2 * time.Second)
			for reg.Len() == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			time.Sleep(100 * time.Millisecond)

			mu.Lock()
			So(loads, ShouldEqual, 1)
			mu.Unlock()

			cancel()
			So(<-done, ShouldBeNil)
		})
	})
}

func TestSerial(t *testing.T) {
	Convey("Given a serial post function", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		post := Serial(ctx)

		Convey("Posted functions never overlap", func() {
			var (
				mu      sync.Mutex
				active  int
				overlap bool
				wg      sync.WaitGroup
			)
			for range 8 {
				wg.Add(1)
				go post(func() {
					defer wg.Done()
					mu.Lock()
					active++
					overlap = overlap || active > 1
					mu.Unlock()

					time.Sleep(time.Millisecond)

					mu.Lock()
					active--
					mu.Unlock()
				})
			}
			wg.Wait()
			So(overlap, ShouldBeFalse)
		})

		Convey("Posts after the context ends are dropped", func() {
			cancel()
			ran := false
			post(func() { ran = true })
			So(ran, ShouldBeFalse)
		})
	})
}
