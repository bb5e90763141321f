package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const script = `
Source = { id = "radio", name = "Radio" }
function Search(text, options) return {} end
`

func TestPlugins(t *testing.T) {
	Convey("Given a sources directory", t, func() {
		fs := filesystem.API()
		dir := where.Sources()
		So(fs.WriteFile(filepath.Join(dir, "radio.lua"), []byte(script), 0o644), ShouldBeNil)
		So(fs.WriteFile(filepath.Join(dir, Library), []byte("return {}"), 0o644), ShouldBeNil)
		So(fs.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644), ShouldBeNil)

		Convey("Builtins come first followed by scripts", func() {
			plugins, err := Plugins()
			So(err, ShouldBeNil)

			ids := lo.Map(plugins, func(p registry.Plugin, _ int) string { return p.ID })
			So(ids[:3], ShouldResemble, []string{"local", "bookmarks", "jamendo"})
			So(ids, ShouldContain, "radio")
			So(ids, ShouldNotContain, "common")
		})

		Convey("Script plugins remember their file", func() {
			customs, err := Customs()
			So(err, ShouldBeNil)
			So(customs, ShouldHaveLength, 1)
			So(customs[0].Filename, ShouldEqual, filepath.Join(dir, "radio.lua"))
			So(customs[0].Info["kind"], ShouldEqual, "lua")
		})
	})
}

func TestInstall(t *testing.T) {
	Convey("Given a server hosting a script", t, func() {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			_, _ = w.Write([]byte(script))
		}))
		defer srv.Close()

		Convey("It is written into the sources directory once", func() {
			path, changed, err := Install(context.Background(), srv.URL+"/scripts/fresh.lua")
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)
			So(path, ShouldEqual, filepath.Join(where.Sources(), "fresh.lua"))

			_, changed, err = Install(context.Background(), srv.URL+"/scripts/fresh.lua")
			So(err, ShouldBeNil)
			So(changed, ShouldBeFalse)
			So(hits, ShouldEqual, 2)
		})

		Convey("Non lua urls are rejected", func() {
			_, _, err := Install(context.Background(), srv.URL+"/readme.md")
			So(err, ShouldNotBeNil)
			So(hits, ShouldEqual, 0)
		})
	})
}
