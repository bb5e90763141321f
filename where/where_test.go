package where

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/medley-cli/medley/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override variable", func() {
			t.Setenv(EnvConfigPath, "/custom/medley")
			So(Config(), ShouldEqual, "/custom/medley")
			So(Sources(), ShouldEqual, filepath.Join("/custom/medley", "sources"))
			So(Bookmarks(), ShouldEqual, filepath.Join("/custom/medley", "bookmarks.json"))
		})

		Convey("Cache() and Responses()", func() {
			So(lo.Must(filesystem.API().IsDir(Cache())), ShouldBeTrue)
			So(strings.HasPrefix(Responses(), Cache()), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			So(lo.Must(filesystem.API().IsDir(Logs())), ShouldBeTrue)
		})

		Convey("Music() is not created", func() {
			So(Music(), ShouldNotBeEmpty)
		})
	})
}
