package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("Should accept any afero backend", func() {
			Set(afero.NewReadOnlyFs(afero.NewMemMapFs()))
			So(API().Name(), ShouldEqual, "ReadOnlyFilter")
		})

		Reset(SetOsFs)
	})
}

func TestGacheFs(t *testing.T) {
	Convey("GacheFs writes through the active backend", t, func() {
		SetMemMapFs()
		defer SetOsFs()

		var fs GacheFs
		So(fs.MkdirAll("/data", os.ModePerm), ShouldBeNil)

		f, err := fs.OpenFile("/data/store.json", os.O_CREATE|os.O_WRONLY, 0o644)
		So(err, ShouldBeNil)
		_, err = f.Write([]byte("{}"))
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		content, err := API().ReadFile("/data/store.json")
		So(err, ShouldBeNil)
		So(string(content), ShouldEqual, "{}")
	})
}
