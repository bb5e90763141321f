package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func init() {
	keyring.MockInit()
}

func TestKeyring(t *testing.T) {
	Convey("Given a mocked keyring", t, func() {
		Convey("A stored secret can be read back", func() {
			So(Set("jamendo", "client_id", "abc"), ShouldBeNil)

			secret, err := Get("jamendo", "client_id")
			So(err, ShouldBeNil)
			So(secret, ShouldEqual, "abc")

			secret, ok := Lookup("jamendo", "client_id")
			So(ok, ShouldBeTrue)
			So(secret, ShouldEqual, "abc")
		})

		Convey("A missing secret reports ErrNotFound", func() {
			_, err := Get("jamendo", "nope")
			So(err, ShouldEqual, ErrNotFound)

			_, ok := Lookup("jamendo", "nope")
			So(ok, ShouldBeFalse)
		})

		Convey("Delete removes the secret and tolerates absence", func() {
			So(Set("bookmarks", "token", "x"), ShouldBeNil)
			So(Delete("bookmarks", "token"), ShouldBeNil)
			_, ok := Lookup("bookmarks", "token")
			So(ok, ShouldBeFalse)
			So(Delete("bookmarks", "token"), ShouldBeNil)
		})
	})
}
