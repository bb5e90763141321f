package caps

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOp(t *testing.T) {
	Convey("Given capability sets", t, func() {
		set := Search | Browse

		Convey("Bits follow the framework layout", func() {
			So(uint(Metadata), ShouldEqual, 1)
			So(uint(Resolve), ShouldEqual, 2)
			So(uint(Search), ShouldEqual, 8)
			So(uint(Remove), ShouldEqual, 128)
		})

		Convey("Has checks membership", func() {
			So(set.Has(Search), ShouldBeTrue)
			So(set.Has(Search|Browse), ShouldBeTrue)
			So(set.Has(Query), ShouldBeFalse)
			So(set.Has(None), ShouldBeFalse)
		})

		Convey("Single accepts exactly one known bit", func() {
			So(Search.Single(), ShouldBeTrue)
			So(set.Single(), ShouldBeFalse)
			So(None.Single(), ShouldBeFalse)
			So(Op(1<<12).Single(), ShouldBeFalse)
		})

		Convey("Streaming covers browse, search and query", func() {
			So(Browse.Streaming(), ShouldBeTrue)
			So(Query.Streaming(), ShouldBeTrue)
			So(Resolve.Streaming(), ShouldBeFalse)
			So(set.Streaming(), ShouldBeFalse)
		})

		Convey("List and String are in ascending bit order", func() {
			So(set.List(), ShouldResemble, []Op{Browse, Search})
			So(set.String(), ShouldEqual, "browse,search")
			So(None.String(), ShouldEqual, "none")
		})

		Convey("Parse reads names and lists", func() {
			op, err := Parse("search, Browse")
			So(err, ShouldBeNil)
			So(op, ShouldEqual, set)

			op, err = Parse("store-parent")
			So(err, ShouldBeNil)
			So(op, ShouldEqual, StoreParent)

			_, err = Parse("teleport")
			So(err, ShouldNotBeNil)
		})
	})
}
