package media

import (
	"testing"
	"time"

	"github.com/medley-cli/medley/metakey"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMedia(t *testing.T) {
	Convey("Given a media item", t, func() {
		m := New("jamendo", "42").
			Set(metakey.Title, "Blue in Green").
			Set(metakey.Duration, 337.0)

		Convey("Typed accessors convert values", func() {
			So(m.Title(), ShouldEqual, "Blue in Green")
			So(m.Duration(), ShouldEqual, 337*time.Second)
			So(m.Artist(), ShouldBeEmpty)
			So(m.ChildCount(), ShouldEqual, ChildCountUnknown)
		})

		Convey("Set with nil removes the key", func() {
			m.Set(metakey.Title, nil)
			So(m.Has(metakey.Title), ShouldBeFalse)
			So(m.Lookup(metakey.Title).IsAbsent(), ShouldBeTrue)
		})

		Convey("Keys are sorted", func() {
			So(m.Keys(), ShouldResemble, []metakey.ID{metakey.Title, metakey.Duration})
		})

		Convey("Clone does not share fields", func() {
			c := m.Clone()
			c.Set(metakey.Title, "Other")
			So(m.Title(), ShouldEqual, "Blue in Green")
		})

		Convey("Merge only fills missing keys", func() {
			other := New("local", "x").
				Set(metakey.Title, "Ignored").
				Set(metakey.Artist, "Miles Davis")

			filled := m.Merge(other)
			So(filled, ShouldResemble, []metakey.ID{metakey.Artist})
			So(m.Title(), ShouldEqual, "Blue in Green")
			So(m.Artist(), ShouldEqual, "Miles Davis")
			So(m.Missing([]metakey.ID{metakey.Artist, metakey.Album}), ShouldResemble, []metakey.ID{metakey.Album})
		})

		Convey("Encode renders field names through the table", func() {
			table := metakey.NewTable()
			data, err := m.Encode(table)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"title":"Blue in Green"`)

			decoded, err := Decode(table, data)
			So(err, ShouldBeNil)
			So(decoded.Title(), ShouldEqual, "Blue in Green")
			So(decoded.Source, ShouldEqual, "jamendo")
		})
	
		Convey("Keys can carry several values", func() {
			m.Add(metakey.Artist, "Miles Davis").Add(metakey.Artist, "Bill Evans")
			So(m.Artist(), ShouldEqual, "Miles Davis")
			So(m.Count(metakey.Artist), ShouldEqual, 2)
			So(m.Strings(metakey.Artist), ShouldResemble, []string{"Miles Davis", "Bill Evans"})

			Convey("Clones copy every value independently", func() {
				c := m.Clone()
				c.Add(metakey.Artist, "Paul Chambers")
				So(m.Count(metakey.Artist), ShouldEqual, 2)
				So(c.Count(metakey.Artist), ShouldEqual, 3)
			})

			Convey("Set replaces all values", func() {
				m.Set(metakey.Artist, "Coltrane")
				So(m.GetAll(metakey.Artist), ShouldResemble, []any{"Coltrane"})
			})

			Convey("Merge fills every value of a missing key", func() {
				target := New("local", "y")
				target.Merge(m)
				So(target.Strings(metakey.Artist), ShouldResemble, []string{"Miles Davis", "Bill Evans"})
			})

			Convey("Encoding keeps every value", func() {
				table := metakey.NewTable()
				data, err := m.Encode(table)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"artist":["Miles Davis","Bill Evans"]`)

				decoded, err := Decode(table, data)
				So(err, ShouldBeNil)
				So(decoded.Strings(metakey.Artist), ShouldResemble, []string{"Miles Davis", "Bill Evans"})
				So(decoded.Title(), ShouldEqual, "Blue in Green")
			})
		})
	})
}
