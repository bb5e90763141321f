package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}

		Convey("Content passes through without a notification", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("A notification is appended to the last line", func() {
			So(m.Update(NotifyMsg{Text: "source added"}), ShouldNotBeNil)
			So(m.View("a\nb"), ShouldStartWith, "a\nb  ")
			So(m.View("a\nb"), ShouldContainSubstring, "source added")
		})

		Convey("Only the latest notification is cleared by its own timer", func() {
			m.Update(NotifyMsg{Text: "first"})
			m.Update(NotifyMsg{Text: "second"})

			m.Update(clearMsg{seq: 1})
			So(m.Text(), ShouldEqual, "second")

			m.Update(clearMsg{seq: 2})
			So(m.Text(), ShouldBeEmpty)
		})

		Convey("Unrelated messages are ignored", func() {
			So(m.Update("hello"), ShouldBeNil)
			So(m.Text(), ShouldBeEmpty)
		})
	})
}
