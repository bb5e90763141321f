package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoop(t *testing.T) {
	Convey("Given a loop", t, func() {
		l := New()

		Convey("Callbacks run in posting order", func() {
			var got []int
			for i := range 5 {
				l.Post(func() { got = append(got, i) })
			}
			l.Post(l.Quit)

			So(l.Run(context.Background()), ShouldBeNil)
			So(got, ShouldResemble, []int{0, 1, 2, 3, 4})
		})

		Convey("Callbacks posted from other goroutines never overlap", func() {
			var (
				wg      sync.WaitGroup
				running int
				overlap bool
				count   int
			)
			for range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					l.Post(func() {
						running++
						if running > 1 {
							overlap = true
						}
						count++
						running--
					})
				}()
			}
			go func() {
				wg.Wait()
				l.Post(l.Quit)
			}()

			So(l.Run(context.Background()), ShouldBeNil)
			So(overlap, ShouldBeFalse)
			So(count, ShouldEqual, 50)
		})

		Convey("Post after Quit is a no-op", func() {
			l.Quit()
			called := false
			l.Post(func() { called = true })
			So(l.Run(context.Background()), ShouldBeNil)
			So(called, ShouldBeFalse)
			So(l.Stopped(), ShouldBeTrue)
		})

		Convey("A cancelled context stops the loop", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			So(l.Run(ctx), ShouldEqual, context.DeadlineExceeded)
			So(l.Stopped(), ShouldBeTrue)
		})
	})
}
