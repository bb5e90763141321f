package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestFetch(t *testing.T) {
	Convey("Given a flaky server", t, func() {
		viper.Set(key.NetworkRetries, 3)
		viper.Set(key.NetworkRate, 0)
		ResetLimits()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := hits.Add(1)
			switch r.URL.Path {
			case "/flaky":
				if n < 2 {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
			case "/missing":
				w.WriteHeader(http.StatusNotFound)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		}))
		Reset(srv.Close)

		ctx := context.Background()

		Convey("Transient failures are retried", func() {
			resp, err := Fetch(ctx, Client, Request{URL: srv.URL + "/flaky"})
			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, http.StatusOK)
			So(string(resp.Body), ShouldEqual, constant.UserAgent)
			So(hits.Load(), ShouldEqual, 2)
		})

		Convey("Client errors are not retried", func() {
			_, err := Fetch(ctx, Client, Request{URL: srv.URL + "/missing"})
			var status *StatusError
			So(errors.As(err, &status), ShouldBeTrue)
			So(status.Status, ShouldEqual, http.StatusNotFound)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("Retries stop after network.retries attempts", func() {
			_, err := Fetch(ctx, Client, Request{URL: srv.URL + "/broken"})
			So(err, ShouldNotBeNil)
			So(hits.Load(), ShouldEqual, 3)
		})

		Convey("A cancelled context stops immediately", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Fetch(cancelled, Client, Request{URL: srv.URL + "/flaky"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLimiter(t *testing.T) {
	Convey("Given a configured rate", t, func() {
		viper.Set(key.NetworkRate, 2)
		ResetLimits()
		Reset(func() {
			viper.Set(key.NetworkRate, 0)
			ResetLimits()
		})

		Convey("Each host gets its own limiter", func() {
			a, b := limiter("a.example"), limiter("b.example")
			So(a, ShouldNotEqual, b)
			So(limiter("a.example"), ShouldEqual, a)
			So(float64(a.Limit()), ShouldEqual, 2)
			So(Wait(context.Background(), "a.example"), ShouldBeNil)
		})
	})
}
