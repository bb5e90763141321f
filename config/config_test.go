package config

import (
	"errors"
	"testing"

	"github.com/medley-cli/medley/auth"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/source"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
			So(viper.GetInt(key.SearchLimit), ShouldEqual, 5)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("sources.ranks"), ShouldEqual, "sources_ranks")
		})

		Convey("Fields expose their environment variable", func() {
			f := Default[key.SourcesAllow]
			So(f.Env(), ShouldEqual, "MEDLEY_SOURCES_ALLOW")
			So(f.typeName(), ShouldEqual, "[]string")
			So(f.Pretty(), ShouldContainSubstring, key.SourcesAllow)
		})

		Convey("Suggest finds the closest key", func() {
			s, ok := Suggest("sources.rank")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, key.SourcesRanks)

			_, ok = Suggest("zzzzzzzz")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBundle(t *testing.T) {
	Convey("Given provider bundles", t, func() {
		Reset(func() { viper.Set("providers.jamendo.client_id", "") })

		Convey("Static bundles only see their values", func() {
			b := NewBundle("jamendo", map[string]string{"client_id": "abc"})
			v, ok := b.Get("client_id")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "abc")
			So(b.GetOr("format", "json"), ShouldEqual, "json")
		})

		Convey("Live bundles read configuration first", func() {
			viper.Set("providers.jamendo.client_id", "from-config")
			So(auth.Set("jamendo", "client_id", "from-keyring"), ShouldBeNil)

			v, _ := BundleFor("jamendo").Get("client_id")
			So(v, ShouldEqual, "from-config")
			So(BundleFor("jamendo").Path("client_id"), ShouldEqual, "providers.jamendo.client_id")
		})

		Convey("Live bundles fall back to the keyring", func() {
			So(auth.Set("jamendo", "client_id", "from-keyring"), ShouldBeNil)
			v, ok := BundleFor("jamendo").Get("client_id")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "from-keyring")
			So(BundleFor("jamendo").Map("client_id"), ShouldContainKey, "client_id")
		})

		Convey("Require names missing fields", func() {
			err := NewBundle("jamendo", nil).Require("client_id", "secret")
			So(errors.Is(err, source.ErrConfigMissing), ShouldBeTrue)

			var missing *source.ConfigMissingError
			So(errors.As(err, &missing), ShouldBeTrue)
			So(missing.Fields, ShouldResemble, []string{"client_id", "secret"})

			So(NewBundle("x", map[string]string{"a": "1"}).Require("a"), ShouldBeNil)
		})
	})
}

func TestRanks(t *testing.T) {
	Convey("Given rank specifications", t, func() {
		ranks := ParseRanks([]string{"jamendo:40", "loc*:-10,local:5", "broken", "bad:x", ":3"})

		Convey("Exact ids win over patterns", func() {
			r, ok := ranks.Rank("local")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, 5)

			r, ok = ranks.Rank("locus")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, -10)
		})

		Convey("Unmatched ids keep their declared rank", func() {
			So(ranks.Apply("bookmarks", 7), ShouldEqual, 7)
			So(ranks.Apply("jamendo", 0), ShouldEqual, 40)
		})

		Convey("Malformed specs are skipped", func() {
			So(len(ranks.exact), ShouldEqual, 2)
			So(len(ranks.patterns), ShouldEqual, 1)
		})
	})
}
