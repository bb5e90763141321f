package cmd

import (
	"testing"

	"github.com/medley-cli/medley/key"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHelpers(t *testing.T) {
	Convey("Secrets are masked except for their tail", t, func() {
		So(mask("abcdefgh"), ShouldEqual, "****efgh")
		So(mask("abc"), ShouldEqual, "***")
		So(mask(""), ShouldEqual, "")
	})

	Convey("Config keys map to prefixed environment variables", t, func() {
		So(envName(key.SearchLimit), ShouldEqual, "MEDLEY_SEARCH_LIMIT")
		So(envName("providers.jamendo.client_id"), ShouldEqual, "MEDLEY_PROVIDERS_JAMENDO_CLIENT_ID")
	})

	Convey("Unknown config keys suggest the closest one", t, func() {
		err := errUnknownKey("search.limt")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, key.SearchLimit)
	})
}

func TestCommandTree(t *testing.T) {
	Convey("Every command is reachable from the root", t, func() {
		for _, path := range [][]string{
			{"inspect"},
			{"search"},
			{"launch"},
			{"explore"},
			{"sources", "list"},
			{"sources", "gen"},
			{"sources", "install"},
			{"sources", "remove"},
			{"sources", "run"},
			{"credentials", "set"},
			{"credentials", "get"},
			{"credentials", "delete"},
			{"config", "set"},
			{"where"},
			{"env"},
			{"clear"},
			{"version"},
		} {
			found, _, err := rootCmd.Find(path)
			So(err, ShouldBeNil)
			So(found.Name(), ShouldEqual, path[len(path)-1])
		}
	})
}
