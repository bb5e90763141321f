// Package version tracks the application version and discovers newer releases.
package version

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/network"
	"github.com/medley-cli/medley/where"
	"github.com/metafates/gache"
	"github.com/tidwall/gjson"
)

// ReleasesURL is queried for the latest release.
var ReleasesURL = "https://api.github.com/repos/" + constant.Repository + "/releases/latest"

var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the most recent release version without the "v" prefix.
// The answer is cached for two days.
func Latest(ctx context.Context) (string, error) {
	ver, expired, err := versionCacher.Get()
	if err == nil && !expired && ver != "" {
		return ver, nil
	}

	resp, err := network.Fetch(ctx, network.Client, network.Request{
		URL:     ReleasesURL,
		Headers: map[string]string{"Accept": "application/vnd.github+json"},
	})
	if err != nil {
		return "", err
	}

	tag := gjson.GetBytes(resp.Body, "tag_name").String()
	if tag == "" {
		return "", errors.New("empty tag name")
	}

	ver = strings.TrimPrefix(tag, "v")
	_ = versionCacher.Set(ver)
	return ver, nil
}
