package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/network"
	"github.com/medley-cli/medley/util"
	"github.com/medley-cli/medley/where"
)

// Install downloads the script at rawURL into the sources directory.
// It reports whether the file on disk changed; identical content is left untouched.
func Install(ctx context.Context, rawURL string) (string, bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, err
	}

	name := util.SanitizeFilename(path.Base(u.Path))
	if !IsScript(name) {
		return "", false, fmt.Errorf("%s: not a lua source", rawURL)
	}

	resp, err := network.Fetch(ctx, network.Client, network.Request{URL: rawURL})
	if err != nil {
		return "", false, err
	}

	fs := filesystem.API()
	target := filepath.Join(where.Sources(), name)

	if local, err := fs.ReadFile(target); err == nil && sha256.Sum256(local) == sha256.Sum256(resp.Body) {
		log.WithFields(log.Fields{"path": target}).Info("source already up to date")
		return target, false, nil
	}

	tmp := target + ".tmp"
	if err := fs.WriteFile(tmp, resp.Body, 0o644); err != nil {
		return "", false, err
	}
	if err := fs.Rename(tmp, target); err != nil {
		_ = fs.Remove(tmp)
		return "", false, err
	}

	log.WithFields(log.Fields{"path": target}).Info("installed source")
	return target, true, nil
}
