// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "MEDLEY_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the primary configuration directory.
// XDG_CONFIG_HOME (or the platform equivalent) is used unless MEDLEY_CONFIG_PATH is set.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Medley))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Medley))
}

// Logs resolves the directory for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Sources resolves the directory scanned for Lua source plugins.
func Sources() string {
	return ensureDir(filepath.Join(Config(), "sources"))
}

// Bookmarks resolves the file backing the builtin bookmarks source.
func Bookmarks() string {
	return filepath.Join(Config(), "bookmarks.json")
}

// Queries resolves the search query suggestion registry.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Responses resolves the directory holding cached provider responses.
func Responses() string {
	return ensureDir(filepath.Join(Cache(), "responses"))
}

// Music resolves the default root of the local source. The directory is not created.
func Music() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Music")
}
