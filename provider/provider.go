// Package provider lists the plugins medley can load: the builtin sources
// and the Lua scripts found in the sources directory.
package provider

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/provider/bookmarks"
	"github.com/medley-cli/medley/provider/custom"
	"github.com/medley-cli/medley/provider/jamendo"
	"github.com/medley-cli/medley/provider/local"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/where"
)

// Library is a script shared by other scripts and never loaded as a source.
const Library = "common.lua"

// Builtins returns the sources compiled into medley.
func Builtins() []registry.Plugin {
	return []registry.Plugin{
		local.Plugin(),
		bookmarks.Plugin(),
		jamendo.Plugin(),
	}
}

// IsScript reports whether path names a loadable Lua source.
func IsScript(path string) bool {
	return filepath.Ext(path) == ".lua" && filepath.Base(path) != Library
}

// Custom returns the plugin for the script at path.
func Custom(path string) registry.Plugin {
	return registry.Plugin{
		ID:       custom.IDFromFilename(path),
		Filename: path,
		Info:     map[string]string{"kind": "lua"},
		Load: func(bundle config.Bundle) (source.Source, error) {
			return custom.LoadSource(path, bundle)
		},
	}
}

// Customs returns plugins for every script in the sources directory, sorted by id.
func Customs() ([]registry.Plugin, error) {
	dir := where.Sources()
	files, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var plugins []registry.Plugin
	for _, f := range files {
		if f.IsDir() || !IsScript(f.Name()) {
			continue
		}
		plugins = append(plugins, Custom(filepath.Join(dir, f.Name())))
	}

	slices.SortFunc(plugins, func(a, b registry.Plugin) int {
		return strings.Compare(a.ID, b.ID)
	})
	return plugins, nil
}

// Plugins returns builtins followed by custom scripts. A missing sources
// directory yields only builtins.
func Plugins() ([]registry.Plugin, error) {
	plugins := Builtins()
	customs, err := Customs()
	if err != nil {
		return plugins, err
	}
	return append(plugins, customs...), nil
}
