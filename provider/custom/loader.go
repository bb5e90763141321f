// Package custom runs media sources written in Lua.
package custom

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// IDFromFilename derives a plugin identifier from a script path.
func IDFromFilename(path string) string {
	stem := util.FileStem(filepath.Base(path))
	return strings.ToLower(util.SanitizeFilename(stem))
}

// LoadSource executes the script at path and returns the source it declares.
// Fields listed in the script's requires entry must be present in bundle.
func LoadSource(path string, bundle config.Bundle) (source.Source, error) {
	L := lua.NewState()
	libs.Preload(L)
	registerHTTPTLS(L)

	cfg := L.NewTable()
	L.SetGlobal(constant.ConfigTable, cfg)

	if err := run(L, path); err != nil {
		L.Close()
		return nil, err
	}

	s, err := newLuaSource(L, path)
	if err != nil {
		L.Close()
		return nil, err
	}

	if err := bundle.Require(s.requires...); err != nil {
		L.Close()
		return nil, err
	}
	for k, v := range bundle.Map(s.requires...) {
		cfg.RawSetString(k, lua.LString(v))
	}

	return s, nil
}

func newLuaSource(L *lua.LState, path string) (*luaSource, error) {
	stem := IDFromFilename(path)

	decl, ok := L.GetGlobal(constant.SourceTable).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s table is not defined in %s", constant.SourceTable, filepath.Base(path))
	}

	if id := getString(decl, "id", stem); id != stem {
		return nil, fmt.Errorf("declared id %q does not match the file name %q", id, stem)
	}

	s := &luaSource{
		state: L,
		keys:  metakey.NewTable(),
		info: source.Info{
			ID:          stem,
			Name:        getString(decl, "name", stem),
			Description: getString(decl, "description", ""),
			Rank:        getInt(decl, "rank", 0),
			Origin:      path,
			Tags:        getStringList(decl, "tags"),
		},
		supported: getStringList(decl, "keys"),
		writable:  getStringList(decl, "writable_keys"),
		requires:  getStringList(decl, "requires"),
	}

	for fn, op := range functions {
		if L.GetGlobal(fn).Type() == lua.LTFunction {
			s.ops |= op
		}
	}
	if s.ops == 0 {
		return nil, errors.New("script defines no operation functions")
	}

	return s, nil
}
