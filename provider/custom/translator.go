package custom

import (
	"fmt"
	"strings"

	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key, fallback string) string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString || val.Type() == lua.LTNumber {
		return val.String()
	}
	return fallback
}

func getInt(table *lua.LTable, key string, fallback int) int {
	if n, ok := table.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return fallback
}

// getStringList accepts either a sequence of strings or a comma-separated string.
func getStringList(table *lua.LTable, key string) []string {
	switch val := table.RawGetString(key).(type) {
	case lua.LString:
		parts := lo.Map(strings.Split(string(val), ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
		return lo.Compact(parts)
	case *lua.LTable:
		var list []string
		val.ForEach(func(_, v lua.LValue) {
			if v.Type() == lua.LTString {
				list = append(list, v.String())
			}
		})
		return list
	default:
		return nil
	}
}

// goValues converts v to the values of one key. A sequence becomes one
// value per element.
func goValues(v lua.LValue) []any {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return []any{goValue(v)}
	}
	var values []any
	for i := 1; i <= tbl.Len(); i++ {
		if val := goValue(tbl.RawGetInt(i)); val != nil {
			values = append(values, val)
		}
	}
	return values
}

// goValue converts scalar Lua values. Nested tables are not supported.
func goValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LString:
		return string(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int64(f)) {
			return int(f)
		}
		return f
	case lua.LBool:
		return bool(val)
	default:
		return nil
	}
}

func luaValue(v any) lua.LValue {
	switch val := v.(type) {
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case bool:
		return lua.LBool(val)
	case nil:
		return lua.LNil
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

func (s *luaSource) itemsFromValue(v lua.LValue) ([]*media.Media, error) {
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected table of media, got %s", v.Type())
	}

	var (
		items []*media.Media
		errs  []error
	)
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		item, err := s.itemFromTable(entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}
	for _, err := range errs {
		log.WithSource(s.info.ID).Warn(err)
	}
	return items, nil
}

func (s *luaSource) itemFromTable(tbl *lua.LTable) (*media.Media, error) {
	id := getString(tbl, "id", "")
	if id == "" {
		id = getString(tbl, "url", "")
	}
	if id == "" {
		return nil, fmt.Errorf("media must have an id or url")
	}

	item := media.New(s.info.ID, id)
	item.Container = lua.LVAsBool(tbl.RawGetString("container"))

	keys := s.table()
	tbl.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || name == "container" {
			return
		}
		key, known := keys.ByName(string(name))
		if !known {
			return
		}
		if key.ID == metakey.Source {
			return
		}
		for _, val := range goValues(v) {
			item.Add(key.ID, val)
		}
	})
	item.Set(metakey.MediaID, id)

	return item, nil
}

// itemArg converts item to a table argument. A nil item becomes nil.
func (s *luaSource) itemArg(item *media.Media) func(*lua.LState) lua.LValue {
	return func(L *lua.LState) lua.LValue {
		if item == nil {
			return lua.LNil
		}

		tbl := L.NewTable()
		keys := s.table()
		for _, k := range item.Keys() {
			name := keys.Name(k)
			switch {
			case name == "":
			case item.Count(k) > 1:
				values := L.NewTable()
				for _, v := range item.GetAll(k) {
					values.Append(luaValue(v))
				}
				tbl.RawSetString(name, values)
			default:
				tbl.RawSetString(name, luaValue(item.Get(k)))
			}
		}
		tbl.RawSetString("id", lua.LString(item.ID))
		tbl.RawSetString("source", lua.LString(item.Source))
		tbl.RawSetString("container", lua.LBool(item.Container))
		return tbl
	}
}

func (s *luaSource) options(opts source.Options) func(*lua.LState) lua.LValue {
	return func(L *lua.LState) lua.LValue {
		tbl := L.NewTable()
		tbl.RawSetString("count", lua.LNumber(opts.Count))
		tbl.RawSetString("skip", lua.LNumber(opts.Skip))
		tbl.RawSetString("flags", lua.LString(opts.Flags.String()))

		keys := L.NewTable()
		for _, name := range s.table().Names(opts.Keys) {
			keys.Append(lua.LString(name))
		}
		tbl.RawSetString("keys", keys)
		return tbl
	}
}
