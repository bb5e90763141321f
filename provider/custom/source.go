package custom

import (
	"context"
	"fmt"
	"sync"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metakey"
	"github.com/medley-cli/medley/source"
	lua "github.com/yuin/gopher-lua"
)

// functions maps script globals to the operation they enable.
var functions = map[string]caps.Op{
	constant.SearchFn:   caps.Search,
	constant.BrowseFn:   caps.Browse,
	constant.QueryFn:    caps.Query,
	constant.ResolveFn:  caps.Resolve,
	constant.MetadataFn: caps.Metadata,
	constant.StoreFn:    caps.Store | caps.StoreParent,
	constant.RemoveFn:   caps.Remove,
}

// luaSource implements every handler interface; Operations narrows them to
// the functions the script defines.
type luaSource struct {
	// mu guards state, which is not safe for concurrent use.
	mu    sync.Mutex
	state *lua.LState

	keysMu sync.RWMutex
	keys   *metakey.Table

	info      source.Info
	ops       caps.Op
	supported []string
	writable  []string
	requires  []string
}

func (s *luaSource) Info() source.Info { return s.info }
func (s *luaSource) Operations() caps.Op { return s.ops }
func (s *luaSource) SupportedKeys() []string { return s.supported }
func (s *luaSource) WritableKeys() []string { return s.writable }
func (s *luaSource) Requires() []string { return s.requires }

func (s *luaSource) BindKeys(table *metakey.Table) {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	s.keys = table
}

func (s *luaSource) table() *metakey.Table {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return s.keys
}

func (s *luaSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
	return nil
}

// call runs the global fn bound to ctx, so cancellation interrupts the script.
// convert runs while the lock is held, since Lua values belong to the state.
func (s *luaSource) call(ctx context.Context, fn string, convert func(lua.LValue) error, args ...func(*lua.LState) lua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	L := s.state
	luaFn := L.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return fmt.Errorf("function %s is not defined", fn)
	}

	L.SetContext(ctx)
	defer L.RemoveContext()

	values := make([]lua.LValue, len(args))
	for i, arg := range args {
		values[i] = arg(L)
	}

	if err := L.CallByParam(lua.P{Fn: luaFn, NRet: 1, Protect: true}, values...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	ret := L.Get(-1)
	L.Pop(1)

	if convert == nil {
		return nil
	}
	return convert(ret)
}

func (s *luaSource) stream(ctx context.Context, fn string, opts source.Options, emit source.Emitter, first func(*lua.LState) lua.LValue) error {
	var items []*media.Media
	err := s.call(ctx, fn, func(ret lua.LValue) error {
		var err error
		items, err = s.itemsFromValue(ret)
		return err
	}, first, s.options(opts))
	if err != nil {
		return err
	}

	for i, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !emit(item, len(items)-i-1) {
			return nil
		}
	}
	return nil
}

func (s *luaSource) single(ctx context.Context, fn string, fallback *media.Media, args ...func(*lua.LState) lua.LValue) (*media.Media, error) {
	var item *media.Media
	err := s.call(ctx, fn, func(ret lua.LValue) error {
		if ret == lua.LNil && fallback != nil {
			item = fallback
			return nil
		}
		tbl, ok := ret.(*lua.LTable)
		if !ok {
			return fmt.Errorf("%s returned %s, expected table", fn, ret.Type())
		}
		var err error
		item, err = s.itemFromTable(tbl)
		return err
	}, args...)
	return item, err
}

func (s *luaSource) Search(ctx context.Context, text string, opts source.Options, emit source.Emitter) error {
	return s.stream(ctx, constant.SearchFn, opts, emit, luaString(text))
}

func (s *luaSource) Browse(ctx context.Context, container *media.Media, opts source.Options, emit source.Emitter) error {
	return s.stream(ctx, constant.BrowseFn, opts, emit, s.itemArg(container))
}

func (s *luaSource) Query(ctx context.Context, query string, opts source.Options, emit source.Emitter) error {
	return s.stream(ctx, constant.QueryFn, opts, emit, luaString(query))
}

func (s *luaSource) Resolve(ctx context.Context, item *media.Media, opts source.Options) (*media.Media, error) {
	resolved, err := s.single(ctx, constant.ResolveFn, item, s.itemArg(item), s.options(opts))
	if err != nil || resolved == item {
		return resolved, err
	}
	resolved.Merge(item)
	return resolved, nil
}

func (s *luaSource) Metadata(ctx context.Context, id string, opts source.Options) (*media.Media, error) {
	item, err := s.single(ctx, constant.MetadataFn, nil, luaString(id), s.options(opts))
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = id
	}
	return item, nil
}

func (s *luaSource) Store(ctx context.Context, item *media.Media) (*media.Media, error) {
	return s.single(ctx, constant.StoreFn, item, s.itemArg(item), s.itemArg(nil))
}

func (s *luaSource) StoreIn(ctx context.Context, parent, item *media.Media) (*media.Media, error) {
	return s.single(ctx, constant.StoreFn, item, s.itemArg(item), s.itemArg(parent))
}

func (s *luaSource) Remove(ctx context.Context, item *media.Media) error {
	return s.call(ctx, constant.RemoveFn, nil, s.itemArg(item))
}

func luaString(v string) func(*lua.LState) lua.LValue {
	return func(*lua.LState) lua.LValue { return lua.LString(v) }
}
