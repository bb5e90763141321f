package custom

import (
	"bytes"
	"sync"
	"time"

	"github.com/medley-cli/medley/filesystem"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

type compiled struct {
	modTime time.Time
	proto   *lua.FunctionProto
}

var protos sync.Map

// compile returns the bytecode prototype of the script at path, reusing the
// cached one while the file is unchanged.
func compile(path string) (*lua.FunctionProto, error) {
	info, err := filesystem.API().Stat(path)
	if err != nil {
		return nil, err
	}

	if cached, ok := protos.Load(path); ok {
		if c := cached.(compiled); c.modTime.Equal(info.ModTime()) {
			return c.proto, nil
		}
	}

	content, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return nil, err
	}

	chunk, err := parse.Parse(bytes.NewReader(content), path)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	protos.Store(path, compiled{modTime: info.ModTime(), proto: proto})
	return proto, nil
}

// run executes the script at path in L.
func run(L *lua.LState, path string) error {
	proto, err := compile(path)
	if err != nil {
		return err
	}
	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}
