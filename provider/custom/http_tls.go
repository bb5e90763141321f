package custom

import (
	"context"
	"errors"
	"net/http"

	"github.com/medley-cli/medley/internal/cache"
	"github.com/medley-cli/medley/network"
	lua "github.com/yuin/gopher-lua"
)

// registerHTTPTLS installs the http_tls global:
//
//	http_tls.get(url [, headers])  -> body
//	http_tls.request(options)      -> { status, body }
//
// Requests present a browser TLS fingerprint and follow the per-host rate
// limit. request accepts method, url, headers, body and cache fields.
func registerHTTPTLS(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(httpTLSGet))
	L.SetField(mod, "request", L.NewFunction(httpTLSRequest))
	L.SetGlobal("http_tls", mod)
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func stateContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func headersOf(tbl *lua.LTable) map[string]string {
	headers := make(map[string]string)
	if tbl == nil {
		return headers
	}
	tbl.ForEach(func(k, v lua.LValue) {
		headers[k.String()] = v.String()
	})
	return headers
}

func httpTLSGet(L *lua.LState) int {
	req := network.Request{
		Method:  http.MethodGet,
		URL:     L.CheckString(1),
		Headers: headersOf(L.OptTable(2, nil)),
	}

	resp, err := network.Fetch(stateContext(L), network.TLSClient, req)
	if err != nil {
		L.RaiseError("http_tls.get: %s", err.Error())
		return 0
	}

	L.Push(lua.LString(resp.Body))
	return 1
}

func httpTLSRequest(L *lua.LState) int {
	opts := L.CheckTable(1)

	req := network.Request{
		Method: getString(opts, "method", http.MethodGet),
		URL:    getString(opts, "url", ""),
		Body:   getString(opts, "body", ""),
	}
	if req.URL == "" {
		L.RaiseError("http_tls.request: url is required")
		return 0
	}
	if tbl, ok := opts.RawGetString("headers").(*lua.LTable); ok {
		req.Headers = headersOf(tbl)
	}

	useCache := lua.LVAsBool(opts.RawGetString("cache"))
	key := cache.Key(req.Method, req.URL, req.Body)

	var out cachedResponse
	if !useCache || !cache.Read(key, &out) {
		resp, err := network.Fetch(stateContext(L), network.TLSClient, req)
		var status *network.StatusError
		switch {
		case err == nil:
		case errors.As(err, &status) && resp != nil:
		default:
			L.RaiseError("http_tls.request: %s", err.Error())
			return 0
		}

		out = cachedResponse{Status: resp.Status, Body: string(resp.Body)}
		if useCache && resp.Status == http.StatusOK {
			_ = cache.Write(key, out)
		}
	}

	result := L.NewTable()
	L.SetField(result, "status", lua.LNumber(out.Status))
	L.SetField(result, "body", lua.LString(out.Body))
	L.Push(result)
	return 1
}
