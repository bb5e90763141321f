// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// Script Function Identifiers - these constants name the global functions a Lua source may define.
// Each defined function enables the matching capability.
const (
	SearchFn   = "Search"
	BrowseFn   = "Browse"
	QueryFn    = "Query"
	ResolveFn  = "Resolve"
	MetadataFn = "Metadata"
	StoreFn    = "Store"
	RemoveFn   = "Remove"
)

// Script Globals - these identify the tables exchanged between the host and a Lua source.
const (
	SourceTable = "Source"
	ConfigTable = "Config"
)

// SourceTemplate is a Go text/template for scaffolding new Lua source files.
const SourceTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias media { id: string, title: string, url: string|nil, container: boolean|nil, artist: string|nil, album: string|nil }
---@alias options { count: number, skip: number, keys: string[] }


----- SOURCE -----
{{ .SourceTable }} = {
	id = "{{ .ID }}",
	name = "{{ .Name }}",
	description = "",
	rank = 0,
	keys = { "id", "title", "url" },
	writable_keys = {},
	requires = {},
}
--- END SOURCE ---



----- MAIN -----

--- Searches for media matching the given text.
-- @param text string Text to search for
-- @param options options Operation options
-- @return media[] Table of media
function {{ .SearchFn }}(text, options)
	return {}
end


--- Lists the children of a container. container is nil for the root.
-- @param container media|nil Container to browse
-- @param options options Operation options
-- @return media[] Table of media
function {{ .BrowseFn }}(container, options)
	return {}
end

--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`
