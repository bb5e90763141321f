// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Medley is the canonical application identifier used for filesystem paths and CLI branding.
	Medley = "medley"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the default HTTP User-Agent string used for network requests to external providers.
	UserAgent = "medley/" + Version + " (+https://github.com/medley-cli/medley)"

	// BrowserUserAgent is sent by the fingerprinted TLS client used by scripted sources.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Builtin is the origin reported by sources compiled into the binary.
	Builtin = "builtin"
)

// Build metadata, set with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Repository is the project's GitHub path.
const Repository = "medley-cli/medley"
