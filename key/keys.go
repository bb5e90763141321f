// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Source Registry - these keys govern which plugins are loaded and how they are ranked.
const (
	SourcesDefault = "sources.default"
	SourcesRanks   = "sources.ranks"
	SourcesAllow   = "sources.allow"
	SourcesWatch   = "sources.watch"
)

// Search Interaction - these keys tune the search-all mode and query suggestions.
const (
	SearchLimit                = "search.limit"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Launch Mode - these keys configure the non-interactive operation runner.
const (
	LaunchDelay = "launch.delay"
	LaunchCount = "launch.count"
)

// Local Source - these keys configure the builtin filesystem source.
const (
	LocalRoot = "local.root"
)

// Network - these keys shape outgoing provider traffic.
const (
	NetworkRate    = "network.rate"
	NetworkRetries = "network.retries"
)

// Providers is the root of per-provider credential bundles, e.g. providers.jamendo.client_id.
const Providers = "providers"

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// Observability - these keys expose operation metrics.
const (
	MetricsAddress = "metrics.address"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	IconsVariant    = "icons.variant"
)
