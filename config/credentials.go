package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/medley-cli/medley/auth"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/source"
	"github.com/spf13/viper"
)

// Bundle holds the configuration of one provider. Each field resolves from
// providers.<id>.<field> (file or MEDLEY_PROVIDERS_<ID>_<FIELD>) before
// falling back to the system keyring.
type Bundle struct {
	Provider string

	static  map[string]string
	keyring bool
}

// BundleFor returns the live bundle of provider id.
func BundleFor(id string) Bundle {
	return Bundle{Provider: id, keyring: true}
}

// NewBundle returns a bundle backed only by values.
func NewBundle(id string, values map[string]string) Bundle {
	return Bundle{Provider: id, static: maps.Clone(values)}
}

// Path returns the configuration key of field.
func (b Bundle) Path(field string) string {
	return strings.Join([]string{key.Providers, b.Provider, field}, ".")
}

// Get resolves field.
func (b Bundle) Get(field string) (string, bool) {
	if v, ok := b.static[field]; ok && v != "" {
		return v, true
	}

	if b.Provider != "" && b.keyring {
		if v := viper.GetString(b.Path(field)); v != "" {
			return v, true
		}
		if v, ok := auth.Lookup(b.Provider, field); ok && v != "" {
			return v, true
		}
	}

	return "", false
}

// GetOr resolves field, returning fallback when it is unset.
func (b Bundle) GetOr(field, fallback string) string {
	if v, ok := b.Get(field); ok {
		return v
	}
	return fallback
}

// Require returns a *source.ConfigMissingError naming every unset field.
func (b Bundle) Require(fields ...string) error {
	var missing []string
	for _, f := range fields {
		if _, ok := b.Get(f); !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &source.ConfigMissingError{Provider: b.Provider, Fields: missing}
}

// Map resolves the given fields, plus every field set in the configuration file.
func (b Bundle) Map(fields ...string) map[string]string {
	names := slices.Collect(maps.Keys(b.static))
	if b.keyring {
		names = append(names, slices.Collect(maps.Keys(viper.GetStringMapString(key.Providers+"."+b.Provider)))...)
	}
	names = append(names, fields...)

	out := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := b.Get(name); ok {
			out[name] = v
		}
	}
	return out
}

func (b Bundle) String() string {
	return fmt.Sprintf("config(%s)", b.Provider)
}
