// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Medley + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.SourcesDefault, "local", "Source used by the explorer when none is selected.\nType \"medley inspect\" to show available sources")
	register(key.SourcesRanks, []string{}, "Rank overrides as id:rank pairs, e.g. \"jamendo:40\" or \"loc*:-10\".\nExact ids win over patterns")
	register(key.SourcesAllow, []string{}, "Only load the listed source ids.\nEmpty loads every source")
	register(key.SourcesWatch, false, "Reload scripted sources when their files change")
	register(key.SearchLimit, 5, "Items requested from each source in search mode")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.LaunchDelay, 0, "Seconds to wait before a launched operation starts")
	register(key.LaunchCount, source.CountInfinity, "Default item limit for launched operations.\n-1 requests every item")
	register(key.LocalRoot, "", "Root directory of the local source.\nDefaults to the user's music directory")
	register(key.NetworkRate, 5, "Requests per second allowed per host")
	register(key.NetworkRetries, 3, "Attempts made for transient network failures")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.MetricsAddress, "", "Address serving prometheus metrics, e.g. \":9090\".\nEmpty disables the endpoint")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when printing the version")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares, nerd (nerd-font required)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))

// Suggest returns the registered key closest to k, for "did you mean" hints.
func Suggest(k string) (string, bool) {
	best, distance := "", -1
	for name := range Default {
		d := levenshtein.Distance(k, name)
		if distance < 0 || d < distance || (d == distance && name < best) {
			best, distance = name, d
		}
	}
	if distance < 0 || distance > len(k)/2+1 {
		return "", false
	}
	return best, true
}
