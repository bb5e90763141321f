package config

import (
	"path"
	"strconv"
	"strings"

	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/log"
	"github.com/spf13/viper"
)

type rankPattern struct {
	pattern string
	rank    int
}

// Ranks maps source ids to rank overrides.
type Ranks struct {
	exact    map[string]int
	patterns []rankPattern
}

// ParseRanks reads "id:rank" specs. Ids may be glob patterns.
// Malformed specs are logged and skipped.
func ParseRanks(specs []string) Ranks {
	r := Ranks{exact: make(map[string]int)}

	for _, spec := range specs {
		for _, item := range strings.Split(spec, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			id, value, ok := strings.Cut(item, ":")
			id = strings.TrimSpace(id)
			if !ok || id == "" {
				log.Warnf("malformed rank specification %q", item)
				continue
			}

			rank, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				log.Warnf("malformed rank specification %q: %v", item, err)
				continue
			}

			if strings.ContainsAny(id, "*?[") {
				if _, err := path.Match(id, ""); err != nil {
					log.Warnf("malformed rank pattern %q: %v", id, err)
					continue
				}
				r.patterns = append(r.patterns, rankPattern{pattern: id, rank: rank})
				continue
			}
			r.exact[id] = rank
		}
	}

	return r
}

// ConfiguredRanks parses sources.ranks.
func ConfiguredRanks() Ranks {
	return ParseRanks(viper.GetStringSlice(key.SourcesRanks))
}

// Rank returns the configured rank of id, preferring exact ids over patterns.
func (r Ranks) Rank(id string) (int, bool) {
	if rank, ok := r.exact[id]; ok {
		return rank, true
	}
	for _, p := range r.patterns {
		if ok, _ := path.Match(p.pattern, id); ok {
			return p.rank, true
		}
	}
	return 0, false
}

// Apply returns the configured rank of id, or declared.
func (r Ranks) Apply(id string, declared int) int {
	if rank, ok := r.Rank(id); ok {
		return rank
	}
	return declared
}
