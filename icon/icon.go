// Package icon renders status symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/medley-cli/medley/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns every supported icon variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Warn
	Container
	Item
	Cancelled
)

type iconDef struct {
	emoji, nerd, plain, squares string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:   {emoji: "🎉", nerd: "", plain: "+", squares: "🟩"},
	Fail:      {emoji: "💀", nerd: "", plain: "x", squares: "🟥"},
	Warn:      {emoji: "⚠️", nerd: "", plain: "!", squares: "🟨"},
	Container: {emoji: "📁", nerd: "", plain: "/", squares: "🟦"},
	Item:      {emoji: "🎵", nerd: "", plain: "-", squares: "⬜"},
	Cancelled: {emoji: "✋", nerd: "", plain: "~", squares: "🟫"},
}

// Get returns the rendered symbol for i, or "" for unknown icons and variants.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.get()
}
