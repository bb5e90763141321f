package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/style"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/cast"
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case sourcesState:
		output = listExtraPaddingStyle.Render(b.sourcesC.View())
	case searchState:
		output = b.viewSearch()
	case itemsState:
		output = listExtraPaddingStyle.Render(b.itemsC.View())
	case detailsState:
		output = b.viewDetails()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search " + b.selectedSource.Info.Name),
		"",
		b.inputC.View(),
	}

	if s, ok := b.searchSuggestion.Get(); ok && s != b.inputC.Value() {
		lines = append(lines, "", style.Faint("tab: "+s))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewDetails() string {
	lines := []string{style.Title(b.details.title), ""}

	if b.details.report != "" {
		lines = append(lines, strings.Split(strings.TrimRight(b.details.report, "\n"), "\n")...)
		return b.renderLines(true, lines)
	}

	m := b.details.item
	if m == nil {
		return b.renderLines(true, lines)
	}

	fields := m.Render(b.reg.Keys())
	names := slices.Sorted(maps.Keys(fields))

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	for _, name := range names {
		label := style.Fg(style.SecondaryColor)(fmt.Sprintf("%*s", width, name))
		raw := fmt.Sprint(fields[name])
		if vs, ok := fields[name].([]any); ok {
			raw = strings.Join(cast.ToStringSlice(vs), ", ")
		}
		value := wrap.String(raw, max(b.width-width-2, 20))
		value = strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", width+2))
		lines = append(lines, label+"  "+value)
	}

	if b.details.pending {
		lines = append(lines, "", b.spinnerC.View()+style.Faint(" fetching details"))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewError() string {
	msg := wrap.String(b.lastError.Error(), max(b.width, 20))
	return b.renderLines(true, []string{
		style.ErrorTitle("Error"),
		"",
		icon.Get(icon.Fail) + " " + style.Bold("Something went wrong"),
		"",
		msg,
	})
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := strings.Count(strings.Join(lines, "\n"), "\n") + 1
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
