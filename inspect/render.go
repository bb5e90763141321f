package inspect

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/medley-cli/medley/style"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

var (
	heading = style.Fg(style.AccentColor)
	label   = style.Fg(style.SecondaryColor)
)

// RenderSummaries writes one "<id>: rank <n>, <operations>" line per source.
func RenderSummaries(w io.Writer, summaries []Summary) error {
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%s: rank %d, %s\n", s.ID, s.Rank, s.Operations); err != nil {
			return err
		}
	}
	return nil
}

// RenderReport writes r as a human readable report wrapped to width columns.
func RenderReport(w io.Writer, r *Report, width int) error {
	var b strings.Builder

	field := func(name, value string) {
		if value == "" {
			value = style.Faint("none")
		}
		value = strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", 16))
		fmt.Fprintf(&b, "  %s %s\n", label(fmt.Sprintf("%12s:", name)), value)
	}
	list := func(items []string) {
		if len(items) == 0 {
			b.WriteString(indent.String(style.Faint("none"), 4) + "\n")
			return
		}
		wrapped := wordwrap.String(strings.Join(items, ", "), max(width-4, 20))
		b.WriteString(indent.String(wrapped, 4) + "\n")
	}

	b.WriteString(heading("Plugin Details") + "\n")
	field("Identifier", r.Plugin)
	field("Origin", r.Origin)
	field("Rank", fmt.Sprint(r.Rank))
	for _, k := range slices.Sorted(maps.Keys(r.Info)) {
		field(k, r.Info[k])
	}
	b.WriteString("\n")

	b.WriteString(heading("Source Details") + "\n")
	field("Identifier", r.ID)
	field("Name", r.Name)
	field("Description", wordwrap.String(r.Description, max(width-16, 20)))
	if len(r.Tags) > 0 {
		field("Tags", strings.Join(r.Tags, ", "))
	}
	b.WriteString("\n")

	b.WriteString(heading("Supported operations") + "\n")
	for _, op := range r.Operations {
		fmt.Fprintf(&b, "  %-14s %s\n", op.Name, style.Faint(op.Description))
	}
	b.WriteString("\n")

	b.WriteString(heading("Supported keys") + "\n")
	b.WriteString("  " + label("Readable") + "\n")
	list(r.Readable)
	b.WriteString("  " + label("Writable") + "\n")
	list(r.Writable)

	_, err := io.WriteString(w, b.String())
	return err
}
