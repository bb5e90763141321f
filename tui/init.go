package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Init() tea.Cmd {
	b.loadSources()
	cmds := []tea.Cmd{textinput.Blink, b.waitForEvent(), b.waitForChange()}

	if id := b.options.Source; id != "" {
		e, err := b.reg.Lookup(id)
		if err != nil {
			b.raiseError(fmt.Errorf("open %s: %w", id, err))
			return tea.Batch(cmds...)
		}
		cmds = append(cmds, b.selectSource(e))
	}

	return tea.Batch(cmds...)
}
