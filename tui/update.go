package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/internal/ui"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/query"
	"github.com/medley-cli/medley/registry"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case eventMsg:
		return b, tea.Batch(cmd, b.handleEvent(dispatch.Event(msg)), b.waitForEvent())
	case sourcesChangedMsg:
		b.loadSources()
		return b, tea.Batch(cmd, ui.Notify(string(msg)), b.waitForChange())
	case spinner.TickMsg:
		if b.loading || b.state == detailsState {
			var tick tea.Cmd
			b.spinnerC, tick = b.spinnerC.Update(msg)
			cmd = tea.Batch(cmd, tick)
		}
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			b.cancelAll()
			return b, tea.Quit
		}
	}

	var next tea.Cmd
	switch b.state {
	case sourcesState:
		next = b.updateSources(msg)
	case searchState:
		next = b.updateSearch(msg)
	case itemsState:
		next = b.updateItems(msg)
	case detailsState:
		next = b.updateDetails(msg)
	case errorState:
		next = b.updateError(msg)
	}

	return b, tea.Batch(cmd, next)
}

func filtering(l *list.Model) bool {
	return l.FilterState() == list.Filtering
}

func (b *statefulBubble) updateSources(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !filtering(&b.sourcesC) {
		entry, selected := selectedOf[*registry.Entry](&b.sourcesC)

		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.cancelAll()
			return tea.Quit
		case bubblesKey.Matches(msg, b.keymap.confirm) && selected:
			return b.selectSource(entry)
		case bubblesKey.Matches(msg, b.keymap.browse) && selected:
			b.selectedSource = entry
			b.path.Clear()
			b.container = nil
			return b.browse(nil)
		case bubblesKey.Matches(msg, b.keymap.search) && selected:
			b.selectedSource = entry
			return b.openSearch()
		case bubblesKey.Matches(msg, b.keymap.inspect) && selected:
			b.selectedSource = entry
			return b.showReport(entry)
		}
	}

	var cmd tea.Cmd
	b.sourcesC, cmd = b.sourcesC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateSearch(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.inputC.Blur()
			b.previousState()
			return nil
		case bubblesKey.Matches(msg, b.keymap.confirm):
			b.inputC.Blur()
			return b.search(b.inputC.Value())
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion):
			if s, ok := b.searchSuggestion.Get(); ok {
				b.inputC.SetValue(s)
				b.inputC.CursorEnd()
			}
			return nil
		}
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)
	b.searchSuggestion = query.Suggest(b.inputC.Value())
	return cmd
}

func (b *statefulBubble) updateItems(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && !filtering(&b.itemsC) {
		item, selected := selectedOf[*media.Media](&b.itemsC)

		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.cancelAll()
			return tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.itemsC.FilterState() == list.FilterApplied {
				b.itemsC.ResetFilter()
				return nil
			}
			return b.leaveContainer()
		case bubblesKey.Matches(msg, b.keymap.cancel):
			b.cancelCurrent()
			return nil
		case bubblesKey.Matches(msg, b.keymap.confirm) && selected:
			return b.enter(item)
		case bubblesKey.Matches(msg, b.keymap.details) && selected:
			return b.showDetails(item)
		case bubblesKey.Matches(msg, b.keymap.bookmark) && selected:
			return b.bookmark(item)
		case bubblesKey.Matches(msg, b.keymap.openURL) && selected:
			return b.openURL(item)
		case bubblesKey.Matches(msg, b.keymap.remove) && selected:
			return b.remove(item, b.itemsC.Index())
		}
	}

	var cmd tea.Cmd
	b.itemsC, cmd = b.itemsC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateDetails(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.details = detailsView{}
			b.previousState()
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.cancelAll()
			return tea.Quit
		case bubblesKey.Matches(msg, b.keymap.bookmark) && b.details.item != nil:
			return b.bookmark(b.details.item)
		case bubblesKey.Matches(msg, b.keymap.openURL) && b.details.item != nil:
			return b.openURL(b.details.item)
		}
	}
	return nil
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.cancelAll()
			return tea.Quit
		}
	}
	return nil
}

// selectedOf returns the selected list element when it wraps a T.
func selectedOf[T any](l *list.Model) (T, bool) {
	var zero T
	it, ok := l.SelectedItem().(*listItem)
	if !ok {
		return zero, false
	}
	v, ok := it.internal.(T)
	return v, ok
}
