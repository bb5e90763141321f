package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/inspect"
	"github.com/medley-cli/medley/internal/ui"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/open"
	"github.com/medley-cli/medley/provider/bookmarks"
	"github.com/medley-cli/medley/query"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/medley-cli/medley/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type (
	eventMsg          dispatch.Event
	sourcesChangedMsg string
)

// listen forwards registry changes, such as scripts reloaded by the watcher, to the UI.
func (b *statefulBubble) listen() {
	forward := func(format string) registry.Listener {
		return func(e *registry.Entry) {
			select {
			case b.changes <- fmt.Sprintf(format, e.ID()):
			default:
			}
		}
	}
	b.reg.OnSourceAdded(forward("%s added"))
	b.reg.OnSourceRemoved(forward("%s removed"))
}

func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-b.events)
	}
}

func (b *statefulBubble) waitForChange() tea.Cmd {
	return func() tea.Msg {
		return sourcesChangedMsg(<-b.changes)
	}
}

// deliver runs on the event loop and hands the event to the UI goroutine.
// Events arriving after the program exited are dropped.
func (b *statefulBubble) deliver(ev dispatch.Event) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

func (b *statefulBubble) handleEvent(ev dispatch.Event) tea.Cmd {
	h, ok := b.handlers[ev.Operation.ID]
	if ev.Terminal() {
		delete(b.handlers, ev.Operation.ID)
		delete(b.ops, ev.Operation.ID)
	}
	if !ok {
		return nil
	}
	return h(ev)
}

// invoke starts an operation whose events go to h.
func (b *statefulBubble) invoke(entry *registry.Entry, kind caps.Op, params dispatch.Params, h handler) (*dispatch.Operation, error) {
	op, err := b.dispatcher.Invoke(entry, kind, params, b.deliver)
	if err != nil {
		return nil, err
	}
	b.handlers[op.ID] = h
	b.ops[op.ID] = op
	return op, nil
}

// cancelCurrent stops the operation filling the item list.
func (b *statefulBubble) cancelCurrent() {
	if b.current != nil {
		b.current.Cancel()
		delete(b.handlers, b.current.ID)
		b.current = nil
	}
	b.stopLoading()
}

func (b *statefulBubble) cancelAll() {
	for _, op := range b.ops {
		op.Cancel()
	}
	clear(b.handlers)
	clear(b.ops)
	b.current = nil
}

func (b *statefulBubble) loadSources() {
	var items []list.Item
	for e := range b.reg.List(caps.None) {
		if e.Supports(caps.Browse) || e.Supports(caps.Search) {
			items = append(items, &listItem{internal: e})
		}
	}
	b.sourcesC.SetItems(items)
}

func (b *statefulBubble) selectSource(e *registry.Entry) tea.Cmd {
	b.selectedSource = e
	b.path.Clear()
	b.container = nil

	switch {
	case e.Supports(caps.Browse):
		return b.browse(nil)
	case e.Supports(caps.Search):
		return b.openSearch()
	default:
		return ui.Warn(fmt.Sprintf("%s can neither browse nor search", e.ID()))
	}
}

func (b *statefulBubble) openSearch() tea.Cmd {
	if !b.selectedSource.Supports(caps.Search) {
		return ui.Warn(fmt.Sprintf("%s cannot search", b.selectedSource.ID()))
	}
	b.inputC.SetValue("")
	b.inputC.Placeholder = "Search " + b.selectedSource.Info.Name
	b.searchSuggestion = mo.None[string]()
	b.newState(searchState)
	b.inputC.Focus()
	return nil
}

// stream fills the item list from a streaming operation.
func (b *statefulBubble) stream(kind caps.Op, params dispatch.Params, title string) tea.Cmd {
	b.cancelCurrent()
	b.itemsC.ResetFilter()
	b.itemsC.ResetSelected()
	b.itemsC.SetItems(nil)
	b.itemsC.Title = title
	b.remaining = source.RemainingUnknown

	params.Options = source.DefaultOptions()
	op, err := b.invoke(b.selectedSource, kind, params, b.onStreamEvent)
	if err != nil {
		b.raiseError(err)
		return nil
	}
	b.current = op
	b.newState(itemsState)
	return b.startLoading()
}

func (b *statefulBubble) onStreamEvent(ev dispatch.Event) tea.Cmd {
	switch ev.Type {
	case dispatch.Item:
		b.remaining = ev.Remaining
		return b.itemsC.InsertItem(len(b.itemsC.Items()), &listItem{internal: ev.Item})
	case dispatch.Done:
		b.current = nil
		b.stopLoading()
		return b.itemsC.NewStatusMessage(style.Faint(fmt.Sprintf("%d loaded", len(b.itemsC.Items()))))
	case dispatch.Error:
		b.current = nil
		b.stopLoading()
		if len(b.itemsC.Items()) == 0 {
			b.raiseError(ev.Err)
			return nil
		}
		return ui.Warn(ev.Err.Error())
	case dispatch.Cancel:
		b.current = nil
		b.stopLoading()
	}
	return nil
}

func (b *statefulBubble) browse(container *media.Media) tea.Cmd {
	title := b.selectedSource.Info.Name
	if container != nil {
		title = lo.CoalesceOrEmpty(container.Title(), container.ID)
	}
	return b.stream(caps.Browse, dispatch.Params{Container: container}, title)
}

func (b *statefulBubble) search(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if err := query.Remember(text, 1); err != nil {
		log.Warn(err)
	}
	b.path.Clear()
	b.container = nil
	return b.stream(caps.Search, dispatch.Params{Text: text}, fmt.Sprintf("%s: %s", b.selectedSource.Info.Name, text))
}

// enter opens a container or shows the details of an item.
func (b *statefulBubble) enter(m *media.Media) tea.Cmd {
	if m.Container && b.selectedSource.Supports(caps.Browse) {
		b.path.Push(b.container)
		b.container = m
		return b.browse(m)
	}
	return b.showDetails(m)
}

// leaveContainer goes one level up, or back to the previous screen at the root.
func (b *statefulBubble) leaveContainer() tea.Cmd {
	b.cancelCurrent()
	if b.path.Len() == 0 {
		b.previousState()
		return nil
	}
	b.container = b.path.Pop()
	return b.browse(b.container)
}

// showDetails displays m, completed by METADATA or RESOLVE when the source offers them.
func (b *statefulBubble) showDetails(m *media.Media) tea.Cmd {
	b.details = detailsView{title: lo.CoalesceOrEmpty(m.Title(), m.ID), item: m}
	b.newState(detailsState)

	var (
		kind   caps.Op
		params = dispatch.Params{Options: source.DefaultOptions()}
	)
	switch {
	case b.selectedSource.Supports(caps.Metadata) && m.ID != "":
		kind, params.ID = caps.Metadata, m.ID
	case b.selectedSource.Supports(caps.Resolve):
		kind, params.Media = caps.Resolve, m.Clone()
	default:
		return nil
	}

	_, err := b.invoke(b.selectedSource, kind, params, func(ev dispatch.Event) tea.Cmd {
		if b.details.item != m {
			return nil
		}
		b.details.pending = false

		switch ev.Type {
		case dispatch.Done:
			if ev.Item != nil {
				full := ev.Item.Clone()
				full.Merge(m)
				b.details.item = full
			}
		case dispatch.Error:
			return ui.Warn(ev.Err.Error())
		}
		return nil
	})
	if err != nil {
		return ui.Warn(err.Error())
	}
	b.details.pending = true
	return b.spinnerC.Tick
}

func (b *statefulBubble) showReport(e *registry.Entry) tea.Cmd {
	r, err := inspect.Describe(b.reg, e.ID())
	if err != nil {
		return ui.Warn(err.Error())
	}

	var sb strings.Builder
	if err := inspect.RenderReport(&sb, r, b.width); err != nil {
		return ui.Warn(err.Error())
	}
	b.details = detailsView{title: r.Name, report: sb.String()}
	b.newState(detailsState)
	return nil
}

func (b *statefulBubble) remove(m *media.Media, index int) tea.Cmd {
	if !b.selectedSource.Supports(caps.Remove) {
		return ui.Warn(fmt.Sprintf("%s cannot remove media", b.selectedSource.ID()))
	}

	_, err := b.invoke(b.selectedSource, caps.Remove, dispatch.Params{Media: m}, func(ev dispatch.Event) tea.Cmd {
		switch ev.Type {
		case dispatch.Done:
			if index < len(b.itemsC.Items()) {
				if it, ok := b.itemsC.Items()[index].(*listItem); ok && it.internal == m {
					b.itemsC.RemoveItem(index)
				}
			}
			return ui.Notify("removed " + lo.CoalesceOrEmpty(m.Title(), m.ID))
		case dispatch.Error:
			return ui.Warn(ev.Err.Error())
		}
		return nil
	})
	if err != nil {
		return ui.Warn(err.Error())
	}
	return nil
}

func (b *statefulBubble) bookmark(m *media.Media) tea.Cmd {
	entry, err := b.reg.Lookup(bookmarks.ID)
	if err != nil {
		return ui.Warn("bookmarks are not loaded")
	}

	item := m.Clone()
	if item.URL() == "" && !item.Container {
		return ui.Warn("only media with a url can be bookmarked")
	}

	kind := caps.Store
	if !entry.Supports(kind) {
		return ui.Warn(source.Unsupported(entry.ID(), kind).Error())
	}

	_, err = b.invoke(entry, kind, dispatch.Params{Media: item}, func(ev dispatch.Event) tea.Cmd {
		switch ev.Type {
		case dispatch.Done:
			return ui.Notify("bookmarked " + lo.CoalesceOrEmpty(m.Title(), m.URL()))
		case dispatch.Error:
			if errors.Is(ev.Err, source.ErrInvalidParams) {
				return ui.Warn("cannot bookmark this item")
			}
			return ui.Warn(ev.Err.Error())
		}
		return nil
	})
	if err != nil {
		return ui.Warn(err.Error())
	}
	return nil
}

func (b *statefulBubble) openURL(m *media.Media) tea.Cmd {
	url := m.URL()
	if url == "" {
		return ui.Warn("this item has no url")
	}

	if err := open.Start(url); err != nil {
		log.Warnf("open %s: %v", url, err)
		return ui.Warn(err.Error())
	}
	return ui.Notify("opened " + url)
}
