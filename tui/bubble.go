package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/internal/ui"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/util"
	"github.com/samber/mo"
)

// handler consumes the events of one operation.
type handler func(dispatch.Event) tea.Cmd

// statefulBubble is the explorer model.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	keymap        *statefulKeymap

	spinnerC spinner.Model
	inputC   textinput.Model
	sourcesC list.Model
	itemsC   list.Model
	helpC    help.Model

	reg        *registry.Registry
	dispatcher *dispatch.Dispatcher
	events     chan dispatch.Event
	changes    chan string
	// done is closed once the program has exited and nobody reads events.
	done <-chan struct{}

	// handlers routes events by operation id. Events of unknown operations are dropped.
	handlers map[string]handler
	ops      map[string]*dispatch.Operation
	current  *dispatch.Operation

	selectedSource *registry.Entry
	container      *media.Media
	path           util.Stack[*media.Media]
	details        detailsView

	loading          bool
	remaining        int
	lastError        error
	width, height    int
	searchSuggestion mo.Option[string]
	notifier         *ui.Model

	options *Options
}

// detailsView is either a media item or a rendered source report.
type detailsView struct {
	title   string
	item    *media.Media
	report  string
	pending bool
}

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	if b.state != errorState {
		b.statesHistory.Push(b.state)
	}
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	for _, l := range []*list.Model{&b.sourcesC, &b.itemsC} {
		l.SetSize(listWidth, listHeight)
		l.Help.Width = listWidth
	}

	b.inputC.Width = listWidth
	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	return tea.Batch(b.itemsC.StartSpinner(), b.spinnerC.Tick)
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
	b.itemsC.StopSpinner()
}

func newBubble(reg *registry.Registry, d *dispatch.Dispatcher, options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		reg:           reg,
		dispatcher:    d,
		events:        make(chan dispatch.Event, 256),
		changes:       make(chan string, 16),
		handlers:      make(map[string]handler),
		ops:           make(map[string]*dispatch.Operation),
		notifier:      &ui.Model{},
		options:       options,
	}

	makeList := func(title string, background lipgloss.Color) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.Title = style.Colored(color.New("230"), background).Padding(0, 1)
		listC.Styles.NoItems = paddingStyle
		listC.StatusMessageLifetime = 5 * time.Second
		listC.SetShowPagination(false)
		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.inputC = textinput.New()
	bubble.inputC.CharLimit = 120
	bubble.inputC.Prompt = "> "

	bubble.sourcesC = makeList("Sources", style.AccentColor)
	bubble.sourcesC.SetStatusBarItemName("source", "sources")

	bubble.itemsC = makeList("Media", style.SecondaryColor)
	bubble.itemsC.SetStatusBarItemName("item", "items")

	if w := util.TerminalWidth(0); w > 0 {
		bubble.resize(w, 24)
	}

	return &bubble
}
