// Package ui renders short-lived notifications next to a view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/style"
)

// Lifetime is how long a notification stays visible.
const Lifetime = 3 * time.Second

// Level selects how a notification is rendered.
type Level int

const (
	Info Level = iota
	Warning
)

// NotifyMsg shows Text until it expires or another notification replaces it.
type NotifyMsg struct {
	Text  string
	Level Level
}

// clearMsg hides notification seq if it is still the one shown.
type clearMsg struct{ seq int }

// Notify returns a command showing text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg { return NotifyMsg{Text: text} }
}

// Warn returns a command showing text as a warning.
func Warn(text string) tea.Cmd {
	return func() tea.Msg { return NotifyMsg{Text: text, Level: Warning} }
}

// Model holds the current notification.
type Model struct {
	current NotifyMsg
	seq     int
}

// Update handles notification messages and ignores everything else.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotifyMsg:
		m.seq++
		m.current = msg
		seq := m.seq
		return tea.Tick(Lifetime, func(time.Time) tea.Msg { return clearMsg{seq: seq} })
	case clearMsg:
		if msg.seq == m.seq {
			m.current = NotifyMsg{}
		}
	}
	return nil
}

// Text returns the visible notification, or "".
func (m *Model) Text() string {
	return m.current.Text
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.current.Text == "" {
		return content
	}

	var rendered string
	switch m.current.Level {
	case Warning:
		rendered = style.Fg(color.Yellow)(icon.Get(icon.Warn) + " " + m.current.Text)
	default:
		rendered = style.Faint(m.current.Text)
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + rendered
	return strings.Join(lines, "\n")
}
