// Package tui is the interactive explorer: pick a source, browse or search
// it and look at the media it returns.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medley-cli/medley/dispatch"
	"github.com/medley-cli/medley/loop"
	"github.com/medley-cli/medley/registry"
)

// Options configure the explorer.
type Options struct {
	// Source opens the explorer on this source instead of the source list.
	Source string
}

// Run starts the explorer and blocks until the user quits.
func Run(ctx context.Context, reg *registry.Registry, options *Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := loop.New()
	go func() { _ = l.Run(ctx) }()
	defer l.Quit()

	d := dispatch.New(l, dispatch.WithRegistry(reg), dispatch.WithContext(ctx))
	bubble := newBubble(reg, d, options)
	bubble.done = ctx.Done()
	bubble.listen()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	cancel()
	bubble.cancelAll()
	return err
}
