package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"chatpop/pkg/bubble"
	"chatpop/pkg/bus"
	"chatpop/pkg/preview"
	"chatpop/pkg/respond"
	"chatpop/pkg/store"
)

// Deps wires the screens to the rest of the app. Previews may be nil to
// disable outgoing link previews.
type Deps struct {
	Store     *store.Store
	Events    *bus.Bus
	Responder *respond.Orchestrator
	Registry  *bubble.Registry
	Previews  *preview.Fetcher

	// OpenChat names a conversation to open directly, skipping the inbox.
	// An unknown name falls back to the inbox.
	OpenChat string
}

// Run starts the inbox and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	model := newModel(ctx, deps)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	model.unsubscribe()
	return err
}
