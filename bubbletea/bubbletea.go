// Package bubbletea provides a Bubble Tea TUI for refining a trip itinerary.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/wayfare"
)

var _ Planner = (*wayfare.Session)(nil)

// Planner is the part of a session the TUI drives. *wayfare.Session
// implements it.
type Planner interface {
	State() wayfare.State
	Itinerary() string
	Refine(ctx context.Context, text string) (string, error)
	Terminate()
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	fm, _ := final.(Model)
	return fm, nil
}

// RefineDoneMsg carries the result of a refinement back to the model.
type RefineDoneMsg struct {
	Request   string
	Itinerary string
	Err       error
}
