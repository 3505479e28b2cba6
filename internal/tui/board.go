package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eduquest/internal/engine"
)

// RunBoard runs the quest board until the player quits. pres must be the
// presenter svc was built with.
func RunBoard(ctx context.Context, svc *engine.Service, pres *Presenter, tick time.Duration, out io.Writer) error {
	m := newBoardModel(ctx, svc, pres, tick)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
