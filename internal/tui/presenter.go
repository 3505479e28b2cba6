package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"eduquest/internal/engine"
)

type notifyMsg engine.Notification

type viewMsg string

// confirmMsg carries a question from a service call waiting on the player.
type confirmMsg struct {
	prompt string
	reply  chan<- bool
}

// Presenter forwards service events to the board. Service calls run inside
// tea.Cmds, so Confirm may block its caller until the player answers.
type Presenter struct {
	events chan tea.Msg
}

func NewPresenter() *Presenter {
	return &Presenter{events: make(chan tea.Msg, 64)}
}

func (p *Presenter) Notify(n engine.Notification) {
	select {
	case p.events <- notifyMsg(n):
	default:
	}
}

func (p *Presenter) ShowView(view string) {
	select {
	case p.events <- viewMsg(view):
	default:
	}
}

func (p *Presenter) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	select {
	case p.events <- confirmMsg{prompt: prompt, reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// listen waits for the next event.
func (p *Presenter) listen() tea.Cmd {
	return func() tea.Msg {
		return <-p.events
	}
}
