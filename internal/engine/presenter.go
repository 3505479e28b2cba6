package engine

import "context"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Notification struct {
	Message  string
	Severity Severity
}

// Presenter is implemented by whatever shows the game to the player. The
// service calls Notify after it has released its lock, so implementations
// may call back into the service. Notify must not block.
type Presenter interface {
	Notify(Notification)
	// Confirm asks a yes/no question. Any error or a false answer cancels
	// the operation that asked.
	Confirm(ctx context.Context, prompt string) (bool, error)
	ShowView(view string)
}

// NopPresenter drops notifications and declines every confirmation.
type NopPresenter struct{}

func (NopPresenter) Notify(Notification) {}

func (NopPresenter) Confirm(context.Context, string) (bool, error) { return false, nil }

func (NopPresenter) ShowView(string) {}
