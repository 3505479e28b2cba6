package root

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

// cliPresenter prints notifications as styled lines and asks confirmations
// on the terminal.
type cliPresenter struct {
	out io.Writer
	in  *bufio.Reader
	yes bool
}

func newCLIPresenter(out io.Writer, in io.Reader, yes bool) *cliPresenter {
	return &cliPresenter{out: out, in: bufio.NewReader(in), yes: yes}
}

func (p *cliPresenter) Notify(n engine.Notification) {
	// Failures come back as the command's error and are printed once by Execute.
	if n.Severity == engine.SeverityError {
		return
	}
	fmt.Fprintln(p.out, ui.SeverityText(string(n.Severity), n.Message))
}

func (p *cliPresenter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.yes {
		return true, nil
	}
	fmt.Fprintf(p.out, "%s %s ", ui.Warn.Render(prompt), ui.Muted.Render("[y/N]"))

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- answer{line, err}
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.line == "" {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

func (p *cliPresenter) ShowView(view string) {
	fmt.Fprintf(p.out, "%s %s\n", ui.Muted.Render("→ open"), ui.Key.Render(view))
}
