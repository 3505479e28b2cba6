package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eduquest/internal/catalog"
	"eduquest/internal/engine"
	"eduquest/internal/logger"
	"eduquest/internal/storage"
)

func newTestBoard(t *testing.T) (boardModel, *engine.Service) {
	t.Helper()
	cat, err := catalog.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	pres := NewPresenter()
	svc, err := engine.New(context.Background(), engine.Options{
		Catalog:   cat,
		Gateway:   storage.NewGateway(storage.NewMemoryStore(), logger.Nop()),
		Presenter: pres,
		Log:       logger.Nop(),
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return newBoardModel(context.Background(), svc, pres, time.Minute), svc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// load feeds the board a fresh snapshot.
func load(t *testing.T, m boardModel) boardModel {
	t.Helper()
	next, _ := m.Update(m.loadCmd()())
	return next.(boardModel)
}

func TestPresenterConfirmRoundTrip(t *testing.T) {
	p := NewPresenter()
	got := make(chan bool, 1)
	go func() {
		ok, _ := p.Confirm(context.Background(), "Reset?")
		got <- ok
	}()

	msg, ok := p.listen()().(confirmMsg)
	if !ok || msg.prompt != "Reset?" {
		t.Fatalf("msg=%+v", msg)
	}
	msg.reply <- true
	select {
	case ok := <-got:
		if !ok {
			t.Fatalf("Confirm returned false")
		}
	case <-time.After(time.Second):
		t.Fatalf("Confirm did not return")
	}
}

func TestPresenterConfirmCancelled(t *testing.T) {
	p := NewPresenter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Whether or not the question is queued, the cancel ends the wait.
	if ok, err := p.Confirm(ctx, "Sure?"); ok || err == nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestPresenterNotifyNeverBlocks(t *testing.T) {
	p := NewPresenter()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			p.Notify(engine.Notification{Message: "x", Severity: engine.SeverityInfo})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Notify blocked with a full buffer")
	}
}

func TestBoardTabsAndSelection(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)
	if m.loading {
		t.Fatalf("still loading after snapshot")
	}

	next, cmd := m.Update(key("2"))
	m = next.(boardModel)
	if m.tab != tabQuests || cmd == nil {
		t.Fatalf("tab=%d cmd=%v", m.tab, cmd)
	}
	next, _ = m.Update(key("j"))
	m = next.(boardModel)
	if m.selected != 1 {
		t.Fatalf("selected=%d", m.selected)
	}
	next, _ = m.Update(key("tab"))
	m = next.(boardModel)
	if m.tab != tabShop || m.selected != 0 {
		t.Fatalf("tab=%d selected=%d", m.tab, m.selected)
	}
	if v := m.View(); v == "" {
		t.Fatalf("empty view")
	}
}

func TestBoardBuysSelectedItem(t *testing.T) {
	m, svc := newTestBoard(t)
	m = load(t, m)
	next, _ := m.Update(key("3"))
	m = next.(boardModel)

	idx := -1
	for i, e := range m.shop {
		if e.ID == "powerup_focus_elixir" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("elixir not listed")
	}
	m.selected = idx
	_, cmd := m.Update(key("b"))
	if cmd == nil {
		t.Fatalf("no command for buy")
	}
	if _, ok := cmd().(doneMsg); !ok {
		t.Fatalf("buy did not finish with doneMsg")
	}
	if q := svc.Snapshot().Inventory.Quantity("powerup_focus_elixir"); q != 1 {
		t.Fatalf("quantity=%d", q)
	}
}

func TestBoardConfirmAnswer(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)
	reply := make(chan bool, 1)
	next, _ := m.Update(confirmMsg{prompt: "Respec?", reply: reply})
	m = next.(boardModel)
	if m.confirm == nil {
		t.Fatalf("confirm not shown")
	}
	// Other keys are ignored while a question is open.
	next, _ = m.Update(key("2"))
	m = next.(boardModel)
	if m.tab != tabDashboard || m.confirm == nil {
		t.Fatalf("key leaked past the prompt")
	}
	next, _ = m.Update(key("n"))
	m = next.(boardModel)
	if m.confirm != nil || <-reply {
		t.Fatalf("confirm=%v", m.confirm)
	}
}

func TestBoardShowViewSwitchesTab(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)
	next, _ := m.Update(viewMsg("knowledge-tree"))
	m = next.(boardModel)
	if m.tab != tabSkills {
		t.Fatalf("tab=%d", m.tab)
	}
	next, _ = m.Update(notifyMsg{Message: "hi", Severity: engine.SeverityInfo})
	m = next.(boardModel)
	if len(m.log) != 1 || m.log[0].Message != "hi" {
		t.Fatalf("log=%+v", m.log)
	}
}

func TestBoardQueuesSecondConfirm(t *testing.T) {
	m, _ := newTestBoard(t)
	m = load(t, m)
	first := make(chan bool, 1)
	second := make(chan bool, 1)
	next, _ := m.Update(confirmMsg{prompt: "Respec?", reply: first})
	m = next.(boardModel)
	next, _ = m.Update(confirmMsg{prompt: "Reset?", reply: second})
	m = next.(boardModel)
	if m.confirm == nil || m.confirm.prompt != "Respec?" {
		t.Fatalf("confirm=%+v, want the first question still open", m.confirm)
	}

	next, _ = m.Update(key("y"))
	m = next.(boardModel)
	if !<-first {
		t.Fatalf("first answer lost")
	}
	if m.confirm == nil || m.confirm.prompt != "Reset?" {
		t.Fatalf("confirm=%+v, want the queued question", m.confirm)
	}

	next, _ = m.Update(key("n"))
	m = next.(boardModel)
	if m.confirm != nil || <-second {
		t.Fatalf("confirm=%+v", m.confirm)
	}
}
