package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

type tab int

const (
	tabDashboard tab = iota
	tabQuests
	tabShop
	tabSkills
)

// tabViews are the view names quests and onboarding steps refer to.
var tabViews = []string{"dashboard", "quests", "shop", "knowledge-tree"}

var tabTitles = []string{"Dashboard", "Quests", "Shop", "Skills"}

const maxLog = 4

type boardModel struct {
	ctx  context.Context
	svc  *engine.Service
	pres *Presenter
	tick time.Duration

	width  int
	height int

	tab      tab
	selected int
	subject  int

	st         engine.State
	quests     []engine.QuestView
	shop       []engine.ShopEntry
	skills     []engine.SkillNodeView
	subjects   []string
	onboarding engine.OnboardingView

	log     []engine.Notification
	confirm *confirmMsg
	// waiting holds questions that arrived while confirm was open.
	waiting []confirmMsg
	loading bool
}

type loadedMsg struct {
	st         engine.State
	quests     []engine.QuestView
	shop       []engine.ShopEntry
	skills     []engine.SkillNodeView
	onboarding engine.OnboardingView
}

// doneMsg ends a service call. Failures already arrived as notifications.
type doneMsg struct{}

type tickMsg time.Time

func newBoardModel(ctx context.Context, svc *engine.Service, pres *Presenter, tick time.Duration) boardModel {
	if tick <= 0 {
		tick = time.Minute
	}
	return boardModel{
		ctx:      ctx,
		svc:      svc,
		pres:     pres,
		tick:     tick,
		subjects: svc.SkillSubjects(),
		loading:  true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(
		m.pres.listen(),
		m.tickCmd(),
		m.run(func() { m.svc.Tick(m.ctx) }),
		m.run(func() { m.svc.VisitView(m.ctx, tabViews[tabDashboard]) }),
	)
}

func (m boardModel) currentSubject() string {
	if len(m.subjects) == 0 {
		return ""
	}
	return m.subjects[m.subject%len(m.subjects)]
}

func (m boardModel) loadCmd() tea.Cmd {
	subject := m.currentSubject()
	return func() tea.Msg {
		msg := loadedMsg{
			st:         m.svc.Snapshot(),
			quests:     m.svc.Quests(false),
			shop:       m.svc.Shop(),
			onboarding: m.svc.Onboarding(),
		}
		if subject != "" {
			msg.skills, _ = m.svc.SkillTreeView(subject)
		}
		return msg
	}
}

// run performs fn off the update loop.
func (m boardModel) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return doneMsg{}
	}
}

func (m boardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) rows() int {
	switch m.tab {
	case tabQuests:
		return len(m.quests)
	case tabShop:
		return len(m.shop)
	case tabSkills:
		return len(m.skills)
	default:
		return 0
	}
}

func (m boardModel) switchTab(t tab) (boardModel, tea.Cmd) {
	if t == m.tab {
		return m, nil
	}
	m.tab = t
	m.selected = 0
	view := tabViews[t]
	return m, m.run(func() { m.svc.VisitView(m.ctx, view) })
}

func (m boardModel) pushLog(n engine.Notification) boardModel {
	m.log = append(m.log, n)
	if len(m.log) > maxLog {
		m.log = m.log[len(m.log)-maxLog:]
	}
	return m
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.st = msg.st
		m.quests = msg.quests
		m.shop = msg.shop
		m.skills = msg.skills
		m.onboarding = msg.onboarding
		if n := m.rows(); m.selected >= n {
			m.selected = max(n-1, 0)
		}
		return m, nil
	case doneMsg:
		return m, m.loadCmd()
	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.run(func() { m.svc.Tick(m.ctx) }))
	case notifyMsg:
		m = m.pushLog(engine.Notification(msg))
		return m, m.pres.listen()
	case viewMsg:
		for i, v := range tabViews {
			if v == string(msg) {
				m.tab = tab(i)
				m.selected = 0
			}
		}
		return m, tea.Batch(m.pres.listen(), m.loadCmd())
	case confirmMsg:
		if m.confirm != nil {
			m.waiting = append(m.waiting, msg)
		} else {
			m.confirm = &msg
		}
		return m, m.pres.listen()
	case tea.KeyMsg:
		if m.confirm != nil {
			return m.answer(msg.String())
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m boardModel) answer(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.confirm.reply <- true
	case "n", "N", "esc", "q":
		m.confirm.reply <- false
	case "ctrl+c":
		m.confirm.reply <- false
		for _, w := range m.waiting {
			w.reply <- false
		}
		m.confirm, m.waiting = nil, nil
		return m, tea.Quit
	default:
		return m, nil
	}
	m.confirm = nil
	if len(m.waiting) > 0 {
		next := m.waiting[0]
		m.waiting = m.waiting[1:]
		m.confirm = &next
	}
	return m, nil
}

func (m boardModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		return m.switchTab(tab(key[0] - '1'))
	case "tab":
		return m.switchTab((m.tab + 1) % tab(len(tabViews)))
	case "shift+tab":
		return m.switchTab((m.tab + tab(len(tabViews)) - 1) % tab(len(tabViews)))
	case "r":
		return m, m.loadCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < m.rows()-1 {
			m.selected++
		}
		return m, nil
	case "n":
		if !m.onboarding.Completed {
			return m, m.run(func() { _, _ = m.svc.AdvanceOnboarding(m.ctx) })
		}
		return m, nil
	}

	switch m.tab {
	case tabQuests:
		return m.questKey(key)
	case tabShop:
		return m.shopKey(key)
	case tabSkills:
		return m.skillKey(key)
	}
	return m, nil
}

func (m boardModel) questKey(key string) (tea.Model, tea.Cmd) {
	if m.selected >= len(m.quests) {
		return m, nil
	}
	q := m.quests[m.selected]
	switch key {
	case "c", " ", "enter":
		return m, m.run(func() { _, _ = m.svc.CompleteQuest(m.ctx, q.ID, q.ReportedProgress()) })
	case "+", "p":
		return m, m.run(func() { _, _ = m.svc.UpdateQuestProgress(m.ctx, q.ID, 1, true) })
	case "R":
		return m, m.run(func() { _ = m.svc.RepeatQuest(m.ctx, q.ID) })
	}
	return m, nil
}

func (m boardModel) shopKey(key string) (tea.Model, tea.Cmd) {
	if m.selected >= len(m.shop) {
		return m, nil
	}
	id := m.shop[m.selected].ID
	switch key {
	case "b", "enter":
		return m, m.run(func() { _ = m.svc.PurchaseItem(m.ctx, id) })
	case "u":
		return m, m.run(func() { _, _ = m.svc.UseItem(m.ctx, id) })
	}
	return m, nil
}

func (m boardModel) skillKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "h":
		if len(m.subjects) > 0 {
			m.subject = (m.subject + len(m.subjects) - 1) % len(m.subjects)
			m.selected = 0
		}
		return m, m.loadCmd()
	case "right", "l":
		if len(m.subjects) > 0 {
			m.subject = (m.subject + 1) % len(m.subjects)
			m.selected = 0
		}
		return m, m.loadCmd()
	case "R":
		return m, m.run(func() { _, _ = m.svc.RespecSkills(m.ctx) })
	case "enter", " ", "L":
		if m.selected >= len(m.skills) {
			return m, nil
		}
		subject, id := m.currentSubject(), m.skills[m.selected].ID
		return m, m.run(func() { _ = m.svc.LearnSkill(m.ctx, subject, id) })
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.loading {
		return "EduQuest, loading…\n"
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	switch m.tab {
	case tabQuests:
		b.WriteString(m.renderQuests())
	case tabShop:
		b.WriteString(m.renderShop())
	case tabSkills:
		b.WriteString(m.renderSkills())
	default:
		b.WriteString(m.renderDashboard())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m boardModel) renderHeader() string {
	p := m.st.Profile
	rules := m.svc.Rules()
	xp := ui.Gold.Render("max level")
	if next, ok := rules.Threshold(p.Level); ok {
		xp = fmt.Sprintf("XP %s %g/%g", ui.Bar(p.XP, next, 16), p.XP, next)
	}
	return fmt.Sprintf("%s  Lv %d  %s  %s  %s %s",
		ui.Title.Render(p.Name),
		p.Level,
		xp,
		ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, p.Gold)),
		ui.Key.Render(ui.IconBolt),
		ui.Bar(p.Focus, rules.FocusMax, 10))
}

func (m boardModel) renderTabs() string {
	parts := make([]string, len(tabTitles))
	for i, t := range tabTitles {
		label := fmt.Sprintf(" %d %s ", i+1, t)
		if tab(i) == m.tab {
			parts[i] = ui.SelectedRow.Render(label)
		} else {
			parts[i] = ui.Muted.Render(label)
		}
	}
	return strings.Join(parts, " ")
}

func (m boardModel) cursor(i int) string {
	if i == m.selected {
		return ui.Gold.Render("> ")
	}
	return "  "
}

func (m boardModel) renderDashboard() string {
	var lines []string
	if o := m.onboarding; !o.Completed && o.Current != nil {
		lines = append(lines,
			ui.PanelTitle.Render(fmt.Sprintf("Tour %d/%d: %s", o.Step+1, o.Total, o.Current.Title)),
			o.Current.Text,
			ui.Muted.Render("press n for the next step"),
			"")
	}
	lines = append(lines, ui.LabelValue("Skill points", m.st.SkillPoints()))
	lines = append(lines, ui.LabelValue("Achievements", len(m.st.Profile.Achievements)))
	lines = append(lines, ui.LabelValue("Next refresh", m.svc.NextRefresh().Local().Format("Mon 15:04")))
	lines = append(lines, "")

	lines = append(lines, ui.H2.Render("Up next"))
	shown := 0
	for _, q := range m.quests {
		if q.Status == engine.StatusAvailable || q.Status == engine.StatusInProgress {
			lines = append(lines, fmt.Sprintf("%s %s %s", ui.QuestIcon(string(q.Type)), q.Title, ui.StatusText(string(q.Status))))
			if shown++; shown == 3 {
				break
			}
		}
	}
	if shown == 0 {
		lines = append(lines, ui.Muted.Render("(nothing available)"))
	}
	return ui.Panel.Render(strings.Join(lines, "\n"))
}

func (m boardModel) renderQuests() string {
	if len(m.quests) == 0 {
		return ui.Muted.Render("(no quests)")
	}
	var lines []string
	for i, q := range m.quests {
		progress := ""
		if q.TargetProgress > 1 && !q.IsCompleted {
			progress = " " + ui.Muted.Render(fmt.Sprintf("%g/%g", q.Progress, q.TargetProgress))
		}
		lines = append(lines, fmt.Sprintf("%s%s %s%s %s", m.cursor(i), ui.QuestIcon(string(q.Type)), q.Title, progress, ui.StatusText(string(q.Status))))
	}
	lines = append(lines, "", ui.Muted.Render("c complete · p +1 progress · R repeat"))
	return strings.Join(lines, "\n")
}

func (m boardModel) renderShop() string {
	var lines []string
	for i, e := range m.shop {
		price := fmt.Sprintf("%4d", e.Cost)
		if e.Affordable {
			price = ui.Gold.Render(price)
		} else {
			price = ui.Muted.Render(price)
		}
		tag := ""
		switch {
		case e.Owned:
			tag = ui.Good.Render(" owned")
		case e.Quantity > 0:
			tag = ui.Muted.Render(fmt.Sprintf(" x%d", e.Quantity))
		}
		offer := ""
		if e.IsLimitedOffer {
			offer = ui.Warn.Render(" ★")
		}
		lines = append(lines, fmt.Sprintf("%s%s %s%s%s", m.cursor(i), price, e.Name, offer, tag))
	}
	lines = append(lines, "", ui.Muted.Render("b buy · u use"))
	return strings.Join(lines, "\n")
}

func (m boardModel) renderSkills() string {
	lines := []string{fmt.Sprintf("%s %s %s  %s",
		ui.Muted.Render("◀"), ui.H2.Render(m.currentSubject()), ui.Muted.Render("▶"),
		ui.LabelValue("points", m.st.SkillPoints()))}
	for i, n := range m.skills {
		var state string
		switch n.State {
		case engine.SkillUnlocked:
			state = ui.Good.Render(ui.IconDone)
		case engine.SkillLearnable:
			state = ui.Warn.Render(fmt.Sprintf("[%d]", n.Cost))
		default:
			state = ui.Muted.Render(ui.IconLock)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", m.cursor(i), state, n.Name))
	}
	lines = append(lines, "", ui.Muted.Render("enter learn · ←/→ subject · R respec"))
	return strings.Join(lines, "\n")
}

func (m boardModel) renderFooter() string {
	var lines []string
	if m.confirm != nil {
		lines = append(lines, ui.Warn.Render(m.confirm.prompt)+" "+ui.Muted.Render("[y/n]"))
	}
	for _, n := range m.log {
		lines = append(lines, ui.SeverityText(string(n.Severity), n.Message))
	}
	lines = append(lines, ui.Dim.Render("1-4/tab switch · ↑/↓ move · r refresh · q quit"))
	return strings.Join(lines, "\n")
}
