package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "stint/internal/modules/session/dto"
	webhookdto "stint/internal/modules/webhook/dto"
	"stint/internal/platform/timefmt"
	"stint/internal/ui/theme"
	activeview "stint/internal/ui/views/active"
	deliveriesview "stint/internal/ui/views/deliveries"
	sessionsview "stint/internal/ui/views/sessions"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Pane ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Status(ctx context.Context) (sessiondto.StatusOutput, error)
	Pause(ctx context.Context) (sessiondto.PauseOutput, error)
	Resume(ctx context.Context) (sessiondto.ResumeOutput, error)
	Stop(ctx context.Context) (sessiondto.StopOutput, error)
	Log(ctx context.Context, filter sessiondto.LogFilter) (sessiondto.LogOutput, error)
}

type webhookPort interface {
	History(ctx context.Context, input webhookdto.HistoryInput) (webhookdto.HistoryOutput, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

type sessionPausedMsg struct {
	out sessiondto.PauseOutput
	err error
}

type sessionResumedMsg struct {
	out sessiondto.ResumeOutput
	err error
}

type sessionStoppedMsg struct {
	out sessiondto.StopOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Pause   key.Binding
	Stop    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop session")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Stop, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Stop},
		{k.Refresh},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model: a single dashboard screen with the
// current session, recent history, and recent webhook deliveries. All
// business logic is delegated to port interfaces; all rendering is delegated
// to the pane views.
type Model struct {
	session sessionPort

	activeView     activeview.Model
	sessionsView   sessionsview.Model
	deliveriesView deliveriesview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	status   string
	width    int
	height   int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(session sessionPort, webhooks webhookPort) Model {
	return Model{
		session:        session,
		activeView:     activeview.New(statusPortBridge{p: session}),
		sessionsView:   sessionsview.New(logPortBridge{p: session}),
		deliveriesView: deliveriesview.New(historyPortBridge{p: webhooks}),
		keys:           defaultKeys(),
		help:           help.New(),
		status:         "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.activeView.Init(),
		m.sessionsView.Init(),
		m.deliveriesView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width
		// Panes get their slice of the window here; the raw message must not
		// reach them or they would each size themselves to the full terminal.
		m.propagateSize()
		return m, nil

	case sessionPausedMsg:
		if msg.err != nil {
			m.status = "pause failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("session paused at %s", timefmt.Duration(msg.out.Duration))
			cmds = append(cmds, m.reloadAll()...)
		}

	case sessionResumedMsg:
		if msg.err != nil {
			m.status = "resume failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("session resumed after %s", timefmt.Duration(msg.out.PausedFor))
			cmds = append(cmds, m.reloadAll()...)
		}

	case sessionStoppedMsg:
		if msg.err != nil {
			m.status = "stop failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("session stopped (%s)", timefmt.Duration(msg.out.Duration))
			cmds = append(cmds, m.reloadAll()...)
		}

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the list when its search filter is active.
		if m.sessionsView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "p":
			if !m.activeView.HasActive() {
				m.status = "no active session"
				break
			}
			if m.activeView.Paused() {
				cmds = append(cmds, m.resumeCmd())
			} else {
				cmds = append(cmds, m.pauseCmd())
			}
		case "s":
			if !m.activeView.HasActive() {
				m.status = "no active session"
				break
			}
			cmds = append(cmds, m.stopCmd())
		case "r":
			m.status = "refreshed"
			cmds = append(cmds, m.reloadAll()...)
		}
	}

	// All panes are visible at once, so every message reaches every pane.
	var cmd tea.Cmd
	m.activeView, cmd = m.activeView.Update(msg)
	cmds = append(cmds, cmd)
	m.sessionsView, cmd = m.sessionsView.Update(msg)
	cmds = append(cmds, cmd)
	m.deliveriesView, cmd = m.deliveriesView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	_, _, contentH, _ := m.layout()

	var content string
	if m.showHelp {
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	} else {
		content = m.renderPanes()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderPanes() string {
	listW, _, contentH, _ := m.layout()

	left := lipgloss.NewStyle().
		Width(listW).
		Height(contentH).
		Render(m.sessionsView.View())

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.activeView.View(),
		m.deliveriesView.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderHeader() string {
	bar := theme.Hot.Render(" stint ") + theme.Muted.Render(" time tracking")
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.activeView.HasActive() {
		label := m.activeView.Description()
		if label == "" {
			label = "session"
		}
		left = theme.Hot.Render("● "+label) + "  " + left
	}
	right := theme.Muted.Render("p:pause/resume  s:stop  r:refresh  ?:help  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// layout splits the window: session list on the left, current session and
// deliveries stacked on the right. Header and status bar take two rows each.
func (m Model) layout() (listW, rightW, contentH, activeH int) {
	listW = m.width * 4 / 10
	rightW = m.width - listW
	contentH = m.height - 4
	if contentH < 2 {
		contentH = 2
	}
	activeH = contentH * 4 / 10
	if activeH < 1 {
		activeH = 1
	}
	return listW, rightW, contentH, activeH
}

func (m *Model) propagateSize() {
	listW, rightW, contentH, activeH := m.layout()
	m.sessionsView, _ = m.sessionsView.Update(tea.WindowSizeMsg{Width: listW, Height: contentH})
	m.activeView, _ = m.activeView.Update(tea.WindowSizeMsg{Width: rightW, Height: activeH})
	m.deliveriesView, _ = m.deliveriesView.Update(tea.WindowSizeMsg{Width: rightW, Height: contentH - activeH})
}

func (m Model) reloadAll() []tea.Cmd {
	return []tea.Cmd{
		m.activeView.Reload(),
		m.sessionsView.Reload(),
		m.deliveriesView.Reload(),
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) pauseCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Pause(context.Background())
		return sessionPausedMsg{out: out, err: err}
	}
}

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Resume(context.Background())
		return sessionResumedMsg{out: out, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Stop(context.Background())
		return sessionStoppedMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed
// by a specific pane, keeping pane packages free of knowledge about the wider
// port surface.

type statusPortBridge struct{ p sessionPort }

func (b statusPortBridge) Status(ctx context.Context) (sessiondto.StatusOutput, error) {
	return b.p.Status(ctx)
}

type logPortBridge struct{ p sessionPort }

func (b logPortBridge) Log(ctx context.Context, filter sessiondto.LogFilter) (sessiondto.LogOutput, error) {
	return b.p.Log(ctx, filter)
}

type historyPortBridge struct{ p webhookPort }

func (b historyPortBridge) History(ctx context.Context, input webhookdto.HistoryInput) (webhookdto.HistoryOutput, error) {
	return b.p.History(ctx, input)
}
