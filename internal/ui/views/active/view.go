package active

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	sessiondto "stint/internal/modules/session/dto"
	apperrors "stint/internal/platform/errors"
	"stint/internal/platform/timefmt"
	"stint/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type SessionPort interface {
	Status(ctx context.Context) (sessiondto.StatusOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// StatusLoadedMsg is exported so the root model can keep its status bar in
// step with this pane.
type StatusLoadedMsg struct {
	Status sessiondto.StatusOutput
	Err    error
}

type tickMsg time.Time

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the current session. The elapsed readout advances locally
// between reloads: a running session adds wall time since the last fetch.
type Model struct {
	port      SessionPort
	status    sessiondto.StatusOutput
	hasActive bool
	loadedAt  time.Time
	loadErr   string
	width     int
	height    int
}

func New(port SessionPort) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), tick())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StatusLoadedMsg:
		m.loadErr = ""
		switch {
		case errors.Is(msg.Err, apperrors.ErrNoActiveSession):
			m.hasActive = false
			m.status = sessiondto.StatusOutput{}
		case msg.Err != nil:
			m.hasActive = false
			m.loadErr = msg.Err.Error()
		default:
			m.hasActive = true
			m.status = msg.Status
			m.loadedAt = time.Now()
		}

	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Session") + "\n\n")

	switch {
	case m.loadErr != "":
		sb.WriteString(theme.Bad.Render("status check failed") + "\n")
		sb.WriteString(theme.Muted.Render(m.loadErr))
	case !m.hasActive:
		sb.WriteString(theme.Muted.Render("no active session") + "\n\n")
		sb.WriteString(theme.Muted.Render("start one with: stint start"))
	default:
		sb.WriteString(theme.Muted.Render("state:    ") + m.renderState() + "\n")
		sb.WriteString(theme.Muted.Render("elapsed:  ") + theme.Title.Render(timefmt.Clock(m.elapsed())) + "\n")
		if m.status.Description != "" {
			sb.WriteString(theme.Muted.Render("task:     ") + m.status.Description + "\n")
		}
		if m.status.Project != "" {
			sb.WriteString(theme.Muted.Render("project:  ") + m.status.Project + "\n")
		}
		if len(m.status.Tags) > 0 {
			sb.WriteString(theme.Muted.Render("tags:     ") + strings.Join(m.status.Tags, ", ") + "\n")
		}
		if m.status.PauseCount > 0 {
			sb.WriteString(theme.Muted.Render("pauses:   ") +
				fmt.Sprintf("%d (%s)", m.status.PauseCount, timefmt.Duration(m.status.Paused)) + "\n")
		}
		sb.WriteString(theme.Muted.Render("started:  ") + timefmt.Stamp(m.status.StartedAt))
	}

	style := theme.Pane
	if m.hasActive {
		style = theme.PaneActive
	}
	return style.Width(m.width - 2).Height(m.height - 2).Render(sb.String())
}

// Paused reports whether the pane currently shows a paused session. The root
// model uses it to decide whether the pause key means pause or resume.
func (m Model) Paused() bool {
	return m.hasActive && m.status.State == "paused"
}

// HasActive reports whether a session is currently shown.
func (m Model) HasActive() bool {
	return m.hasActive
}

// Description returns the shown session's description, if any.
func (m Model) Description() string {
	return m.status.Description
}

// Reload returns a command that fetches the current session state.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		status, err := m.port.Status(context.Background())
		return StatusLoadedMsg{Status: status, Err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderState() string {
	if m.status.State == "paused" {
		return theme.Hot.Render("● paused")
	}
	return theme.Good.Render("● running")
}

func (m Model) elapsed() time.Duration {
	elapsed := m.status.Duration
	if m.status.State == "running" {
		elapsed += time.Since(m.loadedAt)
	}
	return elapsed
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}
