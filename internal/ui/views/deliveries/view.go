package deliveries

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	webhookdto "stint/internal/modules/webhook/dto"
	"stint/internal/ui/theme"
)

// historyLimit caps how many attempts the pane pulls in per reload.
const historyLimit = 50

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context, input webhookdto.HistoryInput) (webhookdto.HistoryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Attempts []webhookdto.DeliveryOutput
	Err      error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders recent webhook delivery attempts, newest first, across all
// configured webhooks.
type Model struct {
	port     HistoryPort
	attempts []webhookdto.DeliveryOutput
	loadErr  string
	width    int
	height   int
}

func New(port HistoryPort) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LoadedMsg:
		if msg.Err != nil {
			m.loadErr = msg.Err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.attempts = msg.Attempts
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recent deliveries") + "\n\n")

	switch {
	case m.loadErr != "":
		sb.WriteString(theme.Bad.Render("history unavailable") + "\n")
		sb.WriteString(theme.Muted.Render(m.loadErr))
	case len(m.attempts) == 0:
		sb.WriteString(theme.Muted.Render("no deliveries yet"))
	default:
		rows := m.height - 4
		if rows < 1 {
			rows = 1
		}
		for i, attempt := range m.attempts {
			if i >= rows {
				break
			}
			sb.WriteString(renderAttempt(attempt) + "\n")
		}
	}

	return theme.Pane.Width(m.width - 2).Height(m.height - 2).Render(sb.String())
}

// Reload returns a command that fetches the latest delivery history.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.History(context.Background(), webhookdto.HistoryInput{Limit: historyLimit})
		return LoadedMsg{Attempts: out.Attempts, Err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func renderAttempt(a webhookdto.DeliveryOutput) string {
	glyph := theme.Good.Render("✓")
	if a.Status != "success" {
		glyph = theme.Bad.Render("✗")
	}

	line := fmt.Sprintf("%s %s  %-14.14s %-16.16s %s",
		glyph,
		a.CompletedAt.Local().Format("15:04:05"),
		a.WebhookName,
		a.EventKind,
		renderDetail(a),
	)
	if a.NextRetryAt != nil {
		line += theme.Hot.Render("  retry " + a.NextRetryAt.Local().Format("15:04:05"))
	}
	return line
}

func renderDetail(a webhookdto.DeliveryOutput) string {
	switch {
	case a.Status == "timeout":
		return theme.Muted.Render("timeout")
	case a.StatusCode > 0:
		return theme.Muted.Render(fmt.Sprintf("HTTP %d", a.StatusCode))
	case a.Error != "":
		return theme.Muted.Render(a.Error)
	default:
		return ""
	}
}
