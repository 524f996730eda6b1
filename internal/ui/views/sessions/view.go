package sessions

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "stint/internal/modules/session/dto"
	"stint/internal/platform/timefmt"
	"stint/internal/ui/theme"
)

// logLimit caps how much history the pane pulls in per reload.
const logLimit = 20

// ─── port ────────────────────────────────────────────────────────────────────

type LogPort interface {
	Log(ctx context.Context, filter sessiondto.LogFilter) (sessiondto.LogOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Sessions []sessiondto.SessionRow
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	row sessiondto.SessionRow
}

func (i sessionItem) Title() string {
	if i.row.Description == "" {
		return "(no description)"
	}
	return i.row.Description
}

func (i sessionItem) Description() string {
	parts := []string{timefmt.Duration(i.row.Duration)}
	if i.row.Project != "" {
		parts = append(parts, i.row.Project)
	}
	if len(i.row.Tags) > 0 {
		parts = append(parts, strings.Join(i.row.Tags, ","))
	}
	parts = append(parts, timefmt.Stamp(i.row.StartedAt))
	return strings.Join(parts, "  ")
}

func (i sessionItem) FilterValue() string {
	return i.row.Description + " " + i.row.Project + " " + strings.Join(i.row.Tags, " ")
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    LogPort
	list    list.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port LogPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recent sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Recent sessions: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Recent sessions"
		items := make([]list.Item, len(msg.Sessions))
		for i, row := range msg.Sessions {
			items[i] = sessionItem{row: row}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}
	return m.list.View()
}

// Filtering reports whether the list's search filter is currently active.
// The root model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload returns a command that fetches the latest session history.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Log(context.Background(), sessiondto.LogFilter{Limit: logLimit})
		return LoadedMsg{Sessions: out.Sessions, Err: err}
	}
}
