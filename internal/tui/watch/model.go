package watch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veetaha/teloxide/updates"
)

const maxRows = 200

// Model is the main BubbleTea model for the watch TUI. It tails a webhook
// listener and renders the most recent updates.
type Model struct {
	listener *updates.Listener
	url      string

	width  int
	height int

	received int
	stopped  bool
	lastAt   time.Time

	rows    []table.Row
	tbl     table.Model
	spinner Spinner
	theme   Theme
}

type updateMsg updates.Update
type streamEndedMsg struct{}
type tickMsg time.Time

// New creates a watch model tailing listener. url is shown in the header so
// the operator can see where the remote API pushes to.
func New(listener *updates.Listener, url string) *Model {
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Update", Width: 12},
			{Title: "Kind", Width: 20},
			{Title: "Bytes", Width: 8},
			{Title: "Received", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return &Model{
		listener: listener,
		url:      url,
		tbl:      tbl,
		spinner:  NewSpinner(),
		theme:    NewDefaultTheme(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		receiveNextUpdate(m.listener),
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

// receiveNextUpdate suspends until the listener produces another update or
// the stream ends.
func receiveNextUpdate(l *updates.Listener) tea.Cmd {
	return func() tea.Msg {
		upd, ok := <-l.Updates()
		if !ok {
			return streamEndedMsg{}
		}
		return updateMsg(upd)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Stop the listener; the final streamEndedMsg quits once the
			// buffered updates have been displayed.
			m.listener.Stop()
			m.stopped = true
			return m, nil
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tbl.SetHeight(max(4, msg.Height-8))

	case updateMsg:
		m.received++
		m.lastAt = time.Now()
		m.spinner.OnUpdate()
		m.prependRow(updates.Update(msg))
		return m, receiveNextUpdate(m.listener)

	case streamEndedMsg:
		if m.stopped {
			return m, tea.Quit
		}
		// Stream ended without a local stop; show the state and stay up.
		m.stopped = true
		return m, nil

	case tickMsg:
		m.spinner.Decay()
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
	}

	return m, nil
}

func (m *Model) prependRow(upd updates.Update) {
	kind := upd.Kind
	if kind == "" {
		kind = "-"
	}
	row := table.Row{
		fmt.Sprintf("%d", upd.ID),
		kind,
		fmt.Sprintf("%d", len(upd.Raw)),
		time.Now().Format("15:04:05"),
	}
	m.rows = append([]table.Row{row}, m.rows...)
	if len(m.rows) > maxRows {
		m.rows = m.rows[:maxRows]
	}
	m.tbl.SetRows(m.rows)
}

func (m *Model) View() string {
	status := m.theme.StatusOK.Render("listening")
	if m.stopped {
		status = m.theme.StatusStopped.Render("stopped")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.Title.Render("webhookd watch"),
		" ",
		m.theme.Dim.Render(m.url),
		"  ",
		status,
		"  ",
		m.spinner.Render(m.theme),
	)

	stats := m.theme.Header.Render(fmt.Sprintf("updates: %d", m.received))
	if !m.lastAt.IsZero() {
		stats += m.theme.Dim.Render(fmt.Sprintf("  last: %s", m.lastAt.Format("15:04:05")))
	}

	body := m.theme.Border.Render(m.tbl.View())
	help := m.theme.Dim.Render("q: stop and quit    j/k: scroll")

	return lipgloss.JoinVertical(lipgloss.Left, header, stats, body, help)
}
