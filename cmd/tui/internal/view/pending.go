package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kasbook/internal/pending"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

const drainTimeout = 2 * time.Minute

type PendingModel struct {
	CommonModel
	queue *pending.Queue
	orch  *syncer.Orchestrator

	table   table.Model
	entries []*pending.Entry

	draining bool
	err      error
	status   string
}

func NewPendingModel(q *pending.Queue, orch *syncer.Orchestrator) PendingModel {
	return PendingModel{
		queue: q,
		orch:  orch,
		table: newTable([]table.Column{
			{Title: "#", Width: 6},
			{Title: "Date", Width: 12},
			{Title: "Description", Width: 28},
			{Title: "Account", Width: 16},
			{Title: "Debit", Width: 14},
			{Title: "Credit", Width: 14},
			{Title: "Queued", Width: 17},
		}),
	}
}

func (m PendingModel) Title() string { return "Pending Sync" }
func (m PendingModel) ShortHelp() string {
	return "Esc: back | s: sync now | x: drop entry | r: refresh"
}

func (m PendingModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PendingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPendingMsg:
		m.err = msg.err
		m.entries = msg.entries

		rows := make([]table.Row, len(m.entries))
		for i, e := range m.entries {
			rows[i] = table.Row{
				fmt.Sprintf("%d", e.Seq),
				FormatDate(e.Snapshot.Date),
				e.Snapshot.Description,
				e.Snapshot.Account,
				FormatAmount(e.Snapshot.Debit),
				FormatAmount(e.Snapshot.Credit),
				e.EnqueuedAt.Local().Format("2006-01-02 15:04"),
			}
		}

		m.table.SetRows(rows)

		return m, nil

	case drainDoneMsg:
		m.draining = false

		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Sync stopped after %d: %v", msg.report.Mirrored, msg.err)
		case msg.report.Coalesced:
			m.status = "A sync is already running; it will pick these up."
		default:
			m.status = fmt.Sprintf("Synced %d transactions.", msg.report.Mirrored)
		}

		return m, tea.Batch(m.loadCmd(), Changed)

	case removedMsg:
		m.status = "Entry dropped. It will not be mirrored."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, tea.Batch(m.loadCmd(), Changed)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "s":
			if m.draining {
				return m, nil
			}

			m.draining = true
			m.status = "Syncing..."

			return m, tea.Batch(m.drainCmd(), Changed)
		case "x":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.entries) {
				return m, m.removeCmd(m.entries[idx])
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PendingModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.entries) == 0 && !m.draining {
		body := okText.Render("Nothing waiting. Everything is on the sheet.")
		if m.status != "" {
			body = faint.Render(m.status) + "\n\n" + body
		}

		return lipgloss.NewStyle().Padding(2).Render(body)
	}

	content := boxed(m.table.View())
	if m.status != "" {
		content = faint.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadPendingMsg struct {
	entries []*pending.Entry
	err     error
}

type drainDoneMsg struct {
	report syncer.DrainReport
	err    error
}

type removedMsg struct {
	err error
}

func (m PendingModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.queue.ListPending(ctx)

		return loadPendingMsg{entries: entries, err: err}
	}
}

func (m PendingModel) drainCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		report, err := m.orch.Drain(ctx)

		return drainDoneMsg{report: report, err: err}
	}
}

func (m PendingModel) removeCmd(e *pending.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return removedMsg{err: m.orch.Remove(ctx, e.ID)}
	}
}
