package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateConfirm
)

type ListModel struct {
	CommonModel
	ledger *ledger.Service

	state   listState
	table   table.Model
	all     []*ledger.Transaction
	visible []*ledger.Transaction
	confirm *huh.Form
	yes     *bool

	period     Period
	accountIdx int
	accounts   []string

	loading bool
	err     error
	status  string
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewListModel(l *ledger.Service) ListModel {
	return ListModel{
		ledger: l,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Month", Width: 6},
			{Title: "Year", Width: 6},
			{Title: "Description", Width: 30},
			{Title: "Account", Width: 16},
			{Title: "Debit", Width: 14},
			{Title: "Credit", Width: 14},
		}),
		loading: true,
	}
}

func (m ListModel) Title() string { return "Transactions" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateConfirm {
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | p: period | a: account | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.all = msg.txs
		m.accounts = accountNames(msg.txs)

		if m.accountIdx > len(m.accounts) {
			m.accountIdx = 0
		}

		m.refreshTable()

		return m, nil

	case listDeleteMsg:
		m.state = listStateBrowse
		m.confirm = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
		} else {
			m.status = "Deleted locally. Rows already on the sheet stay there."
		}

		return m, tea.Batch(m.loadCmd(), Changed)

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	if m.state == listStateConfirm {
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			m.period = m.period.Next()
			m.refreshTable()

			return m, nil
		case "a":
			m.accountIdx = (m.accountIdx + 1) % (len(m.accounts) + 1)
			m.refreshTable()

			return m, nil
		case "x":
			return m.enterConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterConfirm() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return m, nil
	}

	tx := m.visible[idx]
	m.yes = new(bool)
	m.confirm = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s %q?", FormatDate(tx.Date), tx.Description)).
			Description("Queued and mirrored copies are not touched.").
			Value(m.yes),
	)).WithWidth(45).WithShowHelp(false)

	m.state = listStateConfirm
	m.table.Blur()

	return m, m.confirm.Init()
}

func (m ListModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.confirm = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.yes {
		m.state = listStateBrowse
		m.confirm = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.deleteCmd(m.visible[m.table.Cursor()])
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf(
		"Filter: [p] Period: %s | [a] Account: %s | %d shown",
		activeStyle(m.period.String()),
		activeStyle(m.accountLabel()),
		len(m.visible),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state == listStateConfirm && m.confirm != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel.Render(m.confirm.View()))
	}

	if m.status != "" {
		content = faint.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ListModel) accountLabel() string {
	if m.accountIdx == 0 || m.accountIdx > len(m.accounts) {
		return "All"
	}

	return m.accounts[m.accountIdx-1]
}

func (m *ListModel) refreshTable() {
	now := time.Now()
	account := ""

	if m.accountIdx > 0 && m.accountIdx <= len(m.accounts) {
		account = m.accounts[m.accountIdx-1]
	}

	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.all))

	for _, tx := range m.all {
		if !m.period.Contains(tx, now) || (account != "" && tx.Account != account) {
			continue
		}

		m.visible = append(m.visible, tx)
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			tx.Snapshot().MonthString(),
			strconv.Itoa(tx.Year()),
			tx.Description,
			tx.Account,
			FormatAmount(tx.Debit),
			FormatAmount(tx.Credit),
		})
	}

	m.table.SetRows(rows)
}

// accountNames lists distinct accounts in first-seen order.
func accountNames(txs []*ledger.Transaction) []string {
	seen := make(map[string]bool)

	var names []string

	for _, tx := range txs {
		if !seen[tx.Account] {
			seen[tx.Account] = true
			names = append(names, tx.Account)
		}
	}

	return names
}

// Messages

type loadListMsg struct {
	txs []*ledger.Transaction
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.ledger.ListTransactions(ctx)

		return loadListMsg{txs: txs, err: err}
	}
}

type listDeleteMsg struct {
	err error
}

func (m ListModel) deleteCmd(tx *ledger.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listDeleteMsg{err: m.ledger.DeleteTransaction(ctx, tx.ID)}
	}
}
