package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateAdd
	accountsStateRename
	accountsStateDelete
)

type accountForm struct {
	name    string
	confirm bool
}

type AccountsModel struct {
	CommonModel
	ledger *ledger.Service

	state    accountsState
	table    table.Model
	accounts []*ledger.Account
	form     *huh.Form
	input    *accountForm

	err    error
	status string
}

func NewAccountsModel(l *ledger.Service) AccountsModel {
	return AccountsModel{
		ledger: l,
		table: newTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Created", Width: 12},
		}),
	}
}

func (m AccountsModel) Title() string { return "Accounts" }
func (m AccountsModel) ShortHelp() string {
	if m.state != accountsStateBrowse {
		return "Enter: save | Esc: cancel"
	}

	return "Esc: back | n: new | e: rename | x: delete"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.err = msg.err
		m.accounts = msg.accounts

		rows := make([]table.Row, len(m.accounts))
		for i, a := range m.accounts {
			rows[i] = table.Row{a.Name, FormatDate(a.CreatedAt)}
		}

		m.table.SetRows(rows)

		return m, nil

	case accountSavedMsg:
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", describeAccountErr(msg.err))
		}

		return m, tea.Batch(m.loadCmd(), Changed)
	}

	if m.state != accountsStateBrowse {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.openForm(accountsStateAdd, nil)
		case "e":
			if a := m.selected(); a != nil {
				return m.openForm(accountsStateRename, a)
			}
		case "x":
			if a := m.selected(); a != nil {
				return m.openForm(accountsStateDelete, a)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) selected() *ledger.Account {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accounts) {
		return nil
	}

	return m.accounts[idx]
}

func (m AccountsModel) openForm(state accountsState, target *ledger.Account) (tea.Model, tea.Cmd) {
	m.input = &accountForm{}

	notEmpty := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("name cannot be empty")
		}

		return nil
	}

	var field huh.Field

	switch state {
	case accountsStateAdd:
		field = huh.NewInput().Title("New account").Value(&m.input.name).Validate(notEmpty)
	case accountsStateRename:
		m.input.name = target.Name
		field = huh.NewInput().
			Title(fmt.Sprintf("Rename %q", target.Name)).
			Description("Existing and queued transactions follow the new name.").
			Value(&m.input.name).
			Validate(notEmpty)
	case accountsStateDelete:
		field = huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", target.Name)).
			Value(&m.input.confirm)
	}

	m.form = huh.NewForm(huh.NewGroup(field)).WithWidth(45).WithShowHelp(false)
	m.state = state
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	target := m.selected()

	switch m.state {
	case accountsStateAdd:
		return m, m.addCmd(m.input.name)
	case accountsStateRename:
		return m, m.renameCmd(target.Name, m.input.name)
	case accountsStateDelete:
		if m.input.confirm {
			return m, m.deleteCmd(target.Name)
		}
	}

	m.state = accountsStateBrowse
	m.form = nil
	m.table.Focus()

	return m, nil
}

func (m AccountsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := boxed(m.table.View())

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel.Render(m.form.View()))
	}

	if m.status != "" {
		content = faint.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func describeAccountErr(err error) string {
	switch {
	case errors.Is(err, ledger.ErrDuplicateName):
		return "an account with that name already exists"
	case errors.Is(err, ledger.ErrAccountInUse):
		return "account still has transactions"
	case errors.Is(err, ledger.ErrNotFound):
		return "account no longer exists"
	}

	return err.Error()
}

// Messages

type loadAccountsMsg struct {
	accounts []*ledger.Account
	err      error
}

type accountSavedMsg struct {
	status string
	err    error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledger.ListAccounts(ctx)

		return loadAccountsMsg{accounts: accounts, err: err}
	}
}

func (m AccountsModel) addCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		a, err := m.ledger.AddAccount(ctx, name)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Added %q.", a.Name)}
	}
}

func (m AccountsModel) renameCmd(oldName, newName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledger.RenameAccount(ctx, oldName, newName); err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Renamed %q to %q.", oldName, strings.TrimSpace(newName))}
	}
}

func (m AccountsModel) deleteCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.ledger.DeleteAccount(ctx, name); err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Deleted %q.", name)}
	}
}
