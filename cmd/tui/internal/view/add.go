package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

// addInput holds the form bindings. It lives behind a pointer so huh keeps
// writing to the same fields while the model is copied between updates.
type addInput struct {
	date        string
	description string
	account     string
	debit       string
	credit      string
}

type AddModel struct {
	CommonModel
	ledger *ledger.Service
	orch   *syncer.Orchestrator

	input    *addInput
	form     *huh.Form
	accounts []string

	result *syncer.Result
	err    error
}

func NewAddModel(l *ledger.Service, orch *syncer.Orchestrator) AddModel {
	return AddModel{ledger: l, orch: orch}
}

func (m AddModel) Title() string { return "Add Transaction" }
func (m AddModel) ShortHelp() string {
	return "Tab: next field | Enter: submit | Esc: back"
}

func (m AddModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addAccountsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.accounts = msg.names

		return m, m.newForm("")

	case addResultMsg:
		m.result, m.err = msg.result, msg.err

		keep := ""
		if m.input != nil {
			keep = m.input.account
		}

		return m, tea.Batch(m.newForm(keep), Changed)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.submitCmd(*m.input)
	case huh.StateAborted:
		return m, Back
	}

	return m, cmd
}

// newForm builds a fresh form, preselecting account when it still exists.
func (m *AddModel) newForm(account string) tea.Cmd {
	if len(m.accounts) == 0 {
		m.err = errors.New("no accounts yet, create one under Accounts first")
		return nil
	}

	m.input = &addInput{date: time.Now().Format(time.DateOnly), account: account}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.input.date).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					if err != nil {
						return errors.New("use YYYY-MM-DD")
					}

					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&m.input.description),
			huh.NewSelect[string]().
				Title("Account").
				Options(huh.NewOptions(m.accounts...)...).
				Value(&m.input.account),
			huh.NewInput().
				Title("Debit").
				Placeholder("0").
				Value(&m.input.debit).
				Validate(validateAmount),
			huh.NewInput().
				Title("Credit").
				Placeholder("0").
				Value(&m.input.credit).
				Validate(validateAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	return m.form.Init()
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if d.IsNegative() {
		return decimal.Zero, errors.New("must not be negative")
	}

	return d, nil
}

func (m AddModel) View() string {
	var b strings.Builder

	if m.result != nil {
		b.WriteString(okText.Render(fmt.Sprintf("Saved %s on %s: %s",
			m.result.Transaction.Account, FormatDate(m.result.Transaction.Date), m.result.Message)))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if m.form != nil {
		b.WriteString(panel.Render(m.form.View()))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

// Messages

type addAccountsMsg struct {
	names []string
	err   error
}

type addResultMsg struct {
	result *syncer.Result
	err    error
}

func (m AddModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledger.ListAccounts(ctx)
		if err != nil {
			return addAccountsMsg{err: err}
		}

		names := make([]string, len(accounts))
		for i, a := range accounts {
			names[i] = a.Name
		}

		return addAccountsMsg{names: names}
	}
}

func (m AddModel) submitCmd(in addInput) tea.Cmd {
	return func() tea.Msg {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(in.date))
		if err != nil {
			return addResultMsg{err: err}
		}

		debit, err := parseAmount(in.debit)
		if err != nil {
			return addResultMsg{err: fmt.Errorf("debit: %w", err)}
		}

		credit, err := parseAmount(in.credit)
		if err != nil {
			return addResultMsg{err: fmt.Errorf("credit: %w", err)}
		}

		// Submit may wait on the remote; give it the mirror's own deadline.
		res, err := m.orch.Submit(context.Background(), ledger.CreateParams{
			Date:        date,
			Description: in.description,
			Account:     in.account,
			Debit:       debit,
			Credit:      credit,
		})

		return addResultMsg{result: res, err: err}
	}
}
