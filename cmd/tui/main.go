package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kasbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/kasbook/internal/app"
	"github.com/MrJamesThe3rd/kasbook/internal/config"
	"github.com/MrJamesThe3rd/kasbook/internal/database"
	"github.com/MrJamesThe3rd/kasbook/internal/logging"
)

const logFile = "kasbook-tui.log"

type model struct {
	app         *app.App
	unsubscribe func()

	currentView View
	statusBar   view.StatusBar

	addView      view.AddModel
	listView     view.ListModel
	accountsView view.AccountsModel
	pendingView  view.PendingModel
	importView   view.ImportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewAdd      View = 1
	ViewList     View = 2
	ViewAccounts View = 3
	ViewPending  View = 4
	ViewImport   View = 5
)

func newModel(a *app.App) model {
	events, unsubscribe := a.Monitor.Subscribe(8)

	return model{
		app:          a,
		unsubscribe:  unsubscribe,
		currentView:  ViewMenu,
		statusBar:    view.NewStatusBar(a.Sync, events),
		addView:      view.NewAddModel(a.Ledger, a.Sync),
		listView:     view.NewListModel(a.Ledger),
		accountsView: view.NewAccountsModel(a.Ledger),
		pendingView:  view.NewPendingModel(a.Queue, a.Sync),
		importView:   view.NewImportModel(a.Importer, a.Sync),
	}
}

func (m model) Init() tea.Cmd {
	return m.statusBar.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, m.statusBar.Refresh()
	case view.StatusMsg, view.ConnectivityMsg, view.ChangedMsg:
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		cmds = append(cmds, cmd)

		if _, ok := msg.(view.ChangedMsg); ok {
			return m, tea.Batch(cmds...)
		}
	default:
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.updateCurrent(msg))

	return m, tea.Batch(cmds...)
}

// quit stops the connectivity subscription before the program exits.
func (m model) quit() (tea.Model, tea.Cmd) {
	m.unsubscribe()
	return m, tea.Quit
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "1":
		m.currentView = ViewAdd
		m.addView = view.NewAddModel(m.app.Ledger, m.app.Sync)

		return m, m.addView.Init()
	case "2":
		m.currentView = ViewList
		m.listView = view.NewListModel(m.app.Ledger)

		return m, m.listView.Init()
	case "3":
		m.currentView = ViewAccounts
		m.accountsView = view.NewAccountsModel(m.app.Ledger)

		return m, m.accountsView.Init()
	case "4":
		m.currentView = ViewPending
		m.pendingView = view.NewPendingModel(m.app.Queue, m.app.Sync)

		return m, m.pendingView.Init()
	case "5":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.app.Importer, m.app.Sync)

		return m, m.importView.Init()
	case "o":
		if m.app.Prober == nil {
			return m, nil
		}

		return m, func() tea.Msg {
			m.app.Prober.Probe(context.Background())
			return view.ChangedMsg{}
		}
	}

	return m, nil
}

func (m *model) updateCurrent(msg tea.Msg) tea.Cmd {
	var (
		newModel tea.Model
		cmd      tea.Cmd
	)

	switch m.currentView {
	case ViewAdd:
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewList:
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewAccounts:
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewPending:
		newModel, cmd = m.pendingView.Update(msg)
		m.pendingView = newModel.(view.PendingModel)
	case ViewImport:
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return cmd
}

func (m model) current() view.View {
	switch m.currentView {
	case ViewAdd:
		return m.addView
	case ViewList:
		return m.listView
	case ViewAccounts:
		return m.accountsView
	case ViewPending:
		return m.pendingView
	case ViewImport:
		return m.importView
	}

	return nil
}

func (m model) View() string {
	bar := lipgloss.NewStyle().PaddingLeft(2).PaddingTop(1).Render(m.statusBar.View())

	v := m.current()
	if v == nil {
		return bar + "\n" + lipgloss.NewStyle().Padding(2).Render(
			"Kasbook\n\n"+
				"1. Add Transaction\n"+
				"2. Transactions\n"+
				"3. Accounts\n"+
				"4. Pending Sync\n"+
				"5. Import CSV\n\n"+
				"o. Check connection\n"+
				"q. Quit",
		)
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(v.ShortHelp())
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(2).PaddingTop(1).Render(v.Title())

	return lipgloss.JoinVertical(lipgloss.Left, bar, title, v.View(), help)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	log, err := logging.NewWithWriter(f, cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		return err
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := app.New(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Close()

	if _, err := tea.NewProgram(newModel(a), tea.WithAltScreen()).Run(); err != nil {
		log.WithError(err).Error("tui exited")
		return err
	}

	return nil
}
