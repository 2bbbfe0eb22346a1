package view

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kasbook/internal/connectivity"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

const statusRefresh = 3 * time.Second

var (
	onlineBadge  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("46")).Padding(0, 1)
	offlineBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("160")).Padding(0, 1)
	syncingBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")).Padding(0, 1)
)

// StatusMsg carries a fresh sync status for the status bar.
type StatusMsg struct {
	Status syncer.Status
	Err    error
}

// ConnectivityMsg is one transition read from the monitor's stream.
type ConnectivityMsg connectivity.Event

type statusTickMsg struct{}

// StatusBar shows reachability, queue depth and the last sync message.
type StatusBar struct {
	orch   *syncer.Orchestrator
	events <-chan connectivity.Event

	status syncer.Status
	err    error
}

func NewStatusBar(orch *syncer.Orchestrator, events <-chan connectivity.Event) StatusBar {
	return StatusBar{orch: orch, events: events}
}

func (b StatusBar) Init() tea.Cmd {
	return tea.Batch(b.Refresh(), b.waitForEvent(), b.tick())
}

func (b StatusBar) Update(msg tea.Msg) (StatusBar, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		b.status, b.err = msg.Status, msg.Err
	case ConnectivityMsg:
		b.status.Online = msg.Online
		return b, tea.Batch(b.Refresh(), b.waitForEvent())
	case statusTickMsg:
		return b, tea.Batch(b.Refresh(), b.tick())
	case ChangedMsg:
		return b, b.Refresh()
	}

	return b, nil
}

func (b StatusBar) View() string {
	badge := offlineBadge.Render("OFFLINE")

	switch {
	case b.status.Draining:
		badge = syncingBadge.Render("SYNCING")
	case b.status.Online:
		badge = onlineBadge.Render("ONLINE")
	}

	parts := []string{badge, fmt.Sprintf(" %d pending", b.status.Pending)}

	if b.status.Message != "" {
		parts = append(parts, faint.Render("  "+b.status.Message))
	}

	if b.err != nil {
		parts = append(parts, errText.Render(fmt.Sprintf("  status unavailable: %v", b.err)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// Refresh reads the orchestrator's status off the UI goroutine.
func (b StatusBar) Refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := b.orch.Status(ctx)

		return StatusMsg{Status: s, Err: err}
	}
}

func (b StatusBar) waitForEvent() tea.Cmd {
	if b.events == nil {
		return nil
	}

	return func() tea.Msg {
		ev, ok := <-b.events
		if !ok {
			return nil
		}

		return ConnectivityMsg(ev)
	}
}

func (b StatusBar) tick() tea.Cmd {
	return tea.Tick(statusRefresh, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}
