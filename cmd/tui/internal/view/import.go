package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kasbook/internal/importer"
	"github.com/MrJamesThe3rd/kasbook/internal/ledger"
	"github.com/MrJamesThe3rd/kasbook/internal/syncer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importer *importer.Service
	orch     *syncer.Orchestrator

	state      importState
	filePicker filepicker.Model

	summary importSummary
	status  string
	err     error
}

func NewImportModel(imp *importer.Service, orch *syncer.Orchestrator) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importer:   imp,
		orch:       orch,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import CSV" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == importStateResult {
				m.state = importStateFilePick
				m.err = nil
				m.status = ""

				return m, m.filePicker.Init()
			}

			return m, Back
		}

	case importResultMsg:
		m.state = importStateResult
		m.summary = msg.summary
		m.err = msg.err

		return m, Changed
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV with Date, Description, Account, Debit, Credit columns:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	var b strings.Builder

	if m.summary.imported > 0 || m.err == nil {
		b.WriteString(okText.Render(m.summary.String()))
		b.WriteString("\n")
	}

	for _, f := range m.summary.failed {
		b.WriteString(errText.Render(f))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n(Esc to go back)")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

type importSummary struct {
	imported, mirrored, queued, deferred int
	failed                               []string
}

func (s importSummary) String() string {
	return fmt.Sprintf("Imported %d transactions: %d synced, %d queued, %d retrying.",
		s.imported, s.mirrored, s.queued, s.deferred)
}

// Messages

type importResultMsg struct {
	summary importSummary
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importer.Parse(f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		var sum importSummary

		for i, p := range params {
			res, err := m.orch.Submit(ctx, p)
			if err != nil {
				if errors.Is(err, ledger.ErrValidation) {
					sum.failed = append(sum.failed, fmt.Sprintf("row %d skipped: %v", i+1, err))
					continue
				}

				return importResultMsg{summary: sum, err: err}
			}

			sum.imported++

			switch res.Status {
			case syncer.StatusMirrored:
				sum.mirrored++
			case syncer.StatusQueued:
				sum.queued++
			case syncer.StatusDeferred:
				sum.deferred++
			}
		}

		return importResultMsg{summary: sum}
	}
}
