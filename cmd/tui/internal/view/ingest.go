package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/message"
	"github.com/MrJamesThe3rd/tally/internal/parser"
	"github.com/MrJamesThe3rd/tally/internal/source"
	"github.com/MrJamesThe3rd/tally/internal/source/local"
)

const ingestTimeout = 2 * time.Minute

// quietLogger keeps source logs from drawing over the screen.
var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type ingestState int

const (
	ingestStateFilePick ingestState = iota
	ingestStateLoading
	ingestStatePreview
	ingestStateWriting
	ingestStateResult
)

// IngestModel loads an SMS export or a saved e-mail, shows what every message parses
// to and writes the batch on confirmation.
type IngestModel struct {
	CommonModel
	driver   *ingest.Driver
	registry *parser.Registry

	state      ingestState
	filePicker filepicker.Model

	msgs        []message.Message
	outcomes    []parser.Outcome
	outcomeList list.Model

	status string
	err    error
}

func NewIngestModel(driver *ingest.Driver, registry *parser.Registry) IngestModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".json", ".eml", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = true
	fp.FileAllowed = true
	fp.SetHeight(15)

	return IngestModel{
		driver:     driver,
		registry:   registry,
		filePicker: fp,
	}
}

func (m IngestModel) Title() string { return "Ingest Messages" }

func (m IngestModel) ShortHelp() string {
	if m.state == ingestStatePreview {
		return "w: write batch | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m IngestModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m IngestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == ingestStatePreview {
			return m.updatePreview(msg)
		}

	case previewResultMsg:
		if msg.err != nil {
			m.state = ingestStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.msgs = msg.msgs
		m.outcomes = msg.outcomes
		m.state = ingestStatePreview

		items := make([]list.Item, len(m.outcomes))
		for i, o := range m.outcomes {
			items[i] = outcomeItem{outcome: o}
		}

		m.outcomeList = list.New(items, outcomeDelegate{}, 100, 20)
		m.outcomeList.Title = previewTitle(m.outcomes)
		m.outcomeList.SetShowStatusBar(false)
		m.outcomeList.SetFilteringEnabled(false)
		m.outcomeList.SetShowHelp(false)

		return m, nil

	case writeResultMsg:
		m.state = ingestStateResult
		m.status = summaryLine(msg.summary)

		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("%s\nError: %v", m.status, msg.err)
		}

		return m, nil
	}

	if m.state != ingestStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = ingestStateLoading
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m IngestModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case ingestStatePreview, ingestStateResult:
		m.state = ingestStateFilePick
		m.msgs = nil
		m.outcomes = nil
		m.err = nil
		m.status = ""

		return m, nil
	case ingestStateLoading, ingestStateWriting:
		return m, nil
	}

	return m, Back
}

func (m IngestModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "w" {
		m.state = ingestStateWriting
		m.status = fmt.Sprintf("Writing %d messages...", len(m.msgs))

		return m, m.writeCmd()
	}

	var cmd tea.Cmd
	m.outcomeList, cmd = m.outcomeList.Update(msg)

	return m, cmd
}

func (m IngestModel) View() string {
	switch m.state {
	case ingestStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select an SMS export (.json), a saved e-mail or a mail directory:\n\n" + m.filePicker.View(),
		)
	case ingestStateLoading, ingestStateWriting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case ingestStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.outcomeList.View())
	case ingestStateResult:
		return m.viewResult()
	}

	return ""
}

func (m IngestModel) viewResult() string {
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Padding(2).Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
	)
}

func previewTitle(outcomes []parser.Outcome) string {
	var parsed, unmatched, failed int

	for _, o := range outcomes {
		switch o.Status {
		case parser.StatusParsed:
			parsed++
		case parser.StatusNoMatch:
			unmatched++
		case parser.StatusFailed:
			failed++
		}
	}

	return fmt.Sprintf("%d parsed, %d unmatched, %d failed", parsed, unmatched, failed)
}

func summaryLine(s ingest.Summary) string {
	if s.DryRun {
		return fmt.Sprintf("Dry run: %d of %d messages parsed, nothing written.", s.Parsed, s.Messages)
	}

	return fmt.Sprintf("Wrote %d transactions (%d already imported) from %d messages.", s.Written, s.Duplicates, s.Messages)
}

type previewResultMsg struct {
	msgs     []message.Message
	outcomes []parser.Outcome
	err      error
}

type writeResultMsg struct {
	summary ingest.Summary
	err     error
}

func (m IngestModel) previewCmd(path string) tea.Cmd {
	registry := m.registry

	return func() tea.Msg {
		src, err := local.Open(path, quietLogger)
		if err != nil {
			return previewResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		msgs, err := source.Collect(ctx, quietLogger, src)
		if err != nil {
			return previewResultMsg{err: err}
		}

		outcomes := make([]parser.Outcome, len(msgs))
		for i, msg := range msgs {
			outcomes[i] = registry.Process(msg)
		}

		return previewResultMsg{msgs: msgs, outcomes: outcomes}
	}
}

func (m IngestModel) writeCmd() tea.Cmd {
	driver := m.driver
	msgs := m.msgs

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		summary, err := driver.Run(ctx, msgs)

		return writeResultMsg{summary: summary, err: err}
	}
}

type outcomeItem struct {
	outcome parser.Outcome
}

func (i outcomeItem) Title() string       { return i.outcome.Message.ID }
func (i outcomeItem) Description() string { return i.outcome.Message.Preview() }
func (i outcomeItem) FilterValue() string { return i.outcome.Message.Body }

type outcomeDelegate struct{}

func (d outcomeDelegate) Height() int                             { return 2 }
func (d outcomeDelegate) Spacing() int                            { return 0 }
func (d outcomeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

var (
	parsedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noMatchStyle = lipgloss.NewStyle().Faint(true)
)

func (d outcomeDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(outcomeItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	o := item.outcome

	var line1, line2 string

	switch o.Status {
	case parser.StatusParsed:
		tx := o.Transaction
		line1 = parsedStyle.Render(fmt.Sprintf("%-8s", o.Parser)) + fmt.Sprintf(" %s  %s  %s",
			FormatDate(tx.Date), FormatAmount(tx.Amount, tx.Currency), tx.Payee)

		flags := []string{tx.Account, tx.Memo}
		if !tx.Cleared {
			flags = append(flags, "uncleared")
		}

		line2 = "      " + strings.Join(flags, " · ")
	case parser.StatusFailed:
		line1 = failedStyle.Render(fmt.Sprintf("%-8s", o.Parser)) + " " + o.Err.Error()
		line2 = "      " + o.Message.Preview()
	default:
		line1 = noMatchStyle.Render(fmt.Sprintf("%-8s", "-")) + " no parser matched"
		line2 = "      " + o.Message.Preview()
	}

	fmt.Fprintf(w, "%s%s\n%s", cursor, line1, line2)
}
