package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type reviewState int

const (
	reviewStateTimeframe reviewState = iota
	reviewStateReviewing
)

// ReviewModel walks through uncleared transactions one at a time. Confirming a
// transaction clears it and teaches the matcher the chosen payee.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	state  reviewState
	picker TimeframePicker

	queue      []*transaction.Record
	current    *transaction.Record
	payeeInput textinput.Model

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(txSvc *transaction.Service, matchSvc *matching.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Payee"
	ti.Width = 50

	return ReviewModel{
		txService:       txSvc,
		matchingService: matchSvc,
		picker:          NewTimeframePicker(),
		payeeInput:      ti,
	}
}

func (m ReviewModel) Title() string { return "Review Uncleared" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReviewing {
		return "Enter: clear & next | Ctrl+S: skip | Esc: back"
	}

	return "Enter: select | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = reviewStateReviewing
		m.loading = true

		return m, m.loadCmd(msg)

	case loadUnclearedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.totalCount = len(msg.txs)

		return m, m.next()

	case suggestionMsg:
		if m.current != nil && m.current.ID == msg.id && msg.payee != "" {
			m.payeeInput.SetValue(msg.payee)
		}

		return m, nil

	case reviewSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		return m, m.next()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if m.state == reviewStateTimeframe {
			if msg.Type == tea.KeyEsc && m.picker.IsSelecting() {
				return m, Back
			}

			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)

			return m, cmd
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyCtrlS:
			return m, m.next()
		case tea.KeyEnter:
			if m.current != nil {
				return m, m.saveCmd(strings.TrimSpace(m.payeeInput.Value()))
			}

			return m, nil
		}
	}

	if m.state == reviewStateTimeframe {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.payeeInput, cmd = m.payeeInput.Update(msg)

	return m, cmd
}

// next pops the queue and asks the matcher for a better payee.
func (m *ReviewModel) next() tea.Cmd {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "All done! Nothing left to clear."
		m.payeeInput.Blur()
		m.payeeInput.SetValue("")

		return nil
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	m.payeeInput.SetValue(m.current.Payee)
	m.payeeInput.Focus()

	return tea.Batch(textinput.Blink, m.suggestCmd(m.current))
}

func (m ReviewModel) View() string {
	if m.state == reviewStateTimeframe {
		return lipgloss.NewStyle().Padding(2).Render(m.picker.View())
	}

	var content string

	switch {
	case m.loading:
		content = "Loading uncleared transactions..."
	case m.current != nil:
		tx := m.current
		info := fmt.Sprintf(
			"Date:    %s\nAmount:  %s\nAccount: %s\nParser:  %s (%s)\nRaw:     %s\n",
			FormatDate(tx.Date),
			FormatAmount(tx.Amount, tx.Currency),
			tx.Account,
			tx.Parser,
			tx.Memo,
			tx.RawPayee,
		)
		content = fmt.Sprintf("%s\n\n%s\nPayee:\n%s\n\n(Enter to clear & next, Esc to quit)", m.status, info, m.payeeInput.View())
	default:
		content = m.status + "\n\n(Esc to back)"
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type loadUnclearedMsg struct {
	txs []*transaction.Record
	err error
}

func (m ReviewModel) loadCmd(tf TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		filter := transaction.ListFilter{Cleared: new(false)}
		if !tf.All {
			filter.StartDate = new(tf.Start)
			filter.EndDate = new(tf.End)
		}

		txs, err := m.txService.List(ctx, filter)

		return loadUnclearedMsg{txs: txs, err: err}
	}
}

type suggestionMsg struct {
	id    uuid.UUID
	payee string
}

func (m ReviewModel) suggestCmd(tx *transaction.Record) tea.Cmd {
	if tx.RawPayee == "" {
		return nil
	}

	id, account, raw := tx.ID, tx.Account, tx.RawPayee

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		payee, _ := m.matchingService.Suggest(ctx, account, raw)

		return suggestionMsg{id: id, payee: payee}
	}
}

type reviewSavedMsg struct {
	err error
}

func (m ReviewModel) saveCmd(payee string) tea.Cmd {
	tx := m.current

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if payee != "" && payee != tx.Payee {
			if err := m.txService.UpdatePayee(ctx, tx.ID, payee); err != nil {
				return reviewSavedMsg{err: err}
			}
		}

		if payee != "" && tx.RawPayee != "" {
			if _, err := m.matchingService.Learn(ctx, matching.LearnParams{RawPayee: tx.RawPayee, Payee: payee}); err != nil {
				return reviewSavedMsg{err: err}
			}
		}

		return reviewSavedMsg{err: m.txService.SetCleared(ctx, tx.ID, true)}
	}
}
