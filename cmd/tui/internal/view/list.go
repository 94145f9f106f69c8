package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

var (
	clearedLabels = []string{"All", "Uncleared", "Cleared"}
	dateLabels    = []string{"All Time", "This Month", "Last Month"}
)

type ListModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	state listState
	table table.Model
	txs   []*transaction.Record
	form  *huh.Form

	clearedFilterIdx int
	dateFilterIdx    int

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string

	formPayee    string
	formRemember bool

	now func() time.Time
}

func NewListModel(txSvc *transaction.Service, matchSvc *matching.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 16},
		{Title: "Payee", Width: 30},
		{Title: "Account", Width: 14},
		{Title: "Parser", Width: 10},
		{Title: "Cleared", Width: 8},
	}

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

	return ListModel{
		txService:       txSvc,
		matchingService: matchSvc,
		table:           t,
		now:             time.Now,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit payee | c: toggle cleared | x: delete | f: cleared filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "c":
			return m, m.toggleClearedCmd()
		case "x":
			return m, m.deleteCmd()
		case "f":
			m.clearedFilterIdx = (m.clearedFilterIdx + 1) % len(clearedLabels)
			m.applyFilter()

			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateLabels)
			m.applyFilter()

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *transaction.Record {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formPayee = tx.Payee
	m.formRemember = tx.RawPayee != ""

	fields := []huh.Field{
		huh.NewInput().
			Key("payee").
			Title("Payee").
			Value(&m.formPayee).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("payee cannot be empty")
				}

				return nil
			}),
	}

	if tx.RawPayee != "" {
		fields = append(fields, huh.NewConfirm().
			Key("remember").
			Title("Use for future alerts with this raw payee?").
			Value(&m.formRemember))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
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

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf(
		"Filter: [f] Cleared: %s | [d] Date: %s",
		activeStyle(clearedLabels[m.clearedFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateEdit && m.form != nil {
		raw := ""
		memo := ""

		if tx := m.selected(); tx != nil {
			raw = tx.RawPayee
			memo = tx.Memo
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Edit Transaction\n\nRaw payee: %s\nMemo: %s\n\n%s", raw, memo, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) applyFilter() {
	switch m.clearedFilterIdx {
	case 1:
		m.filter.Cleared = new(false)
	case 2:
		m.filter.Cleared = new(true)
	default:
		m.filter.Cleared = nil
	}

	tf := TimeframeAll

	switch m.dateFilterIdx {
	case 1:
		tf = TimeframeThisMonth
	case 2:
		tf = TimeframeLastMonth
	}

	if tf == TimeframeAll {
		m.filter.StartDate = nil
		m.filter.EndDate = nil

		return
	}

	start, end := DateRange(tf, m.now())
	m.filter.StartDate = &start
	m.filter.EndDate = &end
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		cleared := ""
		if tx.Cleared {
			cleared = "✓"
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			FormatAmount(tx.Amount, tx.Currency),
			tx.Payee,
			tx.Account,
			tx.Parser,
			cleared,
		})
	}

	m.table.SetRows(rows)
}

type loadListMsg struct {
	txs []*transaction.Record
	err error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	payee := strings.TrimSpace(m.formPayee)
	remember := m.formRemember && tx.RawPayee != ""

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.UpdatePayee(ctx, tx.ID, payee); err != nil {
			return listSaveMsg{err: err}
		}

		if remember {
			if _, err := m.matchingService.Learn(ctx, matching.LearnParams{RawPayee: tx.RawPayee, Payee: payee}); err != nil {
				return listSaveMsg{err: err}
			}

			return listSaveMsg{status: fmt.Sprintf("Saved. %q will be used for %q from now on.", payee, tx.RawPayee)}
		}

		return listSaveMsg{status: "Saved."}
	}
}

func (m ListModel) toggleClearedCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listSaveMsg{err: m.txService.SetCleared(ctx, tx.ID, !tx.Cleared)}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, tx.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Deleted %s %s.", FormatDate(tx.Date), tx.Payee)}
	}
}
