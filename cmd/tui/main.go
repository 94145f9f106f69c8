package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/ingest"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/parser"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	txStore "github.com/MrJamesThe3rd/tally/internal/transaction/store"
)

type model struct {
	txService       *transaction.Service
	matchingService *matching.Service
	driver          *ingest.Driver
	registry        *parser.Registry

	currentView View

	ingestView view.IngestModel
	reviewView view.ReviewModel
	listView   view.ListModel
}

type View int

const (
	ViewMenu   View = 0
	ViewIngest View = 1
	ViewReview View = 2
	ViewList   View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))
	matchSvc := matching.NewService(matchingStore.New(db))
	registry := parser.Default()

	// Driver logs would draw over the screen.
	driver := ingest.NewDriver(registry, txSvc,
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithDryRun(cfg.Ingest.DryRun),
		ingest.WithPayeeSuggester(matchSvc),
		ingest.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	return model{
		txService:       txSvc,
		matchingService: matchSvc,
		driver:          driver,
		registry:        registry,
		currentView:     ViewMenu,
		ingestView:      view.NewIngestModel(driver, registry),
		reviewView:      view.NewReviewModel(txSvc, matchSvc),
		listView:        view.NewListModel(txSvc, matchSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewIngest
				m.ingestView = view.NewIngestModel(m.driver, m.registry)

				return m, m.ingestView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.txService, m.matchingService)

				return m, m.reviewView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.matchingService)

				return m, m.listView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewIngest:
		var newModel tea.Model
		newModel, cmd = m.ingestView.Update(msg)
		m.ingestView = newModel.(view.IngestModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Tally\n\n" +
				"1. Ingest Messages\n" +
				"2. Review Uncleared\n" +
				"3. List Transactions\n\n" +
				"Parsers: " + joinNames(m.registry.Names()) + "\n\n" +
				"q. Quit",
		)
	case ViewIngest:
		return m.ingestView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewList:
		return m.listView.View()
	}

	return "Unknown View"
}

func joinNames(names []string) string {
	return lipgloss.NewStyle().Faint(true).Render(strings.Join(names, " → "))
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
