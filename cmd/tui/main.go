package main

import (
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/moumensalem/masroof/cmd/tui/internal/view"
	"github.com/moumensalem/masroof/internal/cloudsync"
	"github.com/moumensalem/masroof/internal/config"
	"github.com/moumensalem/masroof/internal/export"
	"github.com/moumensalem/masroof/internal/importer"
	"github.com/moumensalem/masroof/internal/ledger"
	ledgerStore "github.com/moumensalem/masroof/internal/ledger/store"
	"github.com/moumensalem/masroof/internal/remote"
)

type model struct {
	state     *ledger.State
	session   *cloudsync.Session
	client    *remote.Client
	scheduler *cloudsync.Scheduler
	exportSvc *export.Service
	importSvc *importer.Service
	local     *ledgerStore.Store

	currentView View

	homeView     view.HomeModel
	historyView  view.HistoryModel
	walletsView  view.WalletsModel
	settingsView view.SettingsModel
}

type View int

const (
	ViewMenu     View = 0
	ViewHome     View = 1
	ViewHistory  View = 2
	ViewWallets  View = 3
	ViewSettings View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dataDir := cfg.Client.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to resolve home directory", "error", err)
			os.Exit(1)
		}

		dataDir = filepath.Join(home, ".masroof")
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "dir", dataDir, "error", err)
		os.Exit(1)
	}

	local := ledgerStore.New(dataDir)

	doc, err := local.Load()
	if err != nil {
		slog.Error("failed to load ledger", "error", err)
		os.Exit(1)
	}

	state := ledger.New(doc)
	client := remote.New(cfg.Client.APIBaseURL)
	session := cloudsync.NewSession(state, local, client, client)
	scheduler := cloudsync.NewScheduler(client, state, session.Current, cfg.Client.SyncDelay)

	// Every user mutation persists locally right away and arms the
	// debounced cloud push.
	state.OnChange(func(doc *ledger.Document) {
		if err := local.Save(doc); err != nil {
			slog.Warn("failed to persist ledger", "error", err)
		}

		scheduler.Schedule()
	})

	exportSvc := export.NewService(state, local, scheduler)
	importSvc := importer.NewService(state)

	return model{
		state:        state,
		session:      session,
		client:       client,
		scheduler:    scheduler,
		exportSvc:    exportSvc,
		importSvc:    importSvc,
		local:        local,
		currentView:  ViewMenu,
		homeView:     view.NewHomeModel(state),
		historyView:  view.NewHistoryModel(state, session),
		walletsView:  view.NewWalletsModel(state),
		settingsView: view.NewSettingsModel(state, session, client, exportSvc, importSvc, local, scheduler),
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
				m.currentView = ViewHome
				m.homeView = view.NewHomeModel(m.state)

				return m, m.homeView.Init()
			case "2":
				m.currentView = ViewHistory
				m.historyView = view.NewHistoryModel(m.state, m.session)

				return m, m.historyView.Init()
			case "3":
				m.currentView = ViewWallets
				m.walletsView = view.NewWalletsModel(m.state)

				return m, m.walletsView.Init()
			case "4":
				m.currentView = ViewSettings
				m.settingsView = view.NewSettingsModel(
					m.state, m.session, m.client, m.exportSvc, m.importSvc, m.local, m.scheduler)

				return m, m.settingsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewHome:
		var newModel tea.Model
		newModel, cmd = m.homeView.Update(msg)
		m.homeView = newModel.(view.HomeModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewWallets:
		var newModel tea.Model
		newModel, cmd = m.walletsView.Update(msg)
		m.walletsView = newModel.(view.WalletsModel)
	case ViewSettings:
		var newModel tea.Model
		newModel, cmd = m.settingsView.Update(msg)
		m.settingsView = newModel.(view.SettingsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Masroof\n\n" +
				"1. Home\n" +
				"2. History\n" +
				"3. Wallets\n" +
				"4. Settings\n\n" +
				"q. Quit",
		)
	case ViewHome:
		return m.homeView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewWallets:
		return m.walletsView.View()
	case ViewSettings:
		return m.settingsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
