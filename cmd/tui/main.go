package main

import (
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/famvest/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/famvest/internal/backend"
	"github.com/MrJamesThe3rd/famvest/internal/config"
)

type model struct {
	app *backend.App
	cfg *config.Config

	currentView View
	size        tea.WindowSizeMsg

	dashboardView   view.DashboardModel
	holdingsView    view.HoldingsModel
	maintenanceView view.MaintenanceModel
}

type View int

const (
	ViewMenu        View = 0
	ViewDashboard   View = 1
	ViewHoldings    View = 2
	ViewMaintenance View = 3
)

func initialModel() (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Log lines would corrupt the alternate screen.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := view.DbCtx()
	defer cancel()

	app, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	if err := app.Bootstrap(ctx); err != nil {
		app.Close()
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to prepare storage", "error", err)
		os.Exit(1)
	}

	return model{
		app:         app,
		cfg:         cfg,
		currentView: ViewMenu,
	}, func() { _ = app.Close() }
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.app.Portfolio)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewMaintenance
				m.maintenanceView = view.NewMaintenanceModel(m.app, m.cfg.Report.Dir)

				return m, m.maintenanceView.Init()
			}
		}
	case view.OpenMemberMsg:
		m.currentView = ViewHoldings
		m.holdingsView = view.NewHoldingsModel(m.app.Holdings, m.app.Portfolio, msg.MemberID)

		return m, tea.Batch(m.holdingsView.Init(), m.resize())
	case view.BackMsg:
		if m.currentView == ViewHoldings {
			m.currentView = ViewDashboard
			m.dashboardView = view.NewDashboardModel(m.app.Portfolio)

			return m, tea.Batch(m.dashboardView.Init(), m.resize())
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewHoldings:
		var newModel tea.Model
		newModel, cmd = m.holdingsView.Update(msg)
		m.holdingsView = newModel.(view.HoldingsModel)
	case ViewMaintenance:
		var newModel tea.Model
		newModel, cmd = m.maintenanceView.Update(msg)
		m.maintenanceView = newModel.(view.MaintenanceModel)
	}

	return m, cmd
}

// resize replays the last window size to a freshly built view.
func (m model) resize() tea.Cmd {
	if m.size.Height == 0 {
		return nil
	}

	size := m.size

	return func() tea.Msg { return size }
}

func (m model) View() string {
	var (
		content string
		help    string
	)

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.cfg.App.Name + "\n\n" +
				"1. Household Dashboard\n" +
				"2. Backup & Maintenance\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		content, help = m.dashboardView.View(), m.dashboardView.ShortHelp()
	case ViewHoldings:
		content, help = m.holdingsView.View(), m.holdingsView.ShortHelp()
	case ViewMaintenance:
		content, help = m.maintenanceView.View(), m.maintenanceView.ShortHelp()
	default:
		return "Unknown View"
	}

	return content + "\n" + lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(help)
}

func main() {
	m, closeApp := initialModel()
	defer closeApp()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		closeApp()
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
