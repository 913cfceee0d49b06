package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/famvest/internal/backend"
	"github.com/MrJamesThe3rd/famvest/internal/export"
)

type maintenanceState int

const (
	maintenanceStateForm maintenanceState = iota
	maintenanceStateRunning
	maintenanceStateResult
)

const (
	actionRestore = "restore"
	actionBackup  = "backup"
	actionReport  = "report"
	actionMigrate = "migrate"
)

const maintenanceTimeout = 2 * time.Minute

type maintenanceFields struct {
	action string
	path   string
}

type MaintenanceModel struct {
	CommonModel
	app *backend.App

	state   maintenanceState
	form    *huh.Form
	fields  *maintenanceFields
	spinner spinner.Model
	result  string
	err     error
}

func NewMaintenanceModel(app *backend.App, reportDir string) MaintenanceModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := MaintenanceModel{
		app:     app,
		fields:  &maintenanceFields{action: actionBackup, path: reportDir},
		spinner: s,
	}
	m.form = m.buildForm()

	return m
}

func (m MaintenanceModel) Title() string { return "Backup & Maintenance" }

func (m MaintenanceModel) ShortHelp() string {
	switch m.state {
	case maintenanceStateResult:
		return "Esc: back to menu"
	case maintenanceStateRunning:
		return "Working..."
	}

	return "Esc: back | Enter: confirm"
}

func (m MaintenanceModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m MaintenanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.state != maintenanceStateRunning {
		return m, Back
	}

	switch m.state {
	case maintenanceStateForm:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = maintenanceStateRunning
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.runCmd(*m.fields))

	case maintenanceStateRunning:
		if result, ok := msg.(maintenanceResultMsg); ok {
			m.state = maintenanceStateResult
			m.result = result.body
			m.err = result.err

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m MaintenanceModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("Write backup file", actionBackup),
					huh.NewOption("Restore backup file", actionRestore),
					huh.NewOption("Write XLSX report", actionReport),
					huh.NewOption("Migrate legacy holdings", actionMigrate),
				).
				Value(&m.fields.action),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Path").
				DescriptionFunc(func() string {
					switch m.fields.action {
					case actionRestore:
						return "Backup file to restore. Stored holdings are replaced."
					case actionReport:
						return "Directory for the report"
					}

					return "Directory for the backup file"
				}, &m.fields.action).
				Value(&m.fields.path),
		).WithHideFunc(func() bool { return m.fields.action == actionMigrate }),
	).WithWidth(60).WithShowHelp(false)
}

func (m MaintenanceModel) View() string {
	var body string

	switch m.state {
	case maintenanceStateForm:
		body = m.form.View()
	case maintenanceStateRunning:
		body = fmt.Sprintf("%s Working...", m.spinner.View())
	case maintenanceStateResult:
		if m.err != nil {
			body = errorText(m.err)
			break
		}

		body = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Done!"),
			"",
			m.result,
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

type maintenanceResultMsg struct {
	body string
	err  error
}

func (m MaintenanceModel) runCmd(f maintenanceFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()

		body, err := m.run(ctx, f)

		return maintenanceResultMsg{body: body, err: err}
	}
}

func (m MaintenanceModel) run(ctx context.Context, f maintenanceFields) (string, error) {
	switch f.action {
	case actionRestore:
		file, err := os.Open(f.path)
		if err != nil {
			return "", err
		}
		defer file.Close()

		res, err := m.app.Importer.Restore(ctx, file)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Restored %d members and %d holdings.\nMigrated %d legacy holdings.", res.Members, res.Records, res.Migrated), nil

	case actionBackup:
		if err := os.MkdirAll(f.path, 0o755); err != nil {
			return "", err
		}

		path := filepath.Join(f.path, export.BackupFilename(time.Now()))

		file, err := os.Create(path)
		if err != nil {
			return "", err
		}

		if err := m.app.Export.Backup(ctx, file); err != nil {
			file.Close()
			return "", err
		}

		if err := file.Close(); err != nil {
			return "", err
		}

		return "Backup written to " + path, nil

	case actionReport:
		path, err := m.app.Report.WriteFile(ctx, f.path, time.Now())
		if err != nil {
			return "", err
		}

		return "Report written to " + path, nil

	case actionMigrate:
		res, err := m.app.Migrator.Run(ctx)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Migrated %d holdings.", res.Migrated), nil
	}

	return "", fmt.Errorf("unknown action %q", f.action)
}
