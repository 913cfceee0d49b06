package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
)

type DashboardModel struct {
	CommonModel
	portfolio *portfolio.Service

	table     table.Model
	dashboard *portfolio.Dashboard
	loading   bool
	err       error
}

func NewDashboardModel(svc *portfolio.Service) DashboardModel {
	return DashboardModel{
		portfolio: svc,
		loading:   true,
		table: newTable([]table.Column{
			{Title: "Member", Width: 20},
			{Title: "Holdings", Width: 9},
			{Title: "Invested", Width: 14},
			{Title: "Value", Width: 14},
			{Title: "Gain/Loss", Width: 14},
			{Title: "Gain %", Width: 9},
		}),
	}
}

func (m DashboardModel) Title() string { return "Household Dashboard" }
func (m DashboardModel) ShortHelp() string {
	return "Esc: back | Enter: open member | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDashboardMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.dashboard = msg.dashboard
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			if m.dashboard == nil {
				return m, nil
			}

			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.dashboard.Members) {
				return m, nil
			}

			id := m.dashboard.Members[idx].Member.ID

			return m, func() tea.Msg { return OpenMemberMsg{MemberID: id} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading portfolio...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err))
	}

	h := m.dashboard.Household

	footer := fmt.Sprintf("Household: %d holdings | invested %s | value %s | %s",
		h.Holdings,
		FormatMoney(h.TotalInvested),
		FormatMoney(h.CurrentValue),
		gainStyle(h.GainLoss).Render(fmt.Sprintf("%s (%s)", FormatMoney(h.GainLoss), FormatPercent(h.GainLossPercent))),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(m.Title()),
			tableView,
			lipgloss.NewStyle().PaddingTop(1).Render(footer),
		),
	)
}

func (m *DashboardModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.dashboard.Members))
	for _, mt := range m.dashboard.Members {
		rows = append(rows, table.Row{
			mt.Member.Avatar + " " + mt.Member.Name,
			strconv.Itoa(mt.Totals.Holdings),
			FormatMoney(mt.Totals.TotalInvested),
			FormatMoney(mt.Totals.CurrentValue),
			FormatMoney(mt.Totals.GainLoss),
			FormatPercent(mt.Totals.GainLossPercent),
		})
	}

	m.table.SetRows(rows)
}

type loadDashboardMsg struct {
	dashboard *portfolio.Dashboard
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.portfolio.Dashboard(ctx)

		return loadDashboardMsg{dashboard: d, err: err}
	}
}
