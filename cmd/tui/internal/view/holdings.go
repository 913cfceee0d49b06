package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
)

type holdingsState int

const (
	holdingsStateBrowse holdingsState = iota
	holdingsStateCreate
	holdingsStateTransaction
	holdingsStatePrice
	holdingsStateDelete
)

// holdingFields backs the huh forms and is shared by every copy of the model.
type holdingFields struct {
	name     string
	category string
	txType   string
	units    string
	price    string
	amount   string
	date     string
	rate     string
	tenure   string
	confirm  bool
}

type HoldingsModel struct {
	CommonModel
	holdings  *holding.Service
	portfolio *portfolio.Service
	memberID  string

	state   holdingsState
	table   table.Model
	detail  *portfolio.MemberDetail
	form    *huh.Form
	fields  *holdingFields
	loading bool
	err     error
	status  string
}

func NewHoldingsModel(holdings *holding.Service, portfolioSvc *portfolio.Service, memberID string) HoldingsModel {
	return HoldingsModel{
		holdings:  holdings,
		portfolio: portfolioSvc,
		memberID:  memberID,
		loading:   true,
		fields:    &holdingFields{},
		table: newTable([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Category", Width: 18},
			{Title: "Units", Width: 10},
			{Title: "Avg Price", Width: 11},
			{Title: "Invested", Width: 13},
			{Title: "Value", Width: 13},
			{Title: "Gain %", Width: 8},
			{Title: "Maturity", Width: 22},
		}),
	}
}

func (m HoldingsModel) Title() string {
	if m.detail == nil {
		return "Holdings"
	}

	return m.detail.Member.Name + "'s Holdings"
}

func (m HoldingsModel) ShortHelp() string {
	if m.state != holdingsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new holding | t: add transaction | p: update price | x: delete | r: refresh"
}

func (m HoldingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m HoldingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadHoldingsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.detail = msg.detail
			m.refreshTable()
		}

		return m, nil

	case holdingSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = holdingsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	if m.state == holdingsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m HoldingsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.openForm(holdingsStateCreate)
		case "t", "p", "x":
			if m.selected() == nil {
				return m, nil
			}

			return m.openForm(map[string]holdingsState{
				"t": holdingsStateTransaction,
				"p": holdingsStatePrice,
				"x": holdingsStateDelete,
			}[keyMsg.String()])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HoldingsModel) openForm(state holdingsState) (tea.Model, tea.Cmd) {
	*m.fields = holdingFields{txType: string(holding.TypeBuy), category: string(holding.CategoryMutualFunds)}

	switch state {
	case holdingsStateCreate:
		m.form = m.createForm()
	case holdingsStateTransaction:
		m.form = m.transactionForm()
	case holdingsStatePrice:
		if p := m.selected().CurrentUnitPrice; p != nil {
			m.fields.price = p.String()
		}

		m.form = m.priceForm()
	case holdingsStateDelete:
		m.form = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", m.selected().Name)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fields.confirm),
		)).WithWidth(45).WithShowHelp(false)
	}

	m.state = state
	m.table.Blur()

	return m, m.form.Init()
}

func (m HoldingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = holdingsStateBrowse
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

func (m HoldingsModel) createForm() *huh.Form {
	options := make([]huh.Option[string], len(holding.Categories))
	for i, c := range holding.Categories {
		options[i] = huh.NewOption(string(c), string(c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.fields.name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name cannot be empty")
				}

				return nil
			}),
			huh.NewSelect[string]().Title("Category").Options(options...).Value(&m.fields.category),
		),
		huh.NewGroup(
			huh.NewInput().Title("Units").Value(&m.fields.units).Validate(validateDecimal),
			huh.NewInput().Title("Price per unit").Value(&m.fields.price).Validate(validateDecimal),
			huh.NewInput().Title("Amount").Description("Leave empty for units × price").
				Value(&m.fields.amount).Validate(validateOptionalDecimal),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&m.fields.date).Validate(validateDate),
		),
		huh.NewGroup(
			huh.NewInput().Title("Interest rate %").Description("Optional").
				Value(&m.fields.rate).Validate(validateOptionalDecimal),
			huh.NewInput().Title("Tenure in years").Description("Optional").
				Value(&m.fields.tenure).Validate(validateOptionalDecimal),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m HoldingsModel) transactionForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Type").Options(
				huh.NewOption("Buy", string(holding.TypeBuy)),
				huh.NewOption("Sell", string(holding.TypeSell)),
			).Value(&m.fields.txType),
			huh.NewInput().Title("Units").Value(&m.fields.units).Validate(validateDecimal),
			huh.NewInput().Title("Price per unit").Value(&m.fields.price).Validate(validateDecimal),
			huh.NewInput().Title("Amount").Description("Leave empty for units × price").
				Value(&m.fields.amount).Validate(validateOptionalDecimal),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&m.fields.date).Validate(validateDate),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m HoldingsModel) priceForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Current unit price").Value(&m.fields.price).Validate(validateDecimal),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m HoldingsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading holdings...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err))
	}

	t := m.detail.Totals
	footer := fmt.Sprintf("Total: invested %s | value %s | %s",
		FormatMoney(t.TotalInvested),
		FormatMoney(t.CurrentValue),
		gainStyle(t.GainLoss).Render(fmt.Sprintf("%s (%s)", FormatMoney(t.GainLoss), FormatPercent(t.GainLossPercent))),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(m.Title()),
		tableView,
		lipgloss.NewStyle().PaddingTop(1).Render(footer),
	)

	if m.state != holdingsStateBrowse && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.formTitle() + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m HoldingsModel) formTitle() string {
	switch m.state {
	case holdingsStateCreate:
		return "New Holding"
	case holdingsStateTransaction:
		return "Add Transaction to " + m.selected().Name
	case holdingsStatePrice:
		return "Update Price of " + m.selected().Name
	case holdingsStateDelete:
		return "Delete Holding"
	}

	return ""
}

func (m HoldingsModel) selected() *holding.Holding {
	if m.detail == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.detail.Holdings) {
		return nil
	}

	return m.detail.Holdings[idx].Holding
}

func (m *HoldingsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.detail.Holdings))
	for _, hd := range m.detail.Holdings {
		maturity := ""
		if hd.Maturity != nil {
			maturity = fmt.Sprintf("%s on %s", FormatMoney(hd.Maturity.Value), FormatDate(hd.Maturity.Date))
		}

		rows = append(rows, table.Row{
			hd.Holding.Name,
			string(hd.Holding.Category),
			FormatUnits(hd.Summary.TotalUnits),
			FormatUnits(hd.Summary.AvgBuyPrice),
			FormatMoney(hd.Summary.TotalInvested),
			FormatMoney(hd.Summary.CurrentValue),
			FormatPercent(hd.Summary.GainLossPercent),
			maturity,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadHoldingsMsg struct {
	detail *portfolio.MemberDetail
	err    error
}

func (m HoldingsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.portfolio.MemberDetail(ctx, m.memberID)

		return loadHoldingsMsg{detail: d, err: err}
	}
}

type holdingSaveMsg struct {
	status string
	err    error
}

func (m HoldingsModel) saveCmd() tea.Cmd {
	f := *m.fields
	state := m.state
	selected := m.selected()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		units, _ := parseDecimal(f.units)
		price, _ := parseDecimal(f.price)

		switch state {
		case holdingsStateCreate:
			h, err := m.holdings.Create(ctx, m.memberID, holding.CreateParams{
				Name:         f.name,
				Category:     holding.Category(f.category),
				Units:        units,
				Price:        price,
				Amount:       optionalDecimal(f.amount),
				Date:         optionalDate(f.date),
				InterestRate: optionalDecimal(f.rate),
				TenureYears:  optionalDecimal(f.tenure),
			})
			if err != nil {
				return holdingSaveMsg{err: err}
			}

			return holdingSaveMsg{status: "Added " + h.Name}

		case holdingsStateTransaction:
			_, err := m.holdings.AddTransaction(ctx, m.memberID, selected.ID, holding.TransactionParams{
				Type:   holding.TransactionType(f.txType),
				Units:  units,
				Price:  price,
				Amount: optionalDecimal(f.amount),
				Date:   optionalDate(f.date),
			})
			if err != nil {
				return holdingSaveMsg{err: err}
			}

			return holdingSaveMsg{status: fmt.Sprintf("Recorded %s of %s", f.txType, selected.Name)}

		case holdingsStatePrice:
			_, err := m.holdings.Update(ctx, m.memberID, selected.ID, holding.UpdateParams{CurrentUnitPrice: &price})
			if err != nil {
				return holdingSaveMsg{err: err}
			}

			return holdingSaveMsg{status: "Updated price of " + selected.Name}

		case holdingsStateDelete:
			if !f.confirm {
				return holdingSaveMsg{}
			}

			if err := m.holdings.Delete(ctx, m.memberID, selected.ID); err != nil {
				return holdingSaveMsg{err: err}
			}

			return holdingSaveMsg{status: "Deleted " + selected.Name}
		}

		return holdingSaveMsg{}
	}
}
