package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/export"
)

const dbTimeout = 5 * time.Second

// FormatMoney renders d in rupees with Indian digit grouping.
func FormatMoney(d decimal.Decimal) string {
	return export.Money(d)
}

func FormatPercent(d decimal.Decimal) string {
	return export.Percent(d)
}

func FormatUnits(d decimal.Decimal) string {
	return d.Round(4).String()
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for storage operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("enter a number")
	}

	return d, nil
}

func validateDecimal(s string) error {
	_, err := parseDecimal(s)
	return err
}

func validateOptionalDecimal(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return validateDecimal(s)
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

func optionalDecimal(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	d, err := parseDecimal(s)
	if err != nil {
		return nil
	}

	return &d
}

func optionalDate(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return nil
	}

	return &t
}

func newTable(columns []table.Column) table.Model {
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

	return t
}

func gainStyle(d decimal.Decimal) lipgloss.Style {
	if d.IsNegative() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	}

	return lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
}

func errorText(err error) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + err.Error())
}
