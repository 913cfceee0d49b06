// Package report renders the household portfolio as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
	"github.com/MrJamesThe3rd/famvest/internal/valuation"
)

const HouseholdSheet = "Household"

var (
	householdHeader = []string{"Member", "Holdings", "Invested", "Current Value", "Gain/Loss", "Gain %"}
	memberHeader    = []string{
		"Name", "Category", "Units", "Avg Buy Price", "Current Price",
		"Invested", "Current Value", "Gain/Loss", "Gain %", "Maturity Value", "Maturity Date",
	}
)

type Source interface {
	Dashboard(ctx context.Context) (*portfolio.Dashboard, error)
	MemberDetail(ctx context.Context, memberID string) (*portfolio.MemberDetail, error)
}

type Generator struct {
	source Source
}

func New(source Source) *Generator {
	return &Generator{source: source}
}

// Generate builds a workbook with a household sheet followed by one sheet per member.
func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	dashboard, err := g.source.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("building dashboard: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("closing workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", HouseholdSheet); err != nil {
		return nil, fmt.Errorf("naming household sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#d9ead3"}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeRow(f, HouseholdSheet, 1, toCells(householdHeader)); err != nil {
		return nil, err
	}

	for i, mt := range dashboard.Members {
		if err := writeRow(f, HouseholdSheet, i+2, totalsRow(mt.Member.Name, mt.Totals)); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, HouseholdSheet, len(dashboard.Members)+2, totalsRow("Total", dashboard.Household)); err != nil {
		return nil, err
	}

	if err := styleHeader(f, HouseholdSheet, len(householdHeader), header); err != nil {
		return nil, err
	}

	used := map[string]int{strings.ToLower(HouseholdSheet): 1}

	for _, mt := range dashboard.Members {
		detail, err := g.source.MemberDetail(ctx, mt.Member.ID)
		if err != nil {
			return nil, fmt.Errorf("building detail of %s: %w", mt.Member.ID, err)
		}

		sheet := sheetName(mt.Member.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", sheet, err)
		}

		if err := fillMember(f, sheet, detail); err != nil {
			return nil, err
		}

		if err := styleHeader(f, sheet, len(memberHeader), header); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile stores a freshly generated report under dir and returns its path.
func (g *Generator) WriteFile(ctx context.Context, dir string, at time.Time) (string, error) {
	data, err := g.Generate(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, Filename(at))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return path, nil
}

func Filename(at time.Time) string {
	return fmt.Sprintf("household-%s.xlsx", at.Format("20060102-150405"))
}

func fillMember(f *excelize.File, sheet string, detail *portfolio.MemberDetail) error {
	if err := writeRow(f, sheet, 1, toCells(memberHeader)); err != nil {
		return err
	}

	for i, hd := range detail.Holdings {
		price := hd.Summary.AvgBuyPrice
		if hd.Holding.CurrentUnitPrice != nil && !hd.Holding.CurrentUnitPrice.IsNegative() {
			price = *hd.Holding.CurrentUnitPrice
		}

		row := []any{
			hd.Holding.Name,
			string(hd.Holding.Category),
			number(hd.Summary.TotalUnits),
			number(hd.Summary.AvgBuyPrice),
			number(price),
			number(hd.Summary.TotalInvested),
			number(hd.Summary.CurrentValue),
			number(hd.Summary.GainLoss),
			number(hd.Summary.GainLossPercent.Round(2)),
			"",
			"",
		}

		if hd.Maturity != nil {
			row[9] = number(hd.Maturity.Value)
			row[10] = hd.Maturity.Date.Format(time.DateOnly)
		}

		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	total := make([]any, len(memberHeader))
	total[0] = "Total"
	total[5] = number(detail.Totals.TotalInvested)
	total[6] = number(detail.Totals.CurrentValue)
	total[7] = number(detail.Totals.GainLoss)
	total[8] = number(detail.Totals.GainLossPercent.Round(2))

	return writeRow(f, sheet, len(detail.Holdings)+2, total)
}

func totalsRow(label string, t valuation.Totals) []any {
	return []any{
		label,
		t.Holdings,
		number(t.TotalInvested),
		number(t.CurrentValue),
		number(t.GainLoss),
		number(t.GainLossPercent.Round(2)),
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
	}

	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	return nil
}

// sheetName makes a valid, unique sheet name. Excel limits names to 31
// characters and forbids a few symbols.
func sheetName(name string, used map[string]int) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}

		return r
	}, strings.TrimSpace(name))

	if clean == "" {
		clean = "Member"
	}

	clean = truncate(clean, 28)

	key := strings.ToLower(clean)
	used[key]++

	if n := used[key]; n > 1 {
		return fmt.Sprintf("%s %d", clean, n)
	}

	return clean
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}

func toCells(header []string) []any {
	out := make([]any, len(header))
	for i, h := range header {
		out[i] = h
	}

	return out
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
