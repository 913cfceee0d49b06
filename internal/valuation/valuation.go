// Package valuation turns transaction ledgers into point-in-time financial summaries.
//
// Every function is pure and recomputes from the ledger; division by zero
// degrades to zero rather than failing.
package valuation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
)

var hundred = decimal.NewFromInt(100)

// Summary is the valuation of a single holding.
type Summary struct {
	// TotalInvested is buy outlay minus sell proceeds.
	TotalInvested   decimal.Decimal
	TotalUnits      decimal.Decimal
	AvgBuyPrice     decimal.Decimal
	CurrentValue    decimal.Decimal
	GainLoss        decimal.Decimal
	GainLossPercent decimal.Decimal
}

// Totals aggregates summaries across holdings or members.
type Totals struct {
	TotalInvested   decimal.Decimal
	CurrentValue    decimal.Decimal
	GainLoss        decimal.Decimal
	GainLossPercent decimal.Decimal
	Holdings        int
}

func zeroSummary() Summary {
	return Summary{
		TotalInvested:   decimal.Zero,
		TotalUnits:      decimal.Zero,
		AvgBuyPrice:     decimal.Zero,
		CurrentValue:    decimal.Zero,
		GainLoss:        decimal.Zero,
		GainLossPercent: decimal.Zero,
	}
}

// Summarize values one holding at its current unit price, falling back to
// the average buy price when no usable price is stored.
func Summarize(h *holding.Holding) Summary {
	if h == nil || len(h.Transactions) == 0 {
		return zeroSummary()
	}

	var (
		buyAmount  = decimal.Zero
		buyUnits   = decimal.Zero
		sellAmount = decimal.Zero
		units      = decimal.Zero
	)

	for _, tx := range h.Transactions {
		switch tx.Type {
		case holding.TypeBuy:
			buyAmount = buyAmount.Add(tx.Amount)
			buyUnits = buyUnits.Add(tx.Units)
			units = units.Add(tx.Units)
		case holding.TypeSell:
			sellAmount = sellAmount.Add(tx.Amount)
			units = units.Sub(tx.Units)
		}
	}

	avgBuyPrice := safeDiv(buyAmount, buyUnits)

	price := avgBuyPrice
	if h.CurrentUnitPrice != nil && !h.CurrentUnitPrice.IsNegative() {
		price = *h.CurrentUnitPrice
	}

	currentValue := units.Mul(price)
	gainLoss := currentValue.Add(sellAmount).Sub(buyAmount)

	return Summary{
		TotalInvested:   buyAmount.Sub(sellAmount),
		TotalUnits:      units,
		AvgBuyPrice:     avgBuyPrice,
		CurrentValue:    currentValue,
		GainLoss:        gainLoss,
		GainLossPercent: percent(gainLoss, buyAmount),
	}
}

// Aggregate sums summaries field by field. The percentage is recomputed from
// the summed figures so large holdings weigh more than small ones.
func Aggregate(summaries ...Summary) Totals {
	t := Totals{
		TotalInvested: lo.Reduce(summaries, func(acc decimal.Decimal, s Summary, _ int) decimal.Decimal {
			return acc.Add(s.TotalInvested)
		}, decimal.Zero),
		CurrentValue: lo.Reduce(summaries, func(acc decimal.Decimal, s Summary, _ int) decimal.Decimal {
			return acc.Add(s.CurrentValue)
		}, decimal.Zero),
		GainLoss: lo.Reduce(summaries, func(acc decimal.Decimal, s Summary, _ int) decimal.Decimal {
			return acc.Add(s.GainLoss)
		}, decimal.Zero),
		Holdings: len(summaries),
	}
	t.GainLossPercent = percent(t.GainLoss, t.TotalInvested)

	return t
}

// Combine merges already aggregated totals, e.g. members into a household.
func Combine(totals ...Totals) Totals {
	t := Totals{
		TotalInvested: lo.Reduce(totals, func(acc decimal.Decimal, x Totals, _ int) decimal.Decimal {
			return acc.Add(x.TotalInvested)
		}, decimal.Zero),
		CurrentValue: lo.Reduce(totals, func(acc decimal.Decimal, x Totals, _ int) decimal.Decimal {
			return acc.Add(x.CurrentValue)
		}, decimal.Zero),
		GainLoss: lo.Reduce(totals, func(acc decimal.Decimal, x Totals, _ int) decimal.Decimal {
			return acc.Add(x.GainLoss)
		}, decimal.Zero),
		Holdings: lo.SumBy(totals, func(x Totals) int { return x.Holdings }),
	}
	t.GainLossPercent = percent(t.GainLoss, t.TotalInvested)

	return t
}

// SummarizeAll values every holding and aggregates the result.
func SummarizeAll(holdings []*holding.Holding) Totals {
	return Aggregate(lo.Map(holdings, func(h *holding.Holding, _ int) Summary {
		return Summarize(h)
	})...)
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}

	return a.Div(b)
}

func percent(part, base decimal.Decimal) decimal.Decimal {
	return safeDiv(part, base).Mul(hundred)
}
