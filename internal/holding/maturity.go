package holding

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxTenureYears bounds the tenure of interest-bearing holdings.
var MaxTenureYears = decimal.NewFromInt(100)

// Maturity is the projected payout of an interest-bearing holding.
type Maturity struct {
	Principal decimal.Decimal
	Value     decimal.Decimal
	Date      time.Time
}

// Maturity projects the value of the net invested capital at the end of the tenure,
// compounding InterestRate annually and pro-rating a partial final year.
// It reports false when the holding has no rate, no tenure or nothing invested,
// or when the stored tenure exceeds MaxTenureYears.
func (h *Holding) Maturity() (Maturity, bool) {
	if h.InterestRate == nil || h.TenureYears == nil || len(h.Transactions) == 0 {
		return Maturity{}, false
	}

	if h.InterestRate.IsNegative() || !h.TenureYears.IsPositive() || h.TenureYears.GreaterThan(MaxTenureYears) {
		return Maturity{}, false
	}

	principal := decimal.Zero

	for _, tx := range h.Transactions {
		switch tx.Type {
		case TypeBuy:
			principal = principal.Add(tx.Amount)
		case TypeSell:
			principal = principal.Sub(tx.Amount)
		}
	}

	if !principal.IsPositive() {
		return Maturity{}, false
	}

	return Maturity{
		Principal: principal,
		Value:     compound(principal, *h.InterestRate, *h.TenureYears),
		Date:      h.Transactions[0].Date.AddDate(0, int(h.TenureYears.Mul(decimal.NewFromInt(12)).IntPart()), 0),
	}, true
}

func compound(principal, ratePercent, years decimal.Decimal) decimal.Decimal {
	rate := ratePercent.Div(hundred)
	factor := decimal.NewFromInt(1).Add(rate)

	value := principal
	whole := years.Floor()

	for i := int64(0); i < whole.IntPart(); i++ {
		value = value.Mul(factor)
	}

	if frac := years.Sub(whole); frac.IsPositive() {
		value = value.Mul(decimal.NewFromInt(1).Add(rate.Mul(frac)))
	}

	return value.Round(2)
}
