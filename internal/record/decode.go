package record

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
)

// Parsed is either a LegacyHolding or a LedgerHolding.
type Parsed interface {
	parsed()
}

// LegacyHolding is a record still carrying the flat invested/current pair.
type LegacyHolding struct {
	ID             string
	OwnerID        string
	Name           string
	Category       holding.Category
	Notes          string
	CreatedAt      time.Time
	PurchaseDate   *time.Time
	InvestedAmount decimal.Decimal
	CurrentValue   decimal.Decimal
	InterestRate   *decimal.Decimal
	TenureYears    *decimal.Decimal
}

// LedgerHolding is a record in the transaction ledger format.
type LedgerHolding struct {
	Holding *holding.Holding
}

func (LegacyHolding) parsed() {}
func (LedgerHolding) parsed() {}

// Decode classifies r. A record is legacy only when the transactions key is
// absent and an investedAmount key is present; every other record, including
// one with an empty transactions list, is a ledger record.
func Decode(r Record) Parsed {
	if r.Transactions == nil && len(r.InvestedAmount) > 0 {
		legacy := LegacyHolding{
			ID:             r.ID,
			OwnerID:        r.OwnerID,
			Name:           r.Name,
			Category:       category(r.Category),
			Notes:          r.Notes,
			InvestedAmount: ParseDecimalOrZero(r.InvestedAmount),
			CurrentValue:   ParseDecimalOrZero(r.CurrentValue),
			InterestRate:   optional(r.InterestRate),
			TenureYears:    optional(r.TenureYears),
		}

		if t, ok := ParseDate(r.CreatedAt); ok {
			legacy.CreatedAt = t
		}

		if t, ok := ParseDate(r.PurchaseDate); ok {
			legacy.PurchaseDate = &t
		}

		return legacy
	}

	h := &holding.Holding{
		ID:               r.ID,
		OwnerID:          r.OwnerID,
		Name:             r.Name,
		Category:         category(r.Category),
		Notes:            r.Notes,
		CurrentUnitPrice: optional(r.CurrentUnitPrice),
		InterestRate:     optional(r.InterestRate),
		TenureYears:      optional(r.TenureYears),
		Transactions:     []holding.Transaction{},
	}

	if t, ok := ParseDate(r.CreatedAt); ok {
		h.CreatedAt = t
	}

	if r.Transactions != nil {
		for _, raw := range *r.Transactions {
			h.Transactions = append(h.Transactions, decodeTransaction(raw, h.CreatedAt))
		}
	}

	slices.SortStableFunc(h.Transactions, func(a, b holding.Transaction) int {
		return a.Date.Compare(b.Date)
	})

	return LedgerHolding{Holding: h}
}

func decodeTransaction(raw RawTransaction, fallback time.Time) holding.Transaction {
	date, ok := ParseDate(raw.Date)
	if !ok {
		date = holding.Day(fallback)
	}

	return holding.Transaction{
		ID:     raw.ID,
		Type:   holding.TransactionType(strings.ToLower(strings.TrimSpace(raw.Type))),
		Date:   holding.Day(date),
		Units:  ParseDecimalOrZero(raw.Units),
		Price:  ParseDecimalOrZero(raw.Price),
		Amount: ParseDecimalOrZero(raw.Amount),
	}
}

// ParseDecimalOrZero reads a JSON number or numeric string. Anything else,
// including absence and null, is zero.
func ParseDecimalOrZero(raw json.RawMessage) decimal.Decimal {
	d, _ := ParseDecimal(raw)

	return d
}

// ParseDecimal is ParseDecimalOrZero that also reports whether raw held a number.
func ParseDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return decimal.Zero, false
	}

	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return decimal.Zero, false
		}

		s = strings.TrimSpace(unquoted)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}

	return time.Time{}, false
}

func optional(raw json.RawMessage) *decimal.Decimal {
	d, ok := ParseDecimal(raw)
	if !ok {
		return nil
	}

	return &d
}

// category keeps unknown values verbatim so hand-edited records survive a round trip.
func category(s string) holding.Category {
	if c, ok := holding.ParseCategory(s); ok {
		return c
	}

	return holding.Category(s)
}
