package holding

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidHolding     = errors.New("invalid holding")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInsufficientUnits  = errors.New("sell exceeds units held")
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TypeBuy  TransactionType = "buy"
	TypeSell TransactionType = "sell"
)

// Category classifies a holding. Values are the strings persisted by earlier versions.
type Category string

const (
	CategoryEquity           Category = "Equity"
	CategoryStocks           Category = "Stocks"
	CategoryUSStock          Category = "US Stock"
	CategoryMutualFunds      Category = "Mutual Funds"
	CategoryFixedDeposits    Category = "Fixed Deposits"
	CategoryRecurringDeposit Category = "RD (Recurring Deposit)"
	CategoryBonds            Category = "Bonds"
	CategoryRealEstate       Category = "Real Estate"
	CategoryGold             Category = "Gold/Commodities"
	CategoryPPF              Category = "PPF/NPS"
	CategoryPostOffice       Category = "Post Office"
	CategoryOther            Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryEquity,
	CategoryStocks,
	CategoryUSStock,
	CategoryMutualFunds,
	CategoryFixedDeposits,
	CategoryRecurringDeposit,
	CategoryBonds,
	CategoryRealEstate,
	CategoryGold,
	CategoryPPF,
	CategoryPostOffice,
	CategoryOther,
}

var categoryAliases = map[string]Category{
	"Recurring Deposit": CategoryRecurringDeposit,
}

// ParseCategory resolves s to a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}

	c, ok := categoryAliases[s]

	return c, ok
}

// Transaction is a single dated buy or sell against a holding.
// Amount is stored independently of Units*Price and is the source of truth for capital math.
type Transaction struct {
	ID     string
	Type   TransactionType
	Date   time.Time
	Units  decimal.Decimal
	Price  decimal.Decimal
	Amount decimal.Decimal
}

func (t Transaction) Validate() error {
	if t.Type != TypeBuy && t.Type != TypeSell {
		return errors.Join(ErrInvalidTransaction, errors.New("type must be buy or sell"))
	}

	if !t.Units.IsPositive() {
		return errors.Join(ErrInvalidTransaction, errors.New("units must be greater than zero"))
	}

	if t.Price.IsNegative() {
		return errors.Join(ErrInvalidTransaction, errors.New("price cannot be negative"))
	}

	if t.Amount.IsNegative() {
		return errors.Join(ErrInvalidTransaction, errors.New("amount cannot be negative"))
	}

	return nil
}

// Holding is one investment position owned by one family member.
type Holding struct {
	ID       string
	OwnerID  string
	Name     string
	Category Category
	Notes    string

	// CurrentUnitPrice is nil when no usable price is known.
	CurrentUnitPrice *decimal.Decimal

	// Transactions is kept sorted by date ascending.
	Transactions []Transaction

	// InterestRate (annual, percent) and TenureYears are only set for interest-bearing instruments.
	InterestRate *decimal.Decimal
	TenureYears  *decimal.Decimal

	CreatedAt time.Time
}

// Transaction returns the ledger entry with the given id.
func (h *Holding) Transaction(id string) (*Transaction, error) {
	for i := range h.Transactions {
		if h.Transactions[i].ID == id {
			return &h.Transactions[i], nil
		}
	}

	return nil, ErrNotFound
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
