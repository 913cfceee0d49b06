package holding

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Insert appends tx to the ledger and re-sorts it by date. The ledger is left
// unchanged if tx is invalid or would sell more units than are held at its date.
func (h *Holding) Insert(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	ledger := append(slices.Clone(h.Transactions), tx)
	sortLedger(ledger)

	if err := checkBalance(ledger); err != nil {
		return err
	}

	h.Transactions = ledger

	return nil
}

// Replace swaps the entry with tx.ID for tx, keeping the ledger ordered.
func (h *Holding) Replace(tx Transaction) error {
	idx := slices.IndexFunc(h.Transactions, func(t Transaction) bool { return t.ID == tx.ID })
	if idx < 0 {
		return ErrNotFound
	}

	if err := tx.Validate(); err != nil {
		return err
	}

	ledger := slices.Clone(h.Transactions)
	ledger[idx] = tx
	sortLedger(ledger)

	if err := checkBalance(ledger); err != nil {
		return err
	}

	h.Transactions = ledger

	return nil
}

// sortLedger orders by date; entries on the same day keep their relative order.
func sortLedger(ledger []Transaction) {
	slices.SortStableFunc(ledger, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})
}

func checkBalance(ledger []Transaction) error {
	units := decimal.Zero

	for _, tx := range ledger {
		switch tx.Type {
		case TypeBuy:
			units = units.Add(tx.Units)
		case TypeSell:
			units = units.Sub(tx.Units)
		}

		if units.IsNegative() {
			return fmt.Errorf("%w: selling %s on %s leaves %s units",
				ErrInsufficientUnits, tx.Units, tx.Date.Format("2006-01-02"), units)
		}
	}

	return nil
}
