package record

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
)

// Encode renders h in the ledger format. Legacy flat fields are never written.
func Encode(h *holding.Holding) Record {
	r := Record{
		ID:               h.ID,
		OwnerID:          h.OwnerID,
		Name:             h.Name,
		Category:         string(h.Category),
		Notes:            h.Notes,
		CurrentUnitPrice: number(h.CurrentUnitPrice),
		InterestRate:     number(h.InterestRate),
		TenureYears:      number(h.TenureYears),
	}

	if !h.CreatedAt.IsZero() {
		r.CreatedAt = h.CreatedAt.UTC().Format(time.RFC3339)
	}

	txs := make([]RawTransaction, 0, len(h.Transactions))
	for _, tx := range h.Transactions {
		txs = append(txs, RawTransaction{
			ID:     tx.ID,
			Type:   string(tx.Type),
			Date:   tx.Date.Format(time.DateOnly),
			Units:  json.RawMessage(tx.Units.String()),
			Price:  json.RawMessage(tx.Price.String()),
			Amount: json.RawMessage(tx.Amount.String()),
		})
	}

	r.Transactions = &txs

	return r
}

// EncodeAll encodes holdings preserving their order.
func EncodeAll(holdings []*holding.Holding) []Record {
	out := make([]Record, len(holdings))
	for i, h := range holdings {
		out[i] = Encode(h)
	}

	return out
}

func number(d *decimal.Decimal) json.RawMessage {
	if d == nil {
		return nil
	}

	return json.RawMessage(d.String())
}
