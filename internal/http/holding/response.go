package holding

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/valuation"
)

type transactionResponse struct {
	ID     string                  `json:"id"`
	Type   holding.TransactionType `json:"type"`
	Date   string                  `json:"date"`
	Units  decimal.Decimal         `json:"units"`
	Price  decimal.Decimal         `json:"price"`
	Amount decimal.Decimal         `json:"amount"`
}

type summaryResponse struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalUnits      decimal.Decimal `json:"total_units"`
	AvgBuyPrice     decimal.Decimal `json:"avg_buy_price"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
}

type maturityResponse struct {
	Principal decimal.Decimal `json:"principal"`
	Value     decimal.Decimal `json:"value"`
	Date      string          `json:"date"`
}

type holdingResponse struct {
	ID               string                `json:"id"`
	OwnerID          string                `json:"owner_id"`
	Name             string                `json:"name"`
	Category         holding.Category      `json:"category"`
	Notes            string                `json:"notes,omitempty"`
	CurrentUnitPrice *decimal.Decimal      `json:"current_unit_price,omitempty"`
	InterestRate     *decimal.Decimal      `json:"interest_rate,omitempty"`
	TenureYears      *decimal.Decimal      `json:"tenure_years,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	Transactions     []transactionResponse `json:"transactions"`
	Summary          summaryResponse       `json:"summary"`
	Maturity         *maturityResponse     `json:"maturity,omitempty"`
}

func toTransactionResponse(tx holding.Transaction) transactionResponse {
	return transactionResponse{
		ID:     tx.ID,
		Type:   tx.Type,
		Date:   tx.Date.Format(time.DateOnly),
		Units:  tx.Units,
		Price:  tx.Price,
		Amount: tx.Amount,
	}
}

func toResponse(h *holding.Holding) holdingResponse {
	txs := make([]transactionResponse, len(h.Transactions))
	for i, tx := range h.Transactions {
		txs[i] = toTransactionResponse(tx)
	}

	s := valuation.Summarize(h)

	resp := holdingResponse{
		ID:               h.ID,
		OwnerID:          h.OwnerID,
		Name:             h.Name,
		Category:         h.Category,
		Notes:            h.Notes,
		CurrentUnitPrice: h.CurrentUnitPrice,
		InterestRate:     h.InterestRate,
		TenureYears:      h.TenureYears,
		CreatedAt:        h.CreatedAt,
		Transactions:     txs,
		Summary: summaryResponse{
			TotalInvested:   s.TotalInvested,
			TotalUnits:      s.TotalUnits,
			AvgBuyPrice:     s.AvgBuyPrice,
			CurrentValue:    s.CurrentValue,
			GainLoss:        s.GainLoss,
			GainLossPercent: s.GainLossPercent,
		},
	}

	if m, ok := h.Maturity(); ok {
		resp.Maturity = &maturityResponse{
			Principal: m.Principal,
			Value:     m.Value,
			Date:      m.Date.Format(time.DateOnly),
		}
	}

	return resp
}

func toResponseList(holdings []*holding.Holding) []holdingResponse {
	resp := make([]holdingResponse, len(holdings))
	for i, h := range holdings {
		resp[i] = toResponse(h)
	}

	return resp
}
