// Package record defines the persisted holding format and the store contract
// that every backend implements.
//
// Records are kept loose on purpose: numeric fields hold the raw JSON that was
// saved, whatever it was, and are only interpreted by Decode.
package record

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrLegacyRecord = errors.New("record has not been migrated to the ledger format")

// Record is one holding as it is stored.
type Record struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId,omitempty"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	PurchaseDate string `json:"purchaseDate,omitempty"`

	// Legacy flat valuation, removed by migration.
	InvestedAmount json.RawMessage `json:"investedAmount,omitempty"`
	CurrentValue   json.RawMessage `json:"currentValue,omitempty"`

	CurrentUnitPrice json.RawMessage `json:"currentUnitPrice,omitempty"`
	InterestRate     json.RawMessage `json:"interestRate,omitempty"`
	TenureYears      json.RawMessage `json:"tenureYears,omitempty"`

	// Transactions is nil when the key is absent. An empty, non-nil slice
	// marks a ledger record with no entries yet.
	Transactions *[]RawTransaction `json:"transactions,omitempty"`
}

type RawTransaction struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Date   string          `json:"date"`
	Units  json.RawMessage `json:"units"`
	Price  json.RawMessage `json:"price"`
	Amount json.RawMessage `json:"amount"`
}

//go:generate mockgen -source=record.go -destination=store_mock.go -package=record
type Store interface {
	// Load returns the records owned by ownerID.
	Load(ctx context.Context, ownerID string) ([]Record, error)
	// LoadAll returns every record keyed by owner id.
	LoadAll(ctx context.Context) (map[string][]Record, error)
	// Save replaces the stored set for one owner.
	Save(ctx context.Context, ownerID string, records []Record) error
}
