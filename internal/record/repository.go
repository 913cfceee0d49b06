package record

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
)

// Repository serves holdings from a Store. Records that still need migration
// are refused rather than valued from their flat fields.
type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]*holding.Holding, error) {
	records, err := r.store.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	holdings := make([]*holding.Holding, 0, len(records))

	for _, rec := range records {
		switch p := Decode(rec).(type) {
		case LegacyHolding:
			return nil, fmt.Errorf("holding %s: %w", p.ID, ErrLegacyRecord)
		case LedgerHolding:
			if p.Holding.OwnerID == "" {
				p.Holding.OwnerID = ownerID
			}

			holdings = append(holdings, p.Holding)
		}
	}

	return holdings, nil
}

func (r *Repository) Save(ctx context.Context, ownerID string, holdings []*holding.Holding) error {
	records := EncodeAll(holdings)
	for i := range records {
		records[i].OwnerID = ownerID
	}

	if err := r.store.Save(ctx, ownerID, records); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}

	return nil
}
