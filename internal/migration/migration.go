// Package migration upgrades legacy flat holding records to the transaction ledger.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

// AssumedUnitPrice is the price per unit credited to every legacy holding,
// which had no unit concept. It is part of the stored data contract.
var AssumedUnitPrice = decimal.NewFromInt(100)

// Upgrade converts a legacy holding into a ledger holding with one seed buy.
func Upgrade(legacy record.LegacyHolding, txID string, today time.Time) *holding.Holding {
	units := legacy.InvestedAmount.Div(AssumedUnitPrice)

	price := AssumedUnitPrice
	if units.IsPositive() {
		price = legacy.CurrentValue.Div(units)
	}

	date := holding.Day(today)
	if legacy.PurchaseDate != nil {
		date = holding.Day(*legacy.PurchaseDate)
	}

	return &holding.Holding{
		ID:               legacy.ID,
		OwnerID:          legacy.OwnerID,
		Name:             legacy.Name,
		Category:         legacy.Category,
		Notes:            legacy.Notes,
		CurrentUnitPrice: &price,
		InterestRate:     legacy.InterestRate,
		TenureYears:      legacy.TenureYears,
		CreatedAt:        legacy.CreatedAt,
		Transactions: []holding.Transaction{{
			ID:     txID,
			Type:   holding.TypeBuy,
			Date:   date,
			Units:  units,
			Price:  AssumedUnitPrice,
			Amount: legacy.InvestedAmount,
		}},
	}
}

type Result struct {
	Migrated int
	Owners   []string
}

type Migrator struct {
	store record.Store
	now   func() time.Time
	newID func() string
}

type Option func(*Migrator)

func WithClock(now func() time.Time) Option {
	return func(m *Migrator) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Migrator) { m.newID = newID }
}

func New(store record.Store, opts ...Option) *Migrator {
	m := &Migrator{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run reads every owner's records once and writes back only the owners that
// had at least one legacy record. Ledger records are written back untouched.
func (m *Migrator) Run(ctx context.Context) (Result, error) {
	all, err := m.store.LoadAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading records: %w", err)
	}

	var res Result

	today := m.now()

	owners := make([]string, 0, len(all))
	for ownerID := range all {
		owners = append(owners, ownerID)
	}

	slices.Sort(owners)

	for _, ownerID := range owners {
		records := all[ownerID]

		upgraded := make([]record.Record, len(records))
		changed := 0

		for i, rec := range records {
			legacy, ok := record.Decode(rec).(record.LegacyHolding)
			if !ok {
				upgraded[i] = rec
				continue
			}

			h := Upgrade(legacy, m.newID(), today)

			upgraded[i] = record.Encode(h)
			upgraded[i].OwnerID = rec.OwnerID
			changed++

			slog.Debug("migrated legacy holding", "owner", ownerID, "holding", h.ID, "units", h.Transactions[0].Units.String())
		}

		if changed == 0 {
			continue
		}

		if err := m.store.Save(ctx, ownerID, upgraded); err != nil {
			return res, fmt.Errorf("saving records of %s: %w", ownerID, err)
		}

		res.Migrated += changed
		res.Owners = append(res.Owners, ownerID)
	}

	if res.Migrated > 0 {
		slog.Info("ledger migration complete", "holdings", res.Migrated, "owners", len(res.Owners))
	}

	return res, nil
}
