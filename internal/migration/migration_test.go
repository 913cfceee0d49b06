package migration_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/migration"
	"github.com/MrJamesThe3rd/famvest/internal/record"
	"github.com/MrJamesThe3rd/famvest/internal/record/filestore"
	"github.com/MrJamesThe3rd/famvest/internal/valuation"
)

var today = time.Date(2025, 8, 20, 16, 45, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func counter() func() string {
	n := 0

	return func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func newMigrator(store record.Store) *migration.Migrator {
	return migration.New(store,
		migration.WithClock(func() time.Time { return today }),
		migration.WithIDGenerator(counter()),
	)
}

func TestUpgrade(t *testing.T) {
	purchased := time.Date(2021, 11, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		legacy    record.LegacyHolding
		wantUnits string
		wantPrice string
		wantDate  time.Time
	}{
		{
			name:      "ReferencePricing",
			legacy:    record.LegacyHolding{InvestedAmount: dec("5000"), CurrentValue: dec("6000"), PurchaseDate: &purchased},
			wantUnits: "50",
			wantPrice: "120",
			wantDate:  purchased,
		},
		{
			name:      "NoPurchaseDateUsesToday",
			legacy:    record.LegacyHolding{InvestedAmount: dec("250"), CurrentValue: dec("200")},
			wantUnits: "2.5",
			wantPrice: "80",
			wantDate:  time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "ZeroInvestedFallsBackToAssumedPrice",
			legacy:    record.LegacyHolding{CurrentValue: dec("900")},
			wantUnits: "0",
			wantPrice: "100",
			wantDate:  time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := migration.Upgrade(tt.legacy, "seed", today)

			require.Len(t, h.Transactions, 1)

			seed := h.Transactions[0]
			assert.Equal(t, "seed", seed.ID)
			assert.Equal(t, holding.TypeBuy, seed.Type)
			assert.Equal(t, tt.wantDate, seed.Date)
			assert.True(t, seed.Price.Equal(migration.AssumedUnitPrice))
			assert.True(t, seed.Units.Equal(dec(tt.wantUnits)), "units = %s", seed.Units)
			assert.True(t, seed.Amount.Equal(tt.legacy.InvestedAmount), "amount = %s", seed.Amount)
			require.NotNil(t, h.CurrentUnitPrice)
			assert.True(t, h.CurrentUnitPrice.Equal(dec(tt.wantPrice)), "price = %s", h.CurrentUnitPrice)
		})
	}
}

func TestUpgrade_PreservesValuation(t *testing.T) {
	h := migration.Upgrade(record.LegacyHolding{InvestedAmount: dec("5000"), CurrentValue: dec("6000")}, "seed", today)

	s := valuation.Summarize(h)
	assert.True(t, s.TotalInvested.Equal(dec("5000")))
	assert.True(t, s.CurrentValue.Equal(dec("6000")))
	assert.True(t, s.GainLossPercent.Equal(dec("20")))
}

func TestUpgrade_RepeatingUnitPrice(t *testing.T) {
	h := migration.Upgrade(record.LegacyHolding{InvestedAmount: dec("300"), CurrentValue: dec("1000")}, "seed", today)

	require.NotNil(t, h.CurrentUnitPrice)
	assert.Equal(t, "333.3333333333333333", h.CurrentUnitPrice.String())

	s := valuation.Summarize(h)
	assert.True(t, s.TotalInvested.Equal(dec("300")))
	assert.Equal(t, "999.9999999999999999", s.CurrentValue.String())
	assert.True(t, s.CurrentValue.Round(2).Equal(dec("1000")))
}

func TestMigrator_Run(t *testing.T) {
	ledger := record.Record{ID: "l1", Name: "ETF", Category: "Equity", Transactions: &[]record.RawTransaction{}}
	legacy := record.Record{
		ID:             "x1",
		Name:           "PPF",
		Category:       "PPF/NPS",
		InvestedAmount: json.RawMessage("5000"),
		CurrentValue:   json.RawMessage(`"6000"`),
		PurchaseDate:   "2020-04-01",
	}

	t.Run("WritesOnlyOwnersWithLegacyRecords", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := record.NewMockStore(ctrl)
		store.EXPECT().LoadAll(gomock.Any()).Return(map[string][]record.Record{
			"self":   {ledger, legacy},
			"spouse": {ledger},
		}, nil)
		store.EXPECT().
			Save(gomock.Any(), "self", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, records []record.Record) error {
				require.Len(t, records, 2)
				assert.Equal(t, ledger, records[0], "ledger records are written back untouched")

				assert.Empty(t, records[1].InvestedAmount)
				assert.Empty(t, records[1].CurrentValue)
				require.NotNil(t, records[1].Transactions)
				require.Len(t, *records[1].Transactions, 1)

				seed := (*records[1].Transactions)[0]
				assert.Equal(t, "tx-1", seed.ID)
				assert.Equal(t, "2020-04-01", seed.Date)
				assert.Equal(t, json.RawMessage("50"), seed.Units)
				assert.Equal(t, json.RawMessage("120"), records[1].CurrentUnitPrice)

				return nil
			})

		res, err := newMigrator(store).Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, res.Migrated)
		assert.Equal(t, []string{"self"}, res.Owners)
	})

	t.Run("NoWriteWhenNothingIsLegacy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := record.NewMockStore(ctrl)
		store.EXPECT().LoadAll(gomock.Any()).Return(map[string][]record.Record{
			"self": {ledger},
			"kid":  {},
		}, nil)

		res, err := newMigrator(store).Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Migrated)
	})

	t.Run("LoadError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := record.NewMockStore(ctrl)
		store.EXPECT().LoadAll(gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := newMigrator(store).Run(context.Background())
		require.Error(t, err)
	})
}

func TestMigrator_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famvest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"users": [{"id": "self", "username": "self", "name": "Self"}],
		"investments": {
			"self": [
				{"id": "a", "name": "FD", "category": "Fixed Deposits", "investedAmount": 10000, "currentValue": 10700},
				{"id": "b", "name": "Stock", "category": "Stocks", "investedAmount": "abc"},
				{"id": "c", "name": "Fresh", "category": "Other", "transactions": []}
			]
		}
	}`), 0o600))

	store := filestore.New(path)
	m := newMigrator(store)

	first, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Migrated)

	after, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Migrated)

	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(after), string(again))

	holdings, err := record.NewRepository(store).List(context.Background(), "self")
	require.NoError(t, err)
	require.Len(t, holdings, 3)

	for _, h := range holdings {
		if h.ID == "c" {
			assert.Empty(t, h.Transactions, "empty ledgers are not mistaken for legacy")
			continue
		}

		assert.Len(t, h.Transactions, 1)
	}
}
