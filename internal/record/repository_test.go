package record_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

func TestRepository_List(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *record.MockStore)
		wantLen   int
		wantErr   error
	}

	ledger := record.Record{ID: "h1", Name: "Gold", Category: "Gold/Commodities", Transactions: &[]record.RawTransaction{}}
	legacy := record.Record{ID: "h2", Name: "FD", Category: "Fixed Deposits", InvestedAmount: json.RawMessage("100")}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *record.MockStore) {
				m.EXPECT().Load(gomock.Any(), "self").Return([]record.Record{ledger}, nil)
			},
			wantLen: 1,
		},
		{
			name: "LegacyRefused",
			setupMock: func(m *record.MockStore) {
				m.EXPECT().Load(gomock.Any(), "self").Return([]record.Record{ledger, legacy}, nil)
			},
			wantErr: record.ErrLegacyRecord,
		},
		{
			name: "StoreError",
			setupMock: func(m *record.MockStore) {
				m.EXPECT().Load(gomock.Any(), "self").Return(nil, errors.New("disk full"))
			},
			wantErr: errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := record.NewMockStore(ctrl)
			tt.setupMock(store)

			got, err := record.NewRepository(store).List(context.Background(), "self")

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, record.ErrLegacyRecord) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, "self", got[0].OwnerID)
		})
	}
}

func TestRepository_SaveRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := &holding.Holding{
		ID:               "h1",
		Name:             "Nifty ETF",
		Category:         holding.CategoryMutualFunds,
		CurrentUnitPrice: new(decimal.RequireFromString("131.25")),
		CreatedAt:        time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		Transactions: []holding.Transaction{{
			ID:     "t1",
			Type:   holding.TypeBuy,
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Units:  decimal.RequireFromString("7.5"),
			Price:  decimal.RequireFromString("100"),
			Amount: decimal.RequireFromString("750"),
		}},
	}

	var stored []record.Record

	store := record.NewMockStore(ctrl)
	store.EXPECT().
		Save(gomock.Any(), "spouse", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, records []record.Record) error {
			stored = records
			return nil
		})
	store.EXPECT().Load(gomock.Any(), "spouse").DoAndReturn(func(context.Context, string) ([]record.Record, error) {
		return stored, nil
	})

	repo := record.NewRepository(store)
	require.NoError(t, repo.Save(context.Background(), "spouse", []*holding.Holding{h}))

	require.Len(t, stored, 1)
	assert.Equal(t, "spouse", stored[0].OwnerID)
	assert.Empty(t, stored[0].InvestedAmount)
	assert.Empty(t, stored[0].CurrentValue)

	got, err := repo.List(context.Background(), "spouse")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, h.CreatedAt, got[0].CreatedAt)
	assert.True(t, got[0].CurrentUnitPrice.Equal(*h.CurrentUnitPrice))
	require.Len(t, got[0].Transactions, 1)
	assert.True(t, got[0].Transactions[0].Amount.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, h.Transactions[0].Date, got[0].Transactions[0].Date)
}
