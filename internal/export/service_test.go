package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/famvest/internal/export"
	"github.com/MrJamesThe3rd/famvest/internal/importer"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
	"github.com/MrJamesThe3rd/famvest/internal/record"
	"github.com/MrJamesThe3rd/famvest/internal/record/filestore"
	"github.com/MrJamesThe3rd/famvest/internal/valuation"
)

func TestService_BackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := filestore.New(filepath.Join(t.TempDir(), "famvest.json"))

	require.NoError(t, store.UpsertMember(ctx, &member.Member{ID: "self", Username: "self", Name: "Self"}))
	require.NoError(t, store.UpsertMember(ctx, &member.Member{ID: "spouse", Username: "spouse", Name: "Spouse"}))
	require.NoError(t, store.Save(ctx, "self", []record.Record{{
		ID:             "legacy",
		Name:           "Post Office MIS",
		Category:       "Post Office",
		InvestedAmount: json.RawMessage("9000"),
	}}))

	var buf bytes.Buffer
	require.NoError(t, export.NewService(store, store).Backup(ctx, &buf))

	b, err := importer.ParseBackup(&buf)
	require.NoError(t, err)

	require.Len(t, b.Users, 2)
	assert.Equal(t, json.RawMessage("9000"), b.Investments["self"][0].InvestedAmount, "records are exported as stored")
	assert.Contains(t, b.Investments, "spouse")
	assert.NotEmpty(t, b.ExportDate)
}

func TestBackupFilename(t *testing.T) {
	got := export.BackupFilename(time.UnixMilli(1738310400123))
	assert.Equal(t, "investment-tracker-backup-1738310400123.json", got)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "₹0"},
		{in: "999.4", want: "₹999"},
		{in: "12345", want: "₹12,345"},
		{in: "1234567.8", want: "₹12,34,568"},
		{in: "-250000", want: "-₹2,50,000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, export.Money(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestGenerateSummary(t *testing.T) {
	d := &portfolio.Dashboard{
		Members: []portfolio.MemberTotals{{
			Member: &member.Member{Name: "Self"},
			Totals: valuation.Totals{
				TotalInvested:   decimal.NewFromInt(1000),
				CurrentValue:    decimal.NewFromInt(1200),
				GainLoss:        decimal.NewFromInt(200),
				GainLossPercent: decimal.NewFromInt(20),
				Holdings:        1,
			},
		}},
		Household: valuation.Totals{
			TotalInvested:   decimal.NewFromInt(4000),
			CurrentValue:    decimal.NewFromInt(3900),
			GainLoss:        decimal.NewFromInt(-100),
			GainLossPercent: decimal.RequireFromString("-2.5"),
			Holdings:        2,
		},
	}

	body := export.GenerateSummary(d)

	for _, sub := range []string{
		"* Self | 1 holdings | invested ₹1,000 | value ₹1,200 | +20.00%",
		"= Household | 2 holdings | invested ₹4,000 | value ₹3,900 | gain -₹100 (-2.50%)",
	} {
		assert.True(t, strings.Contains(body, sub), "expected body to contain %q", sub)
	}
}
