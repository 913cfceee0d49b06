package portfolio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func position(id string, category holding.Category, invested, price string) *holding.Holding {
	units := dec(invested).Div(dec("100"))

	return &holding.Holding{
		ID:               id,
		Name:             id,
		Category:         category,
		CurrentUnitPrice: new(dec(price)),
		Transactions: []holding.Transaction{{
			ID:     id + "-seed",
			Type:   holding.TypeBuy,
			Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Units:  units,
			Price:  dec("100"),
			Amount: dec(invested),
		}},
	}
}

var household = []*member.Member{
	{ID: "self", Username: "self", Name: "Self"},
	{ID: "spouse", Username: "spouse", Name: "Spouse"},
}

func TestService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	members := member.NewMockRepository(ctrl)
	holdings := holding.NewMockRepository(ctrl)

	members.EXPECT().ListMembers(gomock.Any()).Return(household, nil)
	holdings.EXPECT().List(gomock.Any(), "self").Return([]*holding.Holding{
		position("fund", holding.CategoryMutualFunds, "1000", "120"),
	}, nil)
	holdings.EXPECT().List(gomock.Any(), "spouse").Return([]*holding.Holding{
		position("stock", holding.CategoryStocks, "3000", "90"),
	}, nil)

	d, err := portfolio.NewService(members, holdings).Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, d.Members, 2)
	assert.True(t, d.Members[0].Totals.GainLossPercent.Equal(dec("20")))
	assert.True(t, d.Members[1].Totals.GainLossPercent.Equal(dec("-10")))

	assert.True(t, d.Household.TotalInvested.Equal(dec("4000")))
	assert.True(t, d.Household.GainLoss.Equal(dec("-100")))
	assert.True(t, d.Household.GainLossPercent.Equal(dec("-2.5")), "household percent = %s", d.Household.GainLossPercent)
	assert.Equal(t, 2, d.Household.Holdings)
}

func TestService_DashboardPropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	members := member.NewMockRepository(ctrl)
	holdings := holding.NewMockRepository(ctrl)

	members.EXPECT().ListMembers(gomock.Any()).Return(household, nil)
	holdings.EXPECT().List(gomock.Any(), "self").Return(nil, errors.New("boom"))

	_, err := portfolio.NewService(members, holdings).Dashboard(context.Background())
	assert.Error(t, err)
}

func TestService_MemberDetail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fd := position("fd", holding.CategoryFixedDeposits, "10000", "100")
	fd.InterestRate = new(dec("7"))
	fd.TenureYears = new(dec("2"))

	members := member.NewMockRepository(ctrl)
	holdings := holding.NewMockRepository(ctrl)

	members.EXPECT().GetMember(gomock.Any(), "self").Return(household[0], nil)
	holdings.EXPECT().List(gomock.Any(), "self").Return([]*holding.Holding{
		fd,
		position("gold", holding.CategoryGold, "500", "110"),
		{ID: "empty", Category: holding.CategoryOther, Transactions: []holding.Transaction{}},
	}, nil)

	detail, err := portfolio.NewService(members, holdings).MemberDetail(context.Background(), "self")
	require.NoError(t, err)

	require.Len(t, detail.Holdings, 3)
	require.NotNil(t, detail.Holdings[0].Maturity)
	assert.True(t, detail.Holdings[0].Maturity.Value.Equal(dec("11449")))
	assert.Nil(t, detail.Holdings[1].Maturity)
	assert.True(t, detail.Holdings[2].Summary.CurrentValue.IsZero())

	assert.True(t, detail.Totals.TotalInvested.Equal(dec("10500")))
	assert.True(t, detail.Totals.CurrentValue.Equal(dec("10550")))
	assert.Equal(t, 3, detail.Totals.Holdings)
}

func TestService_MemberDetailUnknownMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	members := member.NewMockRepository(ctrl)
	members.EXPECT().GetMember(gomock.Any(), "ghost").Return(nil, member.ErrNotFound)

	_, err := portfolio.NewService(members, holding.NewMockRepository(ctrl)).MemberDetail(context.Background(), "ghost")
	assert.ErrorIs(t, err, member.ErrNotFound)
}

func TestService_Allocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	members := member.NewMockRepository(ctrl)
	holdings := holding.NewMockRepository(ctrl)

	members.EXPECT().ListMembers(gomock.Any()).Return(household, nil)
	holdings.EXPECT().List(gomock.Any(), "self").Return([]*holding.Holding{
		position("fund", holding.CategoryMutualFunds, "1000", "100"),
		position("coin", holding.Category("Crypto"), "1000", "100"),
	}, nil)
	holdings.EXPECT().List(gomock.Any(), "spouse").Return([]*holding.Holding{
		position("eq", holding.CategoryEquity, "2000", "100"),
	}, nil)

	got, err := portfolio.NewService(members, holdings).Allocation(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, holding.CategoryEquity, got[0].Category)
	assert.True(t, got[0].Share.Equal(dec("50")))
	assert.Equal(t, holding.CategoryMutualFunds, got[1].Category)
	assert.Equal(t, holding.Category("Crypto"), got[2].Category)
	assert.True(t, got[2].Share.Equal(dec("25")))
}
