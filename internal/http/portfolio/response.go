package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
	"github.com/MrJamesThe3rd/famvest/internal/valuation"
)

type totalsResponse struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
	Holdings        int             `json:"holdings"`
}

type memberTotalsResponse struct {
	MemberID string         `json:"member_id"`
	Name     string         `json:"name"`
	Avatar   string         `json:"avatar,omitempty"`
	Totals   totalsResponse `json:"totals"`
}

type dashboardResponse struct {
	Members   []memberTotalsResponse `json:"members"`
	Household totalsResponse         `json:"household"`
}

type holdingSummaryResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Category        holding.Category `json:"category"`
	TotalInvested   decimal.Decimal  `json:"total_invested"`
	TotalUnits      decimal.Decimal  `json:"total_units"`
	AvgBuyPrice     decimal.Decimal  `json:"avg_buy_price"`
	CurrentValue    decimal.Decimal  `json:"current_value"`
	GainLoss        decimal.Decimal  `json:"gain_loss"`
	GainLossPercent decimal.Decimal  `json:"gain_loss_percent"`
	MaturityValue   *decimal.Decimal `json:"maturity_value,omitempty"`
	MaturityDate    string           `json:"maturity_date,omitempty"`
}

type memberDetailResponse struct {
	MemberID string                   `json:"member_id"`
	Name     string                   `json:"name"`
	Holdings []holdingSummaryResponse `json:"holdings"`
	Totals   totalsResponse           `json:"totals"`
}

type allocationResponse struct {
	Category holding.Category `json:"category"`
	Totals   totalsResponse   `json:"totals"`
	Share    decimal.Decimal  `json:"share"`
}

func toTotals(t valuation.Totals) totalsResponse {
	return totalsResponse{
		TotalInvested:   t.TotalInvested,
		CurrentValue:    t.CurrentValue,
		GainLoss:        t.GainLoss,
		GainLossPercent: t.GainLossPercent,
		Holdings:        t.Holdings,
	}
}

func toDashboard(d *portfolio.Dashboard) dashboardResponse {
	members := make([]memberTotalsResponse, len(d.Members))
	for i, mt := range d.Members {
		members[i] = memberTotalsResponse{
			MemberID: mt.Member.ID,
			Name:     mt.Member.Name,
			Avatar:   mt.Member.Avatar,
			Totals:   toTotals(mt.Totals),
		}
	}

	return dashboardResponse{Members: members, Household: toTotals(d.Household)}
}

func toMemberDetail(d *portfolio.MemberDetail) memberDetailResponse {
	holdings := make([]holdingSummaryResponse, len(d.Holdings))
	for i, hd := range d.Holdings {
		holdings[i] = holdingSummaryResponse{
			ID:              hd.Holding.ID,
			Name:            hd.Holding.Name,
			Category:        hd.Holding.Category,
			TotalInvested:   hd.Summary.TotalInvested,
			TotalUnits:      hd.Summary.TotalUnits,
			AvgBuyPrice:     hd.Summary.AvgBuyPrice,
			CurrentValue:    hd.Summary.CurrentValue,
			GainLoss:        hd.Summary.GainLoss,
			GainLossPercent: hd.Summary.GainLossPercent,
		}

		if hd.Maturity != nil {
			holdings[i].MaturityValue = &hd.Maturity.Value
			holdings[i].MaturityDate = hd.Maturity.Date.Format(time.DateOnly)
		}
	}

	return memberDetailResponse{
		MemberID: d.Member.ID,
		Name:     d.Member.Name,
		Holdings: holdings,
		Totals:   toTotals(d.Totals),
	}
}

func toAllocation(categories []portfolio.CategoryTotals) []allocationResponse {
	resp := make([]allocationResponse, len(categories))
	for i, c := range categories {
		resp[i] = allocationResponse{Category: c.Category, Totals: toTotals(c.Totals), Share: c.Share}
	}

	return resp
}
