// Package portfolio assembles valuation summaries for the household views.
package portfolio

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/valuation"
)

type MemberTotals struct {
	Member *member.Member
	Totals valuation.Totals
}

type Dashboard struct {
	Members   []MemberTotals
	Household valuation.Totals
}

type HoldingDetail struct {
	Holding  *holding.Holding
	Summary  valuation.Summary
	Maturity *holding.Maturity
}

type MemberDetail struct {
	Member   *member.Member
	Holdings []HoldingDetail
	Totals   valuation.Totals
}

type CategoryTotals struct {
	Category holding.Category
	Totals   valuation.Totals
	// Share is this category's current value as a percentage of the household's.
	Share decimal.Decimal
}

type Service struct {
	members  member.Repository
	holdings holding.Repository
}

func NewService(members member.Repository, holdings holding.Repository) *Service {
	return &Service{members: members, holdings: holdings}
}

// Dashboard values every member's holdings. Nothing is cached.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	d := &Dashboard{Members: make([]MemberTotals, 0, len(members))}

	for _, m := range members {
		holdings, err := s.holdings.List(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("listing holdings of %s: %w", m.ID, err)
		}

		d.Members = append(d.Members, MemberTotals{Member: m, Totals: valuation.SummarizeAll(holdings)})
	}

	d.Household = valuation.Combine(lo.Map(d.Members, func(mt MemberTotals, _ int) valuation.Totals {
		return mt.Totals
	})...)

	return d, nil
}

func (s *Service) MemberDetail(ctx context.Context, memberID string) (*MemberDetail, error) {
	m, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdings.List(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("listing holdings of %s: %w", m.ID, err)
	}

	detail := &MemberDetail{Member: m, Holdings: make([]HoldingDetail, 0, len(holdings))}

	summaries := make([]valuation.Summary, 0, len(holdings))

	for _, h := range holdings {
		hd := HoldingDetail{Holding: h, Summary: valuation.Summarize(h)}
		if mat, ok := h.Maturity(); ok {
			hd.Maturity = &mat
		}

		detail.Holdings = append(detail.Holdings, hd)
		summaries = append(summaries, hd.Summary)
	}

	detail.Totals = valuation.Aggregate(summaries...)

	return detail, nil
}

// Allocation groups the household's holdings by category in display order,
// skipping empty categories.
func (s *Service) Allocation(ctx context.Context) ([]CategoryTotals, error) {
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	var all []*holding.Holding

	for _, m := range members {
		holdings, err := s.holdings.List(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("listing holdings of %s: %w", m.ID, err)
		}

		all = append(all, holdings...)
	}

	household := valuation.SummarizeAll(all)
	grouped := lo.GroupBy(all, func(h *holding.Holding) holding.Category { return h.Category })

	var unknown []holding.Category

	for c := range grouped {
		if !lo.Contains(holding.Categories, c) {
			unknown = append(unknown, c)
		}
	}

	slices.Sort(unknown)

	order := slices.Concat(holding.Categories, unknown)

	var out []CategoryTotals

	for _, c := range order {
		hs, ok := grouped[c]
		if !ok {
			continue
		}

		t := valuation.SummarizeAll(hs)

		share := decimal.Zero
		if household.CurrentValue.IsPositive() {
			share = t.CurrentValue.Div(household.CurrentValue).Mul(decimal.NewFromInt(100))
		}

		out = append(out, CategoryTotals{Category: c, Totals: t, Share: share})
	}

	return out, nil
}
