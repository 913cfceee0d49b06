package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/importer"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

// Service writes household backups and plain-text summaries.
type Service struct {
	members member.Repository
	store   record.Store
	now     func() time.Time
}

func NewService(members member.Repository, store record.Store) *Service {
	return &Service{members: members, store: store, now: time.Now}
}

// Backup writes every member and every stored record in the format
// importer.ParseBackup reads. Records are written as stored.
func (s *Service) Backup(ctx context.Context, w io.Writer) error {
	members, err := s.members.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("listing members: %w", err)
	}

	investments, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	b := importer.Backup{
		Users:       make([]importer.User, 0, len(members)),
		Investments: investments,
		ExportDate:  s.now().UTC().Format(time.RFC3339),
	}

	for _, m := range members {
		b.Users = append(b.Users, importer.FromMember(m))

		if _, ok := b.Investments[m.ID]; !ok {
			b.Investments[m.ID] = []record.Record{}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	return nil
}

// BackupFilename names a backup taken at t.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("investment-tracker-backup-%d.json", t.UnixMilli())
}

// GenerateSummary renders the dashboard as one line per member plus a
// household line.
func GenerateSummary(d *portfolio.Dashboard) string {
	var sb strings.Builder

	for _, mt := range d.Members {
		sb.WriteString(fmt.Sprintf("* %s | %d holdings | invested %s | value %s | %s\n",
			mt.Member.Name,
			mt.Totals.Holdings,
			Money(mt.Totals.TotalInvested),
			Money(mt.Totals.CurrentValue),
			Percent(mt.Totals.GainLossPercent),
		))
	}

	sb.WriteString(fmt.Sprintf("= Household | %d holdings | invested %s | value %s | gain %s (%s)\n",
		d.Household.Holdings,
		Money(d.Household.TotalInvested),
		Money(d.Household.CurrentValue),
		Money(d.Household.GainLoss),
		Percent(d.Household.GainLossPercent),
	))

	return sb.String()
}

// Money formats an amount in rupees with Indian digit grouping and no paise.
func Money(d decimal.Decimal) string {
	digits := d.Abs().Round(0).String()

	var grouped string
	if len(digits) <= 3 {
		grouped = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}

		parts = append([]string{head}, parts...)
		grouped = strings.Join(parts, ",") + "," + tail
	}

	if d.Round(0).IsNegative() {
		return "-₹" + grouped
	}

	return "₹" + grouped
}

func Percent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}

	return s
}
