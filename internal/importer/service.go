// Package importer restores household backups.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/migration"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

type Result struct {
	Members  int
	Owners   int
	Records  int
	Cleared  int
	Migrated int
}

type Service struct {
	members  member.Repository
	store    record.Store
	migrator *migration.Migrator
	now      func() time.Time
}

func NewService(members member.Repository, store record.Store, migrator *migration.Migrator) *Service {
	return &Service{
		members:  members,
		store:    store,
		migrator: migrator,
		now:      time.Now,
	}
}

// Restore replaces all holding records with the backup's, upserts its users
// and then upgrades any legacy records it brought in. Owners that are absent
// from the backup are left with no holdings.
func (s *Service) Restore(ctx context.Context, r io.Reader) (*Result, error) {
	backup, err := ParseBackup(r)
	if err != nil {
		return nil, err
	}

	members := make([]*member.Member, 0, len(backup.Users))

	for _, u := range backup.Users {
		m, err := u.Member()
		if err != nil {
			return nil, err
		}

		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now().UTC()
		}

		members = append(members, m)
	}

	existing, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	res := &Result{}

	for _, m := range members {
		if err := s.members.UpsertMember(ctx, m); err != nil {
			return nil, fmt.Errorf("restoring member %s: %w", m.ID, err)
		}

		res.Members++
	}

	for _, ownerID := range slices.Sorted(maps.Keys(backup.Investments)) {
		records := backup.Investments[ownerID]
		for i := range records {
			records[i].OwnerID = ownerID
		}

		if !slices.ContainsFunc(members, func(m *member.Member) bool { return m.ID == ownerID }) {
			slog.Warn("restoring holdings for unknown member", "owner", ownerID)
		}

		if err := s.store.Save(ctx, ownerID, records); err != nil {
			return nil, fmt.Errorf("restoring holdings of %s: %w", ownerID, err)
		}

		res.Owners++
		res.Records += len(records)
	}

	for _, ownerID := range slices.Sorted(maps.Keys(existing)) {
		if _, ok := backup.Investments[ownerID]; ok || len(existing[ownerID]) == 0 {
			continue
		}

		if err := s.store.Save(ctx, ownerID, nil); err != nil {
			return nil, fmt.Errorf("clearing holdings of %s: %w", ownerID, err)
		}

		res.Cleared++
	}

	migrated, err := s.migrator.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrating restored records: %w", err)
	}

	res.Migrated = migrated.Migrated

	slog.Info("backup restored",
		"members", res.Members,
		"records", res.Records,
		"cleared_owners", res.Cleared,
		"migrated", res.Migrated,
		"export_date", backup.ExportDate,
	)

	return res, nil
}
