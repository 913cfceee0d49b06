package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/MrJamesThe3rd/famvest/internal/record"
)

// Store keeps holding records as JSONB documents, one row per holding.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context, ownerID string) ([]record.Record, error) {
	query := `
		SELECT owner_id, record
		FROM holding_records
		WHERE owner_id = $1
		ORDER BY position ASC
	`

	grouped, err := s.query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	return grouped[ownerID], nil
}

func (s *Store) LoadAll(ctx context.Context) (map[string][]record.Record, error) {
	query := `
		SELECT owner_id, record
		FROM holding_records
		ORDER BY owner_id ASC, position ASC
	`

	return s.query(ctx, query)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (map[string][]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]record.Record)

	for rows.Next() {
		var (
			ownerID string
			doc     []byte
		)

		if err := rows.Scan(&ownerID, &doc); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		var r record.Record
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("decoding record of %s: %w", ownerID, err)
		}

		grouped[ownerID] = append(grouped[ownerID], r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return grouped, nil
}

// Save replaces the owner's rows in one transaction, serialized per owner with
// an advisory lock.
func (s *Store) Save(ctx context.Context, ownerID string, records []record.Record) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", ownerLockKey(ownerID)); err != nil {
		return fmt.Errorf("acquiring owner lock: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM holding_records WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	insert := `
		INSERT INTO holding_records (owner_id, id, position, record, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	for i, r := range records {
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.ID, err)
		}

		if _, err := dbTx.ExecContext(ctx, insert, ownerID, r.ID, i, string(doc)); err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func ownerLockKey(ownerID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("holding_records"))
	h.Write([]byte{0})
	h.Write([]byte(ownerID))

	return int64(h.Sum64())
}
