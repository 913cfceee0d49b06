package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/famvest/internal/member"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectMemberColumns = `id, username, name, avatar, email, phone, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(s scanner) (*member.Member, error) {
	var m member.Member
	if err := s.Scan(&m.ID, &m.Username, &m.Name, &m.Avatar, &m.Email, &m.Phone, &m.CreatedAt); err != nil {
		return nil, err
	}

	return &m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]*member.Member, error) {
	query := `SELECT ` + selectMemberColumns + ` FROM members ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []*member.Member

	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}

	return members, nil
}

func (s *Store) GetMember(ctx context.Context, id string) (*member.Member, error) {
	query := `SELECT ` + selectMemberColumns + ` FROM members WHERE id = $1`

	m, err := scanMember(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", id, member.ErrNotFound)
		}

		return nil, fmt.Errorf("getting member: %w", err)
	}

	return m, nil
}

func (s *Store) UpsertMember(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (id, username, name, avatar, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			avatar = EXCLUDED.avatar,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone
	`

	_, err := s.db.ExecContext(ctx, query, m.ID, m.Username, m.Name, m.Avatar, m.Email, m.Phone, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting member: %w", err)
	}

	return nil
}
