// Package filestore persists members and holding records in a single JSON
// document laid out like the browser storage of earlier versions:
//
//	{"users": [...], "investments": {"<ownerId>": [...]}}
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

type document struct {
	Users       []user                     `json:"users"`
	Investments map[string][]record.Record `json:"investments"`
}

type user struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Store reads the document on every call and rewrites it atomically on save.
type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(_ context.Context, ownerID string) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	return doc.Investments[ownerID], nil
}

func (s *Store) LoadAll(_ context.Context) (map[string][]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	return doc.Investments, nil
}

func (s *Store) Save(_ context.Context, ownerID string, records []record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	if records == nil {
		records = []record.Record{}
	}

	doc.Investments[ownerID] = records

	return s.write(doc)
}

func (s *Store) ListMembers(_ context.Context) ([]*member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	members := make([]*member.Member, 0, len(doc.Users))
	for _, u := range doc.Users {
		members = append(members, u.toMember())
	}

	return members, nil
}

func (s *Store) GetMember(_ context.Context, id string) (*member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(doc.Users, func(u user) bool { return u.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("member %s: %w", id, member.ErrNotFound)
	}

	return doc.Users[idx].toMember(), nil
}

// UpsertMember keeps any password hash already stored for the user.
func (s *Store) UpsertMember(_ context.Context, m *member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	u := user{
		ID:       m.ID,
		Username: m.Username,
		Name:     m.Name,
		Avatar:   m.Avatar,
		Email:    m.Email,
		Phone:    m.Phone,
	}

	if !m.CreatedAt.IsZero() {
		u.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
	}

	idx := slices.IndexFunc(doc.Users, func(existing user) bool { return existing.ID == m.ID })
	if idx < 0 {
		doc.Users = append(doc.Users, u)
	} else {
		u.Password = doc.Users[idx].Password
		doc.Users[idx] = u
	}

	if _, ok := doc.Investments[m.ID]; !ok {
		doc.Investments[m.ID] = []record.Record{}
	}

	return s.write(doc)
}

func (s *Store) read() (*document, error) {
	doc := &document{}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	case len(data) > 0:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", s.path, err)
		}
	}

	if doc.Users == nil {
		doc.Users = []user{}
	}

	if doc.Investments == nil {
		doc.Investments = make(map[string][]record.Record)
	}

	return doc, nil
}

func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}

func (u user) toMember() *member.Member {
	m := &member.Member{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Email:    u.Email,
		Phone:    u.Phone,
	}

	if t, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
		m.CreatedAt = t
	}

	return m
}
