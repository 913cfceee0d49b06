package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/famvest/internal/encoding"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

var ErrInvalidBackup = errors.New("invalid backup")

// Backup is the exported household document.
type Backup struct {
	Users       []User                     `json:"users"`
	Investments map[string][]record.Record `json:"investments"`
	ExportDate  string                     `json:"exportDate,omitempty"`
}

// User is a member as written to backups. Password hashes from older
// exports are read but never restored.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ParseBackup decodes a backup in any supported text encoding.
func ParseBackup(r io.Reader) (*Backup, error) {
	utf8Reader, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	if charset != encoding.UTF8 {
		slog.Info("decoding backup", "charset", charset)
	}

	var raw struct {
		Users       *[]User                     `json:"users"`
		Investments *map[string][]record.Record `json:"investments"`
		ExportDate  string                      `json:"exportDate"`
	}

	if err := json.NewDecoder(utf8Reader).Decode(&raw); err != nil {
		return nil, errors.Join(ErrInvalidBackup, fmt.Errorf("decoding backup: %w", err))
	}

	if raw.Users == nil || raw.Investments == nil {
		return nil, errors.Join(ErrInvalidBackup, errors.New("users and investments are required"))
	}

	b := &Backup{Users: *raw.Users, Investments: *raw.Investments, ExportDate: raw.ExportDate}
	if b.Investments == nil {
		b.Investments = map[string][]record.Record{}
	}

	if err := checkRecordIDs(b.Investments); err != nil {
		return nil, err
	}

	return b, nil
}

// checkRecordIDs requires every record to carry an id that is unique within its owner.
func checkRecordIDs(investments map[string][]record.Record) error {
	var errs []error

	for _, ownerID := range slices.Sorted(maps.Keys(investments)) {
		seen := make(map[string]bool, len(investments[ownerID]))

		for i, r := range investments[ownerID] {
			id := strings.TrimSpace(r.ID)

			switch {
			case id == "":
				errs = append(errs, fmt.Errorf("holding %d of %s has no id", i, ownerID))
			case seen[id]:
				errs = append(errs, fmt.Errorf("holding id %s repeats for %s", id, ownerID))
			}

			seen[id] = true
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidBackup}, errs...)...)
	}

	return nil
}

// Member converts u, deriving the id from the username when it is missing.
func (u User) Member() (*member.Member, error) {
	id := strings.TrimSpace(u.ID)
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(u.Username))
	}

	if id == "" {
		return nil, errors.Join(ErrInvalidBackup, errors.New("user without id or username"))
	}

	username := u.Username
	if username == "" {
		username = id
	}

	name := u.Name
	if name == "" {
		name = username
	}

	m := &member.Member{
		ID:       id,
		Username: username,
		Name:     name,
		Avatar:   u.Avatar,
		Email:    u.Email,
		Phone:    u.Phone,
	}

	if t, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
		m.CreatedAt = t
	}

	return m, nil
}

// FromMember is the inverse of User.Member.
func FromMember(m *member.Member) User {
	u := User{
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

	return u
}
