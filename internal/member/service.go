package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=member
type Repository interface {
	ListMembers(ctx context.Context) ([]*Member, error)
	GetMember(ctx context.Context, id string) (*Member, error)
	UpsertMember(ctx context.Context, m *Member) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateParams struct {
	Username string
	Name     string
	Avatar   string
	Email    string
	Phone    string
}

type UpdateParams struct {
	Name   *string
	Avatar *string
	Email  *string
	Phone  *string
}

func (s *Service) List(ctx context.Context) ([]*Member, error) {
	return s.repo.ListMembers(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Member, error) {
	username := strings.ToLower(strings.TrimSpace(params.Username))
	if username == "" || strings.ContainsFunc(username, unicode.IsSpace) {
		return nil, errors.Join(ErrInvalidMember, errors.New("username must be a single word"))
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.Join(ErrInvalidMember, errors.New("name is required"))
	}

	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	for _, m := range members {
		if m.Username == username || m.ID == username {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
	}

	m := &Member{
		ID:        username,
		Username:  username,
		Name:      name,
		Avatar:    params.Avatar,
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.UpsertMember(ctx, m); err != nil {
		return nil, fmt.Errorf("saving member: %w", err)
	}

	return m, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Member, error) {
	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, errors.Join(ErrInvalidMember, errors.New("name is required"))
		}

		m.Name = name
	}

	if params.Avatar != nil {
		m.Avatar = *params.Avatar
	}

	if params.Email != nil {
		m.Email = strings.TrimSpace(*params.Email)
	}

	if params.Phone != nil {
		m.Phone = strings.TrimSpace(*params.Phone)
	}

	if err := s.repo.UpsertMember(ctx, m); err != nil {
		return nil, fmt.Errorf("saving member: %w", err)
	}

	return m, nil
}

// EnsureDefaults seeds Defaults when the household has no members and
// reports how many were created.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing members: %w", err)
	}

	if len(members) > 0 {
		return 0, nil
	}

	for _, d := range Defaults {
		m := d
		m.CreatedAt = s.now().UTC()

		if err := s.repo.UpsertMember(ctx, &m); err != nil {
			return 0, fmt.Errorf("seeding member %s: %w", m.ID, err)
		}
	}

	slog.Info("seeded default members", "count", len(Defaults))

	return len(Defaults), nil
}
