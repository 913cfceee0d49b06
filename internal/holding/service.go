package holding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=holding
type Repository interface {
	List(ctx context.Context, ownerID string) ([]*Holding, error)
	Save(ctx context.Context, ownerID string, holdings []*Holding) error
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock overrides the source of "today" for default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how holding and transaction ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Name     string
	Category Category
	Notes    string

	// Seed buy transaction.
	Units  decimal.Decimal
	Price  decimal.Decimal
	Amount *decimal.Decimal
	Date   *time.Time

	CurrentUnitPrice *decimal.Decimal
	InterestRate     *decimal.Decimal
	TenureYears      *decimal.Decimal
}

type UpdateParams struct {
	Name             *string
	Category         *Category
	Notes            *string
	CurrentUnitPrice *decimal.Decimal
	InterestRate     *decimal.Decimal
	TenureYears      *decimal.Decimal
}

type TransactionParams struct {
	Type   TransactionType
	Units  decimal.Decimal
	Price  decimal.Decimal
	Amount *decimal.Decimal
	Date   *time.Time
}

func (s *Service) List(ctx context.Context, ownerID string) ([]*Holding, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*Holding, error) {
	holdings, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	h, _, err := find(holdings, id)

	return h, err
}

// Create adds a holding seeded with one buy transaction.
func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*Holding, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, errors.Join(ErrInvalidHolding, errors.New("name is required"))
	}

	category, ok := ParseCategory(string(params.Category))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, params.Category)
	}

	if err := validateRates(params.InterestRate, params.TenureYears); err != nil {
		return nil, err
	}

	if err := validatePrice(params.CurrentUnitPrice); err != nil {
		return nil, err
	}

	holdings, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	seed := s.newTransaction(TransactionParams{
		Type:   TypeBuy,
		Units:  params.Units,
		Price:  params.Price,
		Amount: params.Amount,
		Date:   params.Date,
	})

	h := &Holding{
		ID:           s.newID(),
		OwnerID:      ownerID,
		Name:         name,
		Category:     category,
		Notes:        params.Notes,
		InterestRate: params.InterestRate,
		TenureYears:  params.TenureYears,
		CreatedAt:    s.now().UTC(),
	}

	if err := h.Insert(seed); err != nil {
		return nil, err
	}

	h.CurrentUnitPrice = params.CurrentUnitPrice
	if h.CurrentUnitPrice == nil {
		h.CurrentUnitPrice = &seed.Price
	}

	if err := s.repo.Save(ctx, ownerID, append(holdings, h)); err != nil {
		return nil, fmt.Errorf("saving holdings: %w", err)
	}

	return h, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, params UpdateParams) (*Holding, error) {
	holdings, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	h, _, err := find(holdings, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, errors.Join(ErrInvalidHolding, errors.New("name is required"))
		}

		h.Name = name
	}

	if params.Category != nil {
		category, ok := ParseCategory(string(*params.Category))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, *params.Category)
		}

		h.Category = category
	}

	if params.Notes != nil {
		h.Notes = *params.Notes
	}

	if params.CurrentUnitPrice != nil {
		if err := validatePrice(params.CurrentUnitPrice); err != nil {
			return nil, err
		}

		h.CurrentUnitPrice = params.CurrentUnitPrice
	}

	rate, tenure := h.InterestRate, h.TenureYears
	if params.InterestRate != nil {
		rate = params.InterestRate
	}

	if params.TenureYears != nil {
		tenure = params.TenureYears
	}

	if err := validateRates(rate, tenure); err != nil {
		return nil, err
	}

	h.InterestRate, h.TenureYears = rate, tenure

	if err := s.repo.Save(ctx, ownerID, holdings); err != nil {
		return nil, fmt.Errorf("saving holdings: %w", err)
	}

	return h, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	holdings, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return err
	}

	_, idx, err := find(holdings, id)
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, ownerID, slices.Concat(holdings[:idx], holdings[idx+1:])); err != nil {
		return fmt.Errorf("saving holdings: %w", err)
	}

	return nil
}

// AddTransaction records a buy or sell. The transaction gets a fresh id and,
// when no date is given, today's date.
func (s *Service) AddTransaction(ctx context.Context, ownerID, id string, params TransactionParams) (*Transaction, error) {
	holdings, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	h, _, err := find(holdings, id)
	if err != nil {
		return nil, err
	}

	tx := s.newTransaction(params)
	if err := h.Insert(tx); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, ownerID, holdings); err != nil {
		return nil, fmt.Errorf("saving holdings: %w", err)
	}

	return &tx, nil
}

// UpdateTransaction rewrites an existing ledger entry. A nil date keeps the current one.
func (s *Service) UpdateTransaction(ctx context.Context, ownerID, id, txID string, params TransactionParams) (*Transaction, error) {
	holdings, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	h, _, err := find(holdings, id)
	if err != nil {
		return nil, err
	}

	existing, err := h.Transaction(txID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txID, err)
	}

	if params.Date == nil {
		params.Date = &existing.Date
	}

	tx := s.newTransaction(params)
	tx.ID = txID

	if err := h.Replace(tx); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, ownerID, holdings); err != nil {
		return nil, fmt.Errorf("saving holdings: %w", err)
	}

	return &tx, nil
}

func (s *Service) newTransaction(params TransactionParams) Transaction {
	date := s.now()
	if params.Date != nil {
		date = *params.Date
	}

	amount := params.Units.Mul(params.Price)
	if params.Amount != nil {
		amount = *params.Amount
	}

	return Transaction{
		ID:     s.newID(),
		Type:   params.Type,
		Date:   Day(date),
		Units:  params.Units,
		Price:  params.Price,
		Amount: amount,
	}
}

func find(holdings []*Holding, id string) (*Holding, int, error) {
	idx := slices.IndexFunc(holdings, func(h *Holding) bool { return h.ID == id })
	if idx < 0 {
		return nil, -1, fmt.Errorf("holding %s: %w", id, ErrNotFound)
	}

	return holdings[idx], idx, nil
}

func validatePrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return errors.Join(ErrInvalidHolding, errors.New("current unit price cannot be negative"))
	}

	return nil
}

func validateRates(rate, tenure *decimal.Decimal) error {
	if rate != nil && rate.IsNegative() {
		return errors.Join(ErrInvalidHolding, errors.New("interest rate cannot be negative"))
	}

	if tenure != nil && !tenure.IsPositive() {
		return errors.Join(ErrInvalidHolding, errors.New("tenure must be greater than zero"))
	}

	if tenure != nil && tenure.GreaterThan(MaxTenureYears) {
		return errors.Join(ErrInvalidHolding, fmt.Errorf("tenure cannot exceed %s years", MaxTenureYears))
	}

	return nil
}
