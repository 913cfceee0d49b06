package holding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/http/respond"
	"github.com/MrJamesThe3rd/famvest/internal/member"
)

// Members resolves the owner named in the route.
type Members interface {
	Get(ctx context.Context, id string) (*member.Member, error)
}

type Handler struct {
	svc     *holding.Service
	members Members
}

func NewHandler(svc *holding.Service, members Members) *Handler {
	return &Handler{svc: svc, members: members}
}

// Routes expects to be mounted below a {memberID} segment.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.requireMember)

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{holdingID}", h.get)
	r.Patch("/{holdingID}", h.update)
	r.Delete("/{holdingID}", h.delete)
	r.Post("/{holdingID}/transactions", h.addTransaction)
	r.Patch("/{holdingID}/transactions/{txID}", h.updateTransaction)
}

type createRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
	Date     *string `json:"date"`

	Units  decimal.Decimal  `json:"units"`
	Price  decimal.Decimal  `json:"price"`
	Amount *decimal.Decimal `json:"amount"`

	CurrentUnitPrice *decimal.Decimal `json:"current_unit_price"`
	InterestRate     *decimal.Decimal `json:"interest_rate"`
	TenureYears      *decimal.Decimal `json:"tenure_years"`
}

type updateRequest struct {
	Name             *string          `json:"name"`
	Category         *string          `json:"category"`
	Notes            *string          `json:"notes"`
	CurrentUnitPrice *decimal.Decimal `json:"current_unit_price"`
	InterestRate     *decimal.Decimal `json:"interest_rate"`
	TenureYears      *decimal.Decimal `json:"tenure_years"`
}

type transactionRequest struct {
	Type   holding.TransactionType `json:"type"`
	Date   *string                 `json:"date"`
	Units  decimal.Decimal         `json:"units"`
	Price  decimal.Decimal         `json:"price"`
	Amount *decimal.Decimal        `json:"amount"`
}

func (h *Handler) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.members.Get(r.Context(), chi.URLParam(r, "memberID")); err != nil {
			respond.Error(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.svc.List(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(holdings))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	hd, err := h.svc.Get(r.Context(), chi.URLParam(r, "memberID"), chi.URLParam(r, "holdingID"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(hd))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respond.Error(w, err)
		return
	}

	hd, err := h.svc.Create(r.Context(), chi.URLParam(r, "memberID"), holding.CreateParams{
		Name:             req.Name,
		Category:         holding.Category(req.Category),
		Notes:            req.Notes,
		Units:            req.Units,
		Price:            req.Price,
		Amount:           req.Amount,
		Date:             date,
		CurrentUnitPrice: req.CurrentUnitPrice,
		InterestRate:     req.InterestRate,
		TenureYears:      req.TenureYears,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(hd))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params := holding.UpdateParams{
		Name:             req.Name,
		Notes:            req.Notes,
		CurrentUnitPrice: req.CurrentUnitPrice,
		InterestRate:     req.InterestRate,
		TenureYears:      req.TenureYears,
	}

	if req.Category != nil {
		params.Category = new(holding.Category(*req.Category))
	}

	hd, err := h.svc.Update(r.Context(), chi.URLParam(r, "memberID"), chi.URLParam(r, "holdingID"), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(hd))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "memberID"), chi.URLParam(r, "holdingID")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	params, err := decodeTransaction(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	tx, err := h.svc.AddTransaction(r.Context(), chi.URLParam(r, "memberID"), chi.URLParam(r, "holdingID"), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toTransactionResponse(*tx))
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	params, err := decodeTransaction(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	tx, err := h.svc.UpdateTransaction(
		r.Context(),
		chi.URLParam(r, "memberID"),
		chi.URLParam(r, "holdingID"),
		chi.URLParam(r, "txID"),
		params,
	)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTransactionResponse(*tx))
}

func decodeTransaction(r *http.Request) (holding.TransactionParams, error) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return holding.TransactionParams{}, errors.Join(holding.ErrInvalidTransaction, err)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return holding.TransactionParams{}, err
	}

	return holding.TransactionParams{
		Type:   req.Type,
		Units:  req.Units,
		Price:  req.Price,
		Amount: req.Amount,
		Date:   date,
	}, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, errors.Join(holding.ErrInvalidTransaction, fmt.Errorf("date %q must be YYYY-MM-DD", *s))
	}

	return &t, nil
}
