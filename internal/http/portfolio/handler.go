package portfolio

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/famvest/internal/export"
	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/http/respond"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
)

type Handler struct {
	svc *portfolio.Service
}

func NewHandler(svc *portfolio.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/summary", h.summary)
	r.Get("/allocation", h.allocation)
	r.Get("/categories", h.categories)
	r.Get("/members/{memberID}", h.memberDetail)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDashboard(d))
}

// summary renders the dashboard as the plain-text digest used for sharing.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(export.GenerateSummary(d))); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func (h *Handler) memberDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.MemberDetail(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toMemberDetail(d))
}

func (h *Handler) allocation(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Allocation(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toAllocation(categories))
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, holding.Categories)
}
