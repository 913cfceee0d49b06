package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/famvest/internal/http/respond"
	"github.com/MrJamesThe3rd/famvest/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	gen *report.Generator
	now func() time.Time
}

func NewHandler(gen *report.Generator) *Handler {
	return &Handler{gen: gen, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/household", h.household)
}

func (h *Handler) household(w http.ResponseWriter, r *http.Request) {
	data, err := h.gen.Generate(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(h.now())))

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
