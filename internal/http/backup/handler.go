package backup

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/famvest/internal/export"
	"github.com/MrJamesThe3rd/famvest/internal/http/respond"
	"github.com/MrJamesThe3rd/famvest/internal/importer"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
	exportSvc *export.Service
	now       func() time.Time
}

func NewHandler(importSvc *importer.Service, exportSvc *export.Service) *Handler {
	return &Handler{importSvc: importSvc, exportSvc: exportSvc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Post("/", h.restore)
}

type restoreResponse struct {
	Members  int `json:"members"`
	Owners   int `json:"owners"`
	Records  int `json:"records"`
	Cleared  int `json:"cleared"`
	Migrated int `json:"migrated"`
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.exportSvc.Backup(r.Context(), &buf); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.BackupFilename(h.now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write backup", "error", err)
	}
}

// restore replaces the stored household with the uploaded backup file.
func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := h.importSvc.Restore(r.Context(), file)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, restoreResponse{
		Members:  res.Members,
		Owners:   res.Owners,
		Records:  res.Records,
		Cleared:  res.Cleared,
		Migrated: res.Migrated,
	})
}
