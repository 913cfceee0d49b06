// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/importer"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	"github.com/MrJamesThe3rd/famvest/internal/record"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as plain text. Unexpected errors are logged and hidden.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", status)

		return
	}

	http.Error(w, err.Error(), status)
}

func Status(err error) int {
	switch {
	case errors.Is(err, holding.ErrNotFound), errors.Is(err, member.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, member.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, holding.ErrInsufficientUnits):
		return http.StatusUnprocessableEntity
	case errors.Is(err, holding.ErrInvalidHolding),
		errors.Is(err, holding.ErrInvalidCategory),
		errors.Is(err, holding.ErrInvalidTransaction),
		errors.Is(err, member.ErrInvalidMember),
		errors.Is(err, importer.ErrInvalidBackup):
		return http.StatusBadRequest
	case errors.Is(err, record.ErrLegacyRecord):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
