package respond_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/http/respond"
	"github.com/MrJamesThe3rd/famvest/internal/importer"
	"github.com/MrJamesThe3rd/famvest/internal/member"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("holding h1: %w", holding.ErrNotFound), want: http.StatusNotFound},
		{err: member.ErrNotFound, want: http.StatusNotFound},
		{err: errors.Join(holding.ErrInvalidTransaction, errors.New("units must be greater than zero")), want: http.StatusBadRequest},
		{err: holding.ErrInsufficientUnits, want: http.StatusUnprocessableEntity},
		{err: member.ErrUsernameTaken, want: http.StatusConflict},
		{err: importer.ErrInvalidBackup, want: http.StatusBadRequest},
		{err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, respond.Status(tt.err))
		})
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error\n", rec.Body.String())
}
