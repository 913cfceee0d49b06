package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/famvest/internal/backend"
	famvestHttp "github.com/MrJamesThe3rd/famvest/internal/http"
	"github.com/MrJamesThe3rd/famvest/internal/record/filestore"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	fs := filestore.New(filepath.Join(t.TempDir(), "famvest.json"))
	app := backend.Wire(fs, fs)
	require.NoError(t, app.Bootstrap(context.Background()))

	srv := httptest.NewServer(famvestHttp.New(famvestHttp.NewHandlers(app), []string{"http://localhost:3000"}))
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}

	return resp, out
}

func TestRouter_HoldingLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, created := do(t, srv, http.MethodPost, "/api/v1/members/self/holdings",
		`{"name":"Nifty Index","category":"Mutual Funds","units":10,"price":100,"date":"2024-01-10"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/members/self/holdings/"+id+"/transactions",
		`{"type":"sell","units":20,"price":120,"date":"2024-02-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "overselling is refused")

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/members/self/holdings/"+id+"/transactions",
		`{"type":"sell","units":5,"price":120,"date":"2024-02-01"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, got := do(t, srv, http.MethodGet, "/api/v1/members/self/holdings/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summary, _ := got["summary"].(map[string]any)
	assert.Equal(t, "400", summary["total_invested"])
	assert.Equal(t, "5", summary["total_units"])
	assert.Equal(t, "500", summary["current_value"])
	assert.Equal(t, "100", summary["gain_loss"])
	assert.Len(t, got["transactions"], 2)

	resp, _ = do(t, srv, http.MethodPatch, "/api/v1/members/self/holdings/"+id, `{"current_unit_price":"150"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, dashboard := do(t, srv, http.MethodGet, "/api/v1/portfolio/dashboard", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	household, _ := dashboard["household"].(map[string]any)
	assert.Equal(t, "750", household["current_value"])

	resp, _ = do(t, srv, http.MethodDelete, "/api/v1/members/self/holdings/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/members/self/holdings/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Errors(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{
			name:   "UnknownMember",
			method: http.MethodGet,
			path:   "/api/v1/members/ghost/holdings",
			want:   http.StatusNotFound,
		},
		{
			name:   "UnknownCategory",
			method: http.MethodPost,
			path:   "/api/v1/members/self/holdings",
			body:   `{"name":"Crypto","category":"Crypto","units":1,"price":1}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "BadDate",
			method: http.MethodPost,
			path:   "/api/v1/members/self/holdings",
			body:   `{"name":"FD","category":"Fixed Deposits","units":1,"price":1,"date":"10/01/2024"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "DuplicateUsername",
			method: http.MethodPost,
			path:   "/api/v1/members",
			body:   `{"username":"Self","name":"Another"}`,
			want:   http.StatusConflict,
		},
		{
			name:   "MalformedBody",
			method: http.MethodPatch,
			path:   "/api/v1/members/self",
			body:   `{"name":`,
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRouter_BackupRoundTrip(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/backup")
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "investment-tracker-backup-")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", "backup.json")
	require.NoError(t, err)

	_, err = part.Write([]byte(`{
		"users": [{"id": "asha", "username": "asha", "name": "Asha"}],
		"investments": {"asha": [{"id": "p1", "name": "PPF", "category": "PPF/NPS", "investedAmount": 5000, "currentValue": 5400}]}
	}`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	upload, err := srv.Client().Post(srv.URL+"/api/v1/backup", mw.FormDataContentType(), &body)
	require.NoError(t, err)

	defer upload.Body.Close()

	require.Equal(t, http.StatusOK, upload.StatusCode)

	var res map[string]any
	require.NoError(t, json.NewDecoder(upload.Body).Decode(&res))
	assert.EqualValues(t, 1, res["migrated"])

	_, detail := do(t, srv, http.MethodGet, "/api/v1/portfolio/members/asha", "")
	totals, _ := detail["totals"].(map[string]any)
	assert.Equal(t, "5400", totals["current_value"])
}

func TestRouter_Report(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/reports/household")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
}
