package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/vegasq/tabq/query"
	"github.com/vegasq/tabq/reader"
)

const testSecret = "s3cret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRegistry(t *testing.T) *reader.Registry {
	t.Helper()
	reg, err := reader.NewRegistryFromCatalog(reader.DefaultCatalog())
	if err != nil {
		t.Fatalf("NewRegistryFromCatalog() error = %v", err)
	}
	return reg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{
		Source:     newRegistry(t),
		Engine:     query.Engine{Limits: query.DefaultLimits()},
		Authorizer: SecretGate{Expected: testSecret},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func do(t *testing.T, s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func authed() map[string]string {
	return map[string]string{SecretHeader: testSecret}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v: %s", err, w.Body.String())
	}
	return body
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("GET / = %d %q, want 200 OK", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d", w.Code)
	}
	var health struct {
		OK        bool   `json:"ok"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if !health.OK || health.Timestamp == "" {
		t.Errorf("health = %+v", health)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodOptions, "/query", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("OPTIONS /query status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-Secret") {
		t.Errorf("Allow-Headers = %q, want X-Secret listed", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestAuthorization(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		header   map[string]string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing secret",
			expected: testSecret,
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Missing X-Secret header",
		},
		{
			name:     "wrong secret",
			expected: testSecret,
			header:   map[string]string{SecretHeader: "nope"},
			wantCode: http.StatusUnauthorized,
			wantMsg:  "Invalid X-Secret",
		},
		{
			name:     "secret not configured",
			expected: "",
			header:   map[string]string{SecretHeader: "anything"},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "LUZMO_PLUGIN_SECRET is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{
				Source:     newRegistry(t),
				Authorizer: SecretGate{Expected: tt.expected},
				Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			w := do(t, s, http.MethodPost, "/authorize", "{}", tt.header)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if got := decodeError(t, w); got.Message != tt.wantMsg || got.Type.Code != tt.wantCode {
				t.Errorf("error = %+v, want message %q", got, tt.wantMsg)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/authorize", "{}", authed())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if diff := cmp.Diff(`{"ok":true}`, w.Body.String()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestDatasets(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := do(t, s, method, "/datasets", "", authed())
		if w.Code != http.StatusOK {
			t.Fatalf("%s /datasets status = %d", method, w.Code)
		}
		var metas []reader.Meta
		if err := json.Unmarshal(w.Body.Bytes(), &metas); err != nil {
			t.Fatalf("datasets body: %v", err)
		}
		if len(metas) != 1 || metas[0].ID != reader.DemoID {
			t.Errorf("%s /datasets = %+v, want the demo dataset", method, metas)
		}
		if diff := cmp.Diff([]string{"category", "date", "value"}, metas[0].ColumnNames()); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestQuery(t *testing.T) {
	s := newTestServer(t)

	body := `{
		"dataset_id": "demo",
		"columns": [{"id": "category"}, {"id": "value", "aggregation": "count"}],
		"filters": [{"column_id": "category", "expression": "in", "value": ["A", "B"]}],
		"options": {"sort": [{"column_id": "category", "direction": "asc"}]}
	}`
	w := do(t, s, http.MethodPost, "/query", body, authed())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var rows [][]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("query body: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %v", len(rows), rows)
	}
	if rows[0][0] != "A" || rows[1][0] != "B" {
		t.Errorf("groups = %v, %v, want A then B", rows[0][0], rows[1][0])
	}
	for _, row := range rows {
		if n, ok := row[1].(float64); !ok || n < 180 {
			t.Errorf("count for %v = %v, want at least one row per day", row[0], row[1])
		}
	}
}

func TestQueryLimitAndIDFallback(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/query", `{"id": "demo", "limit": 3}`, authed())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var rows [][]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("query body: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
	for _, row := range rows {
		if len(row) != 3 {
			t.Errorf("raw row %v has %d cells, want 3", row, len(row))
		}
	}
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantDesc string
		wantMsg  string
	}{
		{
			name:     "bad json",
			body:     `{"columns": [`,
			wantCode: http.StatusBadRequest,
			wantDesc: "Invalid request",
			wantMsg:  "Json deserialize error: ",
		},
		{
			name:     "unknown dataset",
			body:     `{"dataset_id": "missing"}`,
			wantCode: http.StatusNotFound,
			wantDesc: "Unknown dataset",
			wantMsg:  "Unknown dataset id: missing",
		},
		{
			name:     "unknown column",
			body:     `{"dataset_id": "demo", "columns": [{"id": "region"}, {"id": "value", "aggregation": "sum"}]}`,
			wantCode: http.StatusBadRequest,
			wantDesc: "Unknown column",
			wantMsg:  "unknown column",
		},
		{
			name:     "unsupported aggregation",
			body:     `{"dataset_id": "demo", "columns": [{"id": "category"}, {"id": "value", "aggregation": "median"}]}`,
			wantCode: http.StatusBadRequest,
			wantDesc: "Unsupported aggregation",
			wantMsg:  "unsupported aggregation",
		},
		{
			name:     "negative limit",
			body:     `{"dataset_id": "demo", "limit": -1}`,
			wantCode: http.StatusBadRequest,
			wantDesc: "Invalid request",
			wantMsg:  "invalid request",
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/query", tt.body, authed())
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			got := decodeError(t, w)
			if got.Type.Code != tt.wantCode || got.Type.Description != tt.wantDesc {
				t.Errorf("type = %+v, want {%d %s}", got.Type, tt.wantCode, tt.wantDesc)
			}
			if !strings.HasPrefix(got.Message, tt.wantMsg) {
				t.Errorf("message = %q, want prefix %q", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "", map[string]string{RequestIDHeader: "abc-123"})
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("echoed request id = %q, want abc-123", got)
	}

	w = do(t, s, http.MethodGet, "/health", "", nil)
	if got := w.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("generated request id = %q, want a UUID", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodGet, "/health", "", nil)

	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("tabq_http_requests_total")) {
		t.Error("metrics output missing tabq_http_requests_total")
	}
}

func TestRecovery(t *testing.T) {
	s := New(Options{
		Source:     panicSource{},
		Authorizer: SecretGate{Expected: testSecret},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	w := do(t, s, http.MethodGet, "/datasets", "", authed())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeError(t, w); got.Type.Description != "Internal error" {
		t.Errorf("type = %+v", got.Type)
	}
}

type panicSource struct{}

func (panicSource) Dataset(context.Context, string) (*reader.Dataset, error) { panic("boom") }
func (panicSource) List(context.Context) ([]reader.Meta, error)              { panic("boom") }
