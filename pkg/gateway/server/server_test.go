package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/voicecart/voicecart/pkg/commerce/store"
	"github.com/voicecart/voicecart/pkg/gateway/backend"
	"github.com/voicecart/voicecart/pkg/gateway/config"
)

type nilConnector struct{}

func (nilConnector) Connect(context.Context, backend.SessionConfig) (backend.Stream, error) {
	panic("not used in these tests")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "srv.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	seedOrders(t, db)

	cfg := config.Config{
		GeminiModel:       "test-model",
		GeminiVoice:       "Kore",
		SilenceDurationMs: 200,
		RecvTimeout:       10 * time.Second,
		KeepaliveAfter:    30 * time.Second,
		WriteTimeout:      time.Second,
		ToolCallTimeout:   time.Second,
	}
	return New(cfg, db, nilConnector{}, nil)
}

func seedOrders(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO customers (customer_id, customer_name) VALUES ('CUST1', 'Sam')`,
		`INSERT INTO orders (order_id, customer_id, order_status, order_date, total_amount) VALUES
			('ORD1', 'CUST1', 'Placed', '2026-08-25', 42.50)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestRoutesHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("middleware chain did not attach a request id")
	}
}

func TestRoutesOrdersSummary(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if total, _ := resp["total_orders"].(float64); total != 1 {
		t.Fatalf("total_orders = %v", resp["total_orders"])
	}
}

func TestRoutesOrderByID(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/ORD1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/MISSING", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRoutesUnknownPathIs404JSON(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"] != "not found" {
		t.Fatalf("body = %v", resp)
	}
}
