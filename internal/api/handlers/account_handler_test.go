package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"liqwatch/internal/monitor"
)

// ============================================================
// Моки
// ============================================================

type mockAccountSource struct {
	latest    []*monitor.AccountReport
	report    *monitor.AccountReport
	reportErr error
	addresses []string
}

func (m *mockAccountSource) Latest() []*monitor.AccountReport { return m.latest }

func (m *mockAccountSource) Report(ctx context.Context, index int) (*monitor.AccountReport, error) {
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.report, nil
}

func (m *mockAccountSource) Addresses() []string { return m.addresses }

func newAccountRouter(source AccountSource) *mux.Router {
	h := NewAccountHandler(source, zap.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/accounts", h.GetAccounts).Methods("GET")
	r.HandleFunc("/api/v1/accounts/{index:[0-9]+}/report", h.GetAccountReport).Methods("GET")
	return r
}

// ============================================================
// Тесты
// ============================================================

func TestGetAccounts(t *testing.T) {
	source := &mockAccountSource{
		latest: []*monitor.AccountReport{
			{Index: 0, Address: "0xaaa", HealthPct: 75.0, Tier: 0},
			{Index: 1, Address: "0xbbb", HealthPct: 12.5, Tier: 2},
		},
		addresses: []string{"0xaaa", "0xbbb"},
	}
	router := newAccountRouter(source)

	req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AccountListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected count 2, got %d", resp.Count)
	}
	if len(resp.Accounts) != 2 || resp.Accounts[1].Address != "0xbbb" {
		t.Errorf("unexpected accounts payload: %+v", resp.Accounts)
	}
}

func TestGetAccountsEmpty(t *testing.T) {
	router := newAccountRouter(&mockAccountSource{})

	req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Errorf("expected empty list response, got %s", rec.Body.String())
	}
}

func TestGetAccountReport(t *testing.T) {
	source := &mockAccountSource{
		addresses: []string{"0xaaa"},
		report: &monitor.AccountReport{
			Index:     0,
			Address:   "0xaaa",
			HealthPct: 33.3,
			Tier:      1,
		},
	}
	router := newAccountRouter(source)

	req := httptest.NewRequest("GET", "/api/v1/accounts/0/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report monitor.AccountReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Address != "0xaaa" || report.HealthPct != 33.3 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestGetAccountReportIndexOutOfRange(t *testing.T) {
	source := &mockAccountSource{addresses: []string{"0xaaa"}}
	router := newAccountRouter(source)

	req := httptest.NewRequest("GET", "/api/v1/accounts/5/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetAccountReportFetchFailure(t *testing.T) {
	source := &mockAccountSource{
		addresses: []string{"0xaaa"},
		reportErr: errors.New("venue unavailable"),
	}
	router := newAccountRouter(source)

	req := httptest.NewRequest("GET", "/api/v1/accounts/0/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to fetch") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestGetAccountReportTextFormat(t *testing.T) {
	source := &mockAccountSource{
		addresses: []string{"0x1234567890abcdef1234567890abcdef12345678"},
		report: &monitor.AccountReport{
			Index:     0,
			Address:   "0x1234567890abcdef1234567890abcdef12345678",
			HealthPct: 50,
		},
	}
	router := newAccountRouter(source)

	req := httptest.NewRequest("GET", "/api/v1/accounts/0/report?format=text", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "0x1234...5678") {
		t.Errorf("text report missing short address: %s", rec.Body.String())
	}
}
