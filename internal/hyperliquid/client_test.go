package hyperliquid

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ============================================================
// Info API Client Tests
// ============================================================

// newTestServer поднимает фейковый info API: ответы по значению "type"
func newTestServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %s", body)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		resp, ok := responses[req["type"]]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
}

func TestClientFetchAccount(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"clearinghouseState": `{
			"marginSummary": {"accountValue": "1000", "totalNtlPos": "2000", "totalMarginUsed": "300"},
			"crossMaintenanceMarginUsed": "100",
			"assetPositions": [
				{"type": "oneWay", "position": {
					"coin": "BTC", "szi": "0.5", "entryPx": "100",
					"liquidationPx": "80", "markPx": "95", "unrealizedPnl": "-2.5",
					"leverage": {"type": "cross", "value": "5"}
				}}
			]
		}`,
	})
	defer server.Close()

	c := NewClient(ClientOptions{BaseURL: server.URL})

	snapshot, positions, err := c.FetchAccount(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}

	if snapshot.AccountValue != 1000 {
		t.Errorf("accountValue = %v, want 1000", snapshot.AccountValue)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	if positions[0].MarkPrice == nil || *positions[0].MarkPrice != 95 {
		t.Error("mark price not taken from snapshot")
	}
}

func TestClientFillsMarkPricesFromAllMids(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"clearinghouseState": `{
			"marginSummary": {"accountValue": "1000"},
			"assetPositions": [
				{"type": "oneWay", "position": {"coin": "BTC", "szi": "0.5", "entryPx": "100"}}
			]
		}`,
		"allMids": `{"BTC": "97.5", "ETH": "50", "BROKEN": "n/a"}`,
	})
	defer server.Close()

	c := NewClient(ClientOptions{BaseURL: server.URL})

	_, positions, err := c.FetchAccount(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	if positions[0].MarkPrice == nil || *positions[0].MarkPrice != 97.5 {
		t.Error("mark price not filled from allMids")
	}
}

func TestClientAllMidsSkipsGarbageQuotes(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"allMids": `{"BTC": "97.5", "BROKEN": "n/a"}`,
	})
	defer server.Close()

	c := NewClient(ClientOptions{BaseURL: server.URL})

	mids, err := c.AllMids(context.Background())
	if err != nil {
		t.Fatalf("AllMids returned error: %v", err)
	}
	if len(mids) != 1 || mids["BTC"] != 97.5 {
		t.Errorf("mids = %v", mids)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"marginSummary": {"accountValue": "1000"}}`))
	}))
	defer server.Close()

	c := NewClient(ClientOptions{BaseURL: server.URL})

	snapshot, _, err := c.FetchAccount(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("FetchAccount did not recover after retries: %v", err)
	}
	if snapshot.AccountValue != 1000 {
		t.Errorf("accountValue = %v, want 1000", snapshot.AccountValue)
	}
	if attempts != 3 {
		t.Errorf("server saw %d attempts, want 3", attempts)
	}
}

func TestClientReportsPersistentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(ClientOptions{BaseURL: server.URL})

	if _, _, err := c.FetchAccount(context.Background(), "0xabc"); err == nil {
		t.Fatal("persistent failure did not surface as error")
	}
}

func TestClientContextCancellation(t *testing.T) {
	server := newTestServer(t, map[string]string{"allMids": `{}`})
	defer server.Close()

	c := NewClient(ClientOptions{BaseURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.AllMids(ctx); err == nil {
		t.Fatal("cancelled context did not surface as error")
	}
}
