package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/athena-hd/athena-rewards/internal/faults"
	"github.com/athena-hd/athena-rewards/internal/retry"
)

func newTestClient() *Client {
	handler := faults.NewHandler()
	return NewClient(handler, retry.NewCoordinator(handler))
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"transaction_id": "txn_123",
			"balance":        900,
		})
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Error)
	}
	if res.TransactionID != "txn_123" {
		t.Fatalf("expected transaction id txn_123, got %q", res.TransactionID)
	}
	if len(res.Data) == 0 {
		t.Fatal("expected raw body in Data")
	}
}

func TestFetchClassifiesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"message": "maintenance window"})
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil, &faults.Context{UserID: "u"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Type != faults.ServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %s", res.Error.Type)
	}
	if res.Error.Technical.Message != "maintenance window" {
		t.Fatalf("expected body message, got %q", res.Error.Technical.Message)
	}
	if res.Error.Technical.Code != "HTTP_503" {
		t.Fatalf("expected code HTTP_503, got %q", res.Error.Technical.Code)
	}
}

func TestFetchStatusTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		want   faults.Type
	}{
		{http.StatusConflict, faults.ConcurrentModification},
		{http.StatusGatewayTimeout, faults.Timeout},
		{http.StatusBadGateway, faults.ServiceUnavailable},
		{http.StatusBadRequest, faults.ValidationError},
		{http.StatusInternalServerError, faults.Unknown},
	}
	for _, tc := range cases {
		status := tc.status
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil, nil)
		srv.Close()
		if res.Success {
			t.Fatalf("status %d: expected failure", tc.status)
		}
		if res.Error.Type != tc.want {
			t.Errorf("status %d: got %s, want %s", tc.status, res.Error.Type, tc.want)
		}
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before the call: connection refused

	res := newTestClient().Fetch(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error.Type != faults.DatabaseConnection && res.Error.Type != faults.NetworkError {
		t.Fatalf("expected a connection-class error, got %s", res.Error.Type)
	}
}

func TestFetchWithRetryRecovers(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"transaction_id": "txn_9"})
	}))
	defer srv.Close()

	handler := faults.NewHandler()
	coord := retry.NewCoordinator(handler).WithSchedule(3, []time.Duration{time.Millisecond})
	client := NewClient(handler, coord)

	res := client.FetchWithRetry(context.Background(), http.MethodGet, srv.URL, nil, &faults.Context{UserID: "u", Operation: "fetch"})
	if !res.Success {
		t.Fatalf("expected eventual success, got %+v", res.Error)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if res.TransactionID != "txn_9" {
		t.Fatalf("expected transaction id txn_9, got %q", res.TransactionID)
	}
}

func TestFetchPostSendsJSONBody(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	res := newTestClient().Fetch(context.Background(), http.MethodPost, srv.URL, map[string]any{"amount": 25}, nil)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Error)
	}
	if received["amount"] != float64(25) {
		t.Fatalf("body not delivered: %+v", received)
	}
}
