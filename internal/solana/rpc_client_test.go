package solana

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"solana-token-qualifier/internal/observability"
)

func TestHTTPClientGetTokenSupply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":{"uiAmount":1000000,"decimals":6}}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithMaxRetries(0))

	supply, err := client.GetTokenSupply(context.Background(), "MintAAA")
	if err != nil {
		t.Fatalf("GetTokenSupply: %v", err)
	}
	if supply.Amount != 1000000 {
		t.Errorf("Amount = %v, want 1000000", supply.Amount)
	}
	if supply.Decimals != 6 {
		t.Errorf("Decimals = %d, want 6", supply.Decimals)
	}
}

func TestCallObservesLatencyMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":null}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithMaxRetries(0))

	before := testutil.CollectAndCount(observability.DefaultMetrics.RPCCallLatency)
	if _, err := client.GetAccountInfo(context.Background(), "AccountAAA"); err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}
	after := testutil.CollectAndCount(observability.DefaultMetrics.RPCCallLatency)
	if after != before+1 {
		t.Errorf("latency series = %d, want %d after first getAccountInfo call", after, before+1)
	}
}

func TestCallCountsErrorMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithMaxRetries(0), WithRetryDelay(0))

	errCounter := observability.DefaultMetrics.RPCCallErrors.WithLabelValues("getTokenSupply")
	before := testutil.ToFloat64(errCounter)

	if _, err := client.GetTokenSupply(context.Background(), "MintAAA"); err == nil {
		t.Fatal("GetTokenSupply: expected error on HTTP 500")
	}
	if got := testutil.ToFloat64(errCounter); got != before+1 {
		t.Errorf("error count = %v, want %v", got, before+1)
	}
}
