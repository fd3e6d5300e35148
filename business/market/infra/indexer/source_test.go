package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbizirq/arbizirq/business/market/domain"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

func newTestSource(t *testing.T, handler http.HandlerFunc) (*Source, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig(server.URL)
	cfg.APIKey = "test-key"
	client, err := NewClient(cfg, &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewSource(client), server
}

func TestGetQuotes(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)

	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/quotes" {
			t.Errorf("path = %s, want /v1/quotes", r.URL.Path)
		}
		if got := r.URL.Query().Get("pair"); got != "WETH-USDC" {
			t.Errorf("pair = %s, want WETH-USDC", got)
		}
		if got := r.URL.Query().Get("chain"); got != "zircuit" {
			t.Errorf("chain = %s, want zircuit", got)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key = %s, want test-key", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(quotesResponse{
			Quotes: []quoteResponse{
				{
					Venue:        "zircuit-dex",
					Chain:        "zircuit",
					Pair:         "WETH-USDC",
					Price:        "3025.50",
					LiquidityUSD: "48000",
					Timestamp:    now.UnixMilli(),
				},
			},
		})
	})

	quotes, err := source.GetQuotes(context.Background(),
		domain.Pair{Base: "WETH", Quote: "USDC"}, domain.ChainZircuit)
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}

	if len(quotes) != 1 {
		t.Fatalf("got %d quotes, want 1", len(quotes))
	}

	q := quotes[0]
	if q.Venue != "zircuit-dex" {
		t.Errorf("Venue = %s, want zircuit-dex", q.Venue)
	}
	if !q.Price.Equal(decimal.RequireFromString("3025.50")) {
		t.Errorf("Price = %s, want 3025.50", q.Price)
	}
	if !q.LiquidityUSD.Equal(decimal.RequireFromString("48000")) {
		t.Errorf("LiquidityUSD = %s, want 48000", q.LiquidityUSD)
	}
	if !q.ObservedAt.Equal(now) {
		t.Errorf("ObservedAt = %s, want %s", q.ObservedAt, now)
	}
}

func TestGetQuotesDropsMalformedEntries(t *testing.T) {
	now := time.Now()

	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(quotesResponse{
			Quotes: []quoteResponse{
				{Venue: "zircuit-dex", Chain: "zircuit", Pair: "WETH-USDC", Price: "3025.50", LiquidityUSD: "48000", Timestamp: now.UnixMilli()},
				{Venue: "bad-price", Chain: "zircuit", Pair: "WETH-USDC", Price: "not-a-number", LiquidityUSD: "48000", Timestamp: now.UnixMilli()},
				{Venue: "bad-chain", Chain: "notachain", Pair: "WETH-USDC", Price: "3025.50", LiquidityUSD: "48000", Timestamp: now.UnixMilli()},
				{Venue: "bad-pair", Chain: "zircuit", Pair: "WETHUSDC", Price: "3025.50", LiquidityUSD: "48000", Timestamp: now.UnixMilli()},
			},
		})
	})

	quotes, err := source.GetQuotes(context.Background(),
		domain.Pair{Base: "WETH", Quote: "USDC"}, domain.ChainZircuit)
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}

	if len(quotes) != 1 {
		t.Fatalf("got %d quotes, want only the well-formed one", len(quotes))
	}
	if quotes[0].Venue != "zircuit-dex" {
		t.Errorf("Venue = %s, want zircuit-dex", quotes[0].Venue)
	}
}

func TestGetQuotesServerError(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(apiError{Code: "UPSTREAM_DOWN", Message: "indexer upstream unavailable"})
	})

	_, err := source.GetQuotes(context.Background(),
		domain.Pair{Base: "WETH", Quote: "USDC"}, domain.ChainZircuit)
	if err == nil {
		t.Fatal("expected error for HTTP 502")
	}
	if code := apperror.GetCode(err); code != apperror.CodeIndexerUnavailable {
		t.Errorf("code = %s, want %s", code, apperror.CodeIndexerUnavailable)
	}
}

func TestGetQuotesEmptyResponse(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(quotesResponse{})
	})

	quotes, err := source.GetQuotes(context.Background(),
		domain.Pair{Base: "WETH", Quote: "USDC"}, domain.ChainZircuit)
	if err != nil {
		t.Fatalf("GetQuotes() error = %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("got %d quotes, want 0", len(quotes))
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}, &mockLogger{}); err == nil {
		t.Error("expected error for empty base URL")
	}
}
