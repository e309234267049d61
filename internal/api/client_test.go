package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.vsCurrency != "usd" {
			t.Errorf("vsCurrency = %q, want %q", c.vsCurrency, "usd")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 2 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 2)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("https://api.example.com",
			WithVsCurrency("eur"),
			WithTimeout(5*time.Second),
			WithRetries(4, 500*time.Millisecond),
			WithLogger(logger),
		)
		if c.vsCurrency != "eur" {
			t.Errorf("vsCurrency = %q, want %q", c.vsCurrency, "eur")
		}
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 4 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 4)
		}
		if c.retryDelay != 500*time.Millisecond {
			t.Errorf("retryDelay = %v, want %v", c.retryDelay, 500*time.Millisecond)
		}
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})
}

func TestFetchError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := &FetchError{Op: "/coins/markets", StatusCode: 429, Err: errors.New("Too Many Requests")}
		want := "fetch /coins/markets: status 429: Too Many Requests"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
		if !err.RateLimited() {
			t.Error("RateLimited() = false, want true for 429")
		}
		if err.retryable() {
			t.Error("retryable() = true, want false for 429")
		}
	})

	t.Run("without status", func(t *testing.T) {
		inner := errors.New("connection refused")
		err := &FetchError{Op: "/ping", Err: inner}
		if err.RateLimited() {
			t.Error("RateLimited() = true, want false")
		}
		if !errors.Is(err, inner) {
			t.Error("errors.Is should unwrap to the inner error")
		}
	})

	t.Run("retryable only for 5xx", func(t *testing.T) {
		for code, want := range map[int]bool{400: false, 404: false, 429: false, 500: true, 503: true} {
			err := &FetchError{StatusCode: code}
			if got := err.retryable(); got != want {
				t.Errorf("retryable() for %d = %v, want %v", code, got, want)
			}
		}
	})
}

// fakeCoins generates n provider entries, market cap descending.
func fakeCoins(offset, n int) []APICoin {
	coins := make([]APICoin, n)
	for i := range coins {
		rank := offset + i + 1
		coins[i] = APICoin{
			ID:                fmt.Sprintf("coin-%d", rank),
			Symbol:            fmt.Sprintf("c%d", rank),
			Name:              fmt.Sprintf("Coin %d", rank),
			CurrentPrice:      float64(100000 / rank),
			MarketCap:         float64((10000 - rank) * 1_000_000),
			MarketCapRank:     rank,
			TotalVolume:       float64(rank * 1000),
			PriceChangePct24h: float64(rank%7) - 3,
			LastUpdated:       "2025-01-08T12:00:00Z",
		}
	}
	return coins
}

func TestTopAssets(t *testing.T) {
	var gotQuery atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(fakeCoins(0, 50))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithTimeout(5*time.Second))

	assets, err := c.TopAssets(context.Background(), 50)
	if err != nil {
		t.Fatalf("TopAssets failed: %v", err)
	}
	if len(assets) != 50 {
		t.Fatalf("len(assets) = %d, want 50", len(assets))
	}

	for i, a := range assets {
		if a.Rank != i+1 {
			t.Errorf("assets[%d].Rank = %d, want %d", i, a.Rank, i+1)
		}
		if i > 0 && assets[i-1].MarketCap < a.MarketCap {
			t.Errorf("assets not sorted by market cap at index %d", i)
		}
	}
	if assets[0].Symbol != "C1" {
		t.Errorf("assets[0].Symbol = %q, want %q", assets[0].Symbol, "C1")
	}

	q := gotQuery.Load().(url.Values)
	if got := q["vs_currency"]; len(got) != 1 || got[0] != "usd" {
		t.Errorf("vs_currency = %v, want [usd]", got)
	}
	if got := q["order"]; len(got) != 1 || got[0] != "market_cap_desc" {
		t.Errorf("order = %v, want [market_cap_desc]", got)
	}
	if got := q["per_page"]; len(got) != 1 || got[0] != "50" {
		t.Errorf("per_page = %v, want [50]", got)
	}
	if got := q["sparkline"]; len(got) != 1 || got[0] != "false" {
		t.Errorf("sparkline = %v, want [false]", got)
	}
}

func TestTopAssets_Paginates(t *testing.T) {
	var pages atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		page := r.URL.Query().Get("page")
		offset := 0
		if page == "2" {
			offset = 250
		}
		json.NewEncoder(w).Encode(fakeCoins(offset, 250))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	assets, err := c.TopAssets(context.Background(), 300)
	if err != nil {
		t.Fatalf("TopAssets failed: %v", err)
	}
	if len(assets) != 300 {
		t.Fatalf("len(assets) = %d, want 300", len(assets))
	}
	if got := pages.Load(); got != 2 {
		t.Errorf("pages fetched = %d, want 2", got)
	}
	if assets[299].Rank != 300 {
		t.Errorf("last rank = %d, want 300", assets[299].Rank)
	}
}

func TestTopAssets_ShortResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fakeCoins(0, 7))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	_, err := c.TopAssets(context.Background(), 50)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
}

func TestTopAssets_RateLimitNotRetried(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, time.Millisecond))

	_, err := c.TopAssets(context.Background(), 50)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if !fetchErr.RateLimited() {
		t.Errorf("RateLimited() = false, want true")
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (429 must not be retried)", got)
	}
}

func TestTopAssets_ServerErrorRetried(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(fakeCoins(0, 10))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(2, time.Millisecond))

	assets, err := c.TopAssets(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopAssets failed after retries: %v", err)
	}
	if len(assets) != 10 {
		t.Errorf("len(assets) = %d, want 10", len(assets))
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestTopAssets_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not": "an array"`)
	}))
	defer server.Close()

	c := NewClient(server.URL)

	_, err := c.TopAssets(context.Background(), 10)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want *FetchError for parse failure", err)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			t.Errorf("path = %q, want /ping", r.URL.Path)
		}
		fmt.Fprint(w, `{"gecko_says":"(V3) To the Moon!"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
