package dataflows

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/monitor"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryDelay = 0
	cfg.CacheEnabled = false
	return cfg
}

func newTestMoexClient(t *testing.T, handler http.Handler) (*MoexClient, *httptest.Server, *monitor.Monitor) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mon := monitor.New(0)
	mc := NewMoexClient(testConfig(), mon)
	mc.http.SetBaseURL(srv.URL)
	return mc, srv, mon
}

func TestMoexClientHistoryParsesCandles(t *testing.T) {
	body := `{
		"history": {
			"columns": ["TRADEDATE", "CLOSE", "VOLUME", "VALUE"],
			"data": [
				["2024-01-15", 123.45, 1000000, 123450000.5],
				["2024-01-16", null, 0, 0],
				["2024-01-17", 125.1, 2000000, 250200000]
			]
		},
		"history.cursor": {
			"columns": ["INDEX", "TOTAL", "PAGESIZE"],
			"data": [[0, 3, 100]]
		}
	}`
	mc, _, _ := newTestMoexClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/iss/history/engines/stock/markets/shares/boards/TQBR/securities/SBER.json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))

	candles, err := mc.GetTickerHistory(context.Background(), "SBER", 30)
	if err != nil {
		t.Fatalf("GetTickerHistory: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles (null close dropped), got %d", len(candles))
	}
	if got := candles[0].Date.Format("2006-01-02"); got != "2024-01-15" {
		t.Errorf("first candle date = %s", got)
	}
	if got := candles[1].Close.String(); got != "125.1" {
		t.Errorf("second candle close = %s", got)
	}
	if candles[0].Volume != 1000000 {
		t.Errorf("first candle volume = %d", candles[0].Volume)
	}

	table := FormatCandles(candles)
	if !strings.HasPrefix(table, "TRADEDATE CLOSE VOLUME VALUE") {
		t.Errorf("FormatCandles header missing:\n%s", table)
	}
	if !strings.Contains(table, "2024-01-17 125.1 2000000") {
		t.Errorf("FormatCandles row missing:\n%s", table)
	}
}

func TestMoexClientHistoryPaging(t *testing.T) {
	pages := map[string]string{
		"0": `{
			"history": {"columns": ["TRADEDATE", "CLOSE", "VOLUME", "VALUE"],
				"data": [["2024-01-15", 10.0, 1, 10], ["2024-01-16", 11.0, 1, 11]]},
			"history.cursor": {"columns": ["INDEX", "TOTAL", "PAGESIZE"], "data": [[0, 3, 2]]}
		}`,
		"2": `{
			"history": {"columns": ["TRADEDATE", "CLOSE", "VOLUME", "VALUE"],
				"data": [["2024-01-17", 12.0, 1, 12]]},
			"history.cursor": {"columns": ["INDEX", "TOTAL", "PAGESIZE"], "data": [[2, 3, 2]]}
		}`,
	}
	var requests int
	mc, _, _ := newTestMoexClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page, ok := pages[r.URL.Query().Get("start")]
		if !ok {
			t.Errorf("unexpected start=%s", r.URL.Query().Get("start"))
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))

	candles, err := mc.GetTickerHistory(context.Background(), "GAZP", 30)
	if err != nil {
		t.Fatalf("GetTickerHistory: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 candles across pages, got %d", len(candles))
	}
	if requests != 2 {
		t.Errorf("expected 2 page requests, got %d", requests)
	}
	if got := candles[2].Date.Format("2006-01-02"); got != "2024-01-17" {
		t.Errorf("last candle date = %s", got)
	}
}

func TestMoexClientHistoryNoData(t *testing.T) {
	body := `{
		"history": {"columns": ["TRADEDATE", "CLOSE", "VOLUME", "VALUE"], "data": []},
		"history.cursor": {"columns": ["INDEX", "TOTAL", "PAGESIZE"], "data": [[0, 0, 100]]}
	}`
	mc, _, _ := newTestMoexClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	_, err := mc.GetTickerHistory(context.Background(), "XXXX", 30)
	if err == nil {
		t.Fatal("expected error for empty history window")
	}
	if !errors.Is(err, ErrNoMarketData) {
		t.Errorf("expected ErrNoMarketData, got %v", err)
	}
}

func TestMoexClientHistoryCache(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{
			"history": {"columns": ["TRADEDATE", "CLOSE", "VOLUME", "VALUE"],
				"data": [["2024-01-15", 10.0, 1, 10]]},
			"history.cursor": {"columns": ["INDEX", "TOTAL", "PAGESIZE"], "data": [[0, 1, 100]]}
		}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.CacheEnabled = true
	mc := NewMoexClient(cfg, monitor.New(0))
	mc.http.SetBaseURL(srv.URL)

	for i := 0; i < 3; i++ {
		if _, err := mc.GetTickerHistory(context.Background(), "LKOH", 30); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request with cache enabled, got %d", requests)
	}
}

func TestMoexClientRetriesServerErrors(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{
			"history": {"columns": ["TRADEDATE", "CLOSE", "VOLUME", "VALUE"],
				"data": [["2024-01-15", 10.0, 1, 10]]},
			"history.cursor": {"columns": ["INDEX", "TOTAL", "PAGESIZE"], "data": [[0, 1, 100]]}
		}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 3
	mon := monitor.New(0)
	mc := NewMoexClient(cfg, mon)
	mc.http.SetBaseURL(srv.URL)

	candles, err := mc.GetTickerHistory(context.Background(), "SBER", 30)
	if err != nil {
		t.Fatalf("expected recovery after transient errors, got %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
	if requests != 3 {
		t.Errorf("expected 3 attempts, got %d", requests)
	}

	stats := mon.Summary()
	if stats.Services["moex_data"].TotalCalls != 3 {
		t.Errorf("monitor should see every attempt, got %d", stats.Services["moex_data"].TotalCalls)
	}
}

func TestMoexClientDoesNotRetryClientErrors(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 3
	mc := NewMoexClient(cfg, monitor.New(0))
	mc.http.SetBaseURL(srv.URL)

	if _, err := mc.GetTickerHistory(context.Background(), "SBER", 30); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if requests != 1 {
		t.Errorf("404 must not be retried, got %d requests", requests)
	}
}

func TestMoexClientLastPrice(t *testing.T) {
	body := `{
		"marketdata": {
			"columns": ["SECID", "LAST"],
			"data": [["SBER", 305.5]]
		}
	}`
	mc, _, _ := newTestMoexClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/iss/engines/stock/markets/shares/boards/TQBR/securities/SBER.json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))

	price, err := mc.GetLastPrice(context.Background(), "SBER")
	if err != nil {
		t.Fatalf("GetLastPrice: %v", err)
	}
	if price != 305.5 {
		t.Errorf("price = %v, want 305.5", price)
	}
}

func TestMoexClientLastPriceMissing(t *testing.T) {
	body := `{
		"marketdata": {
			"columns": ["SECID", "LAST"],
			"data": [["SBER", null]]
		}
	}`
	mc, _, _ := newTestMoexClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	if _, err := mc.GetLastPrice(context.Background(), "SBER"); err == nil {
		t.Fatal("expected error when LAST is null")
	}
}

func TestRecentCandles(t *testing.T) {
	candles := make([]Candle, 5)
	if got := len(RecentCandles(candles, 3)); got != 3 {
		t.Errorf("RecentCandles(5, 3) len = %d", got)
	}
	if got := len(RecentCandles(candles, 10)); got != 5 {
		t.Errorf("RecentCandles(5, 10) len = %d", got)
	}
	if got := len(RecentCandles(candles, 0)); got != 5 {
		t.Errorf("RecentCandles(5, 0) len = %d", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("короткий", 100); got != "короткий" {
		t.Errorf("short text changed: %q", got)
	}
	got := TruncateText("длинный текст про отчетность", 7)
	if got != "длинный..." {
		t.Errorf("TruncateText = %q, want %q", got, "длинный...")
	}
}
