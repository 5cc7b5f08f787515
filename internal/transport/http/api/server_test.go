package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/recorder"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, func(*Config) {})
}

func newTestServerWith(t *testing.T, opt func(*Config)) *Server {
	t.Helper()
	fetcher := &collector.MockFetcher{
		Price: 120,
		End:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		Errs:  map[string]error{"BAD": collector.ErrNoData},
	}
	m := metrics.New(prometheus.NewRegistry())
	col := collector.NewCollector(fetcher, collector.Range6M, calculator.DefaultSettings(), zerolog.Nop(), m)
	cfg := Config{Collector: col, Metrics: m, Symbols: []string{"AAPL"}, Logger: zerolog.Nop()}
	opt(&cfg)
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewServer_RequiresCollector(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Error("expected error without a collector")
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestIndicators(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantBars int
	}{
		{"default range", "/api/v1/indicators/aapl", http.StatusOK, 126},
		{"explicit range", "/api/v1/indicators/MSFT?range=3mo", http.StatusOK, 63},
		{"bad range", "/api/v1/indicators/AAPL?range=7w", http.StatusBadRequest, 0},
		{"fetch failure", "/api/v1/indicators/BAD", http.StatusBadGateway, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
					t.Errorf("expected error body, got %s", rec.Body.String())
				}
				return
			}
			var report model.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(report.Bars) != tt.wantBars {
				t.Errorf("bars = %d, want %d", len(report.Bars), tt.wantBars)
			}
			if len(report.Indicators.RSI) != tt.wantBars-14 {
				t.Errorf("rsi points = %d, want %d", len(report.Indicators.RSI), tt.wantBars-14)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/v1/summary?symbols=msft,bad")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Summaries) != 1 || resp.Summaries[0].Symbol != "MSFT" {
		t.Errorf("summaries = %+v", resp.Summaries)
	}
	if !strings.Contains(resp.Errors["BAD"], "no data") {
		t.Errorf("errors = %v", resp.Errors)
	}

	rec = get(t, s, "/api/v1/summary")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"symbol":"AAPL"`) {
		t.Errorf("default watchlist summary = %d %s", rec.Code, rec.Body.String())
	}

	if rec = get(t, s, "/api/v1/summary?symbols=bad"); rec.Code != http.StatusBadGateway {
		t.Errorf("all-failed summary status = %d, want 502", rec.Code)
	}
}

func TestChart(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/chart/AAPL?range=3mo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "AAPL price") {
		t.Error("chart page missing price pane")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/api/v1/indicators/AAPL")

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stockscope_reports_total") {
		t.Errorf("metrics output missing reports counter:\n%s", rec.Body.String())
	}
}

func TestIndicators_ReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := recorder.NewRedisRecorder(context.Background(), recorder.RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	s := newTestServerWith(t, func(c *Config) { c.Cache = cache })

	steps := []struct {
		target    string
		wantCache string
		wantBars  int
	}{
		{"/api/v1/indicators/aapl", "MISS", 126},
		{"/api/v1/indicators/AAPL", "HIT", 126},
		{"/api/v1/indicators/AAPL?range=3mo", "MISS", 63},
		{"/api/v1/indicators/AAPL?range=3mo", "HIT", 63},
	}
	for _, st := range steps {
		rec := get(t, s, st.target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d: %s", st.target, rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Cache"); got != st.wantCache {
			t.Errorf("%s: X-Cache = %q, want %q", st.target, got, st.wantCache)
		}
		var report model.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(report.Bars) != st.wantBars {
			t.Errorf("%s: bars = %d, want %d", st.target, len(report.Bars), st.wantBars)
		}
	}
	if !mr.Exists(recorder.ReportKey("AAPL")) {
		t.Error("report was not written to redis")
	}

	// an unreadable entry falls back to a fetch and is overwritten
	if err := mr.Set(recorder.ReportKey("MSFT"), "garbage"); err != nil {
		t.Fatal(err)
	}
	rec := get(t, s, "/chart/MSFT")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("corrupt entry: status %d, X-Cache %q", rec.Code, rec.Header().Get("X-Cache"))
	}
	if rec = get(t, s, "/chart/MSFT"); rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("rewritten entry not served from cache: %q", rec.Header().Get("X-Cache"))
	}
}

func TestMovingAverage(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		target     string
		wantCode   int
		wantField  string
		wantPoints int
	}{
		{"defaults", "/api/v1/ma/AAPL", http.StatusOK, "close", 126 - 20 + 1},
		{"ema on volume", "/api/v1/ma/AAPL?kind=ema&period=10&field=Volume", http.StatusOK, "volume", 126 - 10 + 1},
		{"longer than series", "/api/v1/ma/AAPL?range=1mo&period=50", http.StatusOK, "close", 0},
		{"bad field", "/api/v1/ma/AAPL?field=vwap", http.StatusBadRequest, "", 0},
		{"bad kind", "/api/v1/ma/AAPL?kind=wma", http.StatusBadRequest, "", 0},
		{"bad period", "/api/v1/ma/AAPL?period=0", http.StatusBadRequest, "", 0},
		{"fetch failure", "/api/v1/ma/BAD", http.StatusBadGateway, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp averageResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Field != tt.wantField || len(resp.Points) != tt.wantPoints {
				t.Errorf("field=%s points=%d, want %s/%d", resp.Field, len(resp.Points), tt.wantField, tt.wantPoints)
			}
		})
	}
}

func TestStoredSeries(t *testing.T) {
	if rec := get(t, newTestServer(t), "/api/v1/stored/AAPL/rsi_14"); rec.Code != http.StatusNotFound {
		t.Errorf("route without a store: status = %d, want 404", rec.Code)
	}

	db, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "api.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := newTestServerWith(t, func(c *Config) { c.Store = db })

	report, err := s.collector.Collect(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if err := db.RecordReport(context.Background(), report); err != nil {
		t.Fatalf("record: %v", err)
	}

	rec := get(t, s, "/api/v1/stored/aapl/rsi_14")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Symbol string        `json:"symbol"`
		Points []model.Point `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Symbol != "AAPL" || len(resp.Points) != len(report.Indicators.RSI) {
		t.Fatalf("symbol=%s points=%d, want AAPL/%d", resp.Symbol, len(resp.Points), len(report.Indicators.RSI))
	}
	if resp.Points[0].Value != report.Indicators.RSI[0].Value {
		t.Errorf("first rsi = %v, want %v", resp.Points[0].Value, report.Indicators.RSI[0].Value)
	}

	if rec := get(t, s, "/api/v1/stored/AAPL/sma_999"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown series: status = %d, want 404", rec.Code)
	}
}
