// Package api serves reports, summaries and charts over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"StockScope/internal/calculator"
	"StockScope/internal/chart"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logging"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/strategy"
)

// ReportCache holds the latest report per symbol.
type ReportCache interface {
	LoadReport(ctx context.Context, symbol string) (*model.Report, error)
	RecordReport(ctx context.Context, report *model.Report) error
}

// SeriesStore reads indicator series recorded by earlier runs.
type SeriesStore interface {
	SeriesValues(ctx context.Context, symbol, series string) ([]model.Point, error)
}

// Server exposes the collector over a gin router.
type Server struct {
	addr      string
	collector *collector.Collector
	metrics   *metrics.Metrics
	cache     ReportCache
	store     SeriesStore
	symbols   []string
	logger    zerolog.Logger
	router    *gin.Engine
}

// Config wires a Server. Metrics, Cache and Store may be nil; Symbols is the
// default list for /api/v1/summary.
type Config struct {
	Addr      string
	Collector *collector.Collector
	Metrics   *metrics.Metrics
	Cache     ReportCache
	Store     SeriesStore
	Symbols   []string
	Logger    zerolog.Logger
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Collector == nil {
		return nil, errors.New("collector is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:      cfg.Addr,
		collector: cfg.Collector,
		metrics:   cfg.Metrics,
		cache:     cfg.Cache,
		store:     cfg.Store,
		symbols:   cfg.Symbols,
		logger:    logging.WithComponent(cfg.Logger, "http"),
		router:    router,
	}
	router.Use(s.accessLog)
	s.registerRoutes()
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/chart/:symbol", s.handleChart)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api/v1")
	api.GET("/indicators/:symbol", s.handleIndicators)
	api.GET("/ma/:symbol", s.handleMovingAverage)
	api.GET("/summary", s.handleSummary)
	if s.store != nil {
		api.GET("/stored/:symbol/:series", s.handleStoredSeries)
	}
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	reqLog := s.logger.With().Str("path", c.Request.URL.Path).Logger()
	c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), reqLog))
	c.Next()
	s.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("request")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// rangeParam reads ?range=, falling back to the collector's default.
func (s *Server) rangeParam(c *gin.Context) (collector.Range, bool) {
	raw := c.Query("range")
	if raw == "" {
		return s.collector.Range, true
	}
	rng, err := collector.ParseRange(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return rng, true
}

func symbolParam(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
}

// report serves the cached report when it covers the requested range and
// collects (and caches) a fresh one otherwise. Cache errors only cost a fetch.
func (s *Server) report(c *gin.Context) (*model.Report, bool) {
	rng, ok := s.rangeParam(c)
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	log := logging.FromContext(ctx)
	symbol := symbolParam(c)

	if s.cache != nil {
		cached, err := s.cache.LoadReport(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		} else if cached != nil && cached.Range == string(rng) {
			c.Header("X-Cache", "HIT")
			return cached, true
		}
	}

	report, err := s.collector.CollectRange(ctx, symbol, rng)
	if err != nil {
		log.Warn().Err(err).Msg("collect failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}
	if s.cache != nil {
		c.Header("X-Cache", "MISS")
		if err := s.cache.RecordReport(ctx, report); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return report, true
}

func (s *Server) handleIndicators(c *gin.Context) {
	report, ok := s.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleChart(c *gin.Context) {
	report, ok := s.report(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type averageResponse struct {
	Symbol string        `json:"symbol"`
	Kind   string        `json:"kind"`
	Period int           `json:"period"`
	Field  string        `json:"field"`
	Points []model.Point `json:"points"`
}

// handleMovingAverage computes one SMA or EMA over any bar field:
// ?kind=sma|ema&period=N&field=open|high|low|close|volume.
func (s *Server) handleMovingAverage(c *gin.Context) {
	kind := strings.ToLower(c.DefaultQuery("kind", "sma"))
	if kind != "sma" && kind != "ema" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be sma or ema"})
		return
	}
	period, err := strconv.Atoi(c.DefaultQuery("period", "20"))
	if err != nil || period < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be a positive integer"})
		return
	}
	field, err := calculator.ParseField(c.Query("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, ok := s.report(c)
	if !ok {
		return
	}
	compute := calculator.SMA
	if kind == "ema" {
		compute = calculator.EMA
	}
	points, err := compute(report.Bars, period, field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, averageResponse{
		Symbol: report.Symbol,
		Kind:   kind,
		Period: period,
		Field:  string(field),
		Points: points,
	})
}

// handleStoredSeries returns a series from the latest recorded run, such as
// sma_20 or macd_hist, without fetching.
func (s *Server) handleStoredSeries(c *gin.Context) {
	symbol, series := symbolParam(c), c.Param("series")
	points, err := s.store.SeriesValues(c.Request.Context(), symbol, series)
	if err != nil {
		log := logging.FromContext(c.Request.Context())
		log.Error().Err(err).Msg("read stored series")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(points) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stored " + series + " for " + symbol})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "series": series, "points": points})
}

type summaryResponse struct {
	Summaries []model.Summary   `json:"summaries"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func (s *Server) handleSummary(c *gin.Context) {
	symbols := s.symbols
	if raw := c.Query("symbols"); raw != "" {
		symbols = config.SplitSymbols(raw)
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}

	resp := summaryResponse{Summaries: []model.Summary{}}
	for _, res := range s.collector.CollectAll(c.Request.Context(), symbols) {
		if res.Err != nil {
			if resp.Errors == nil {
				resp.Errors = map[string]string{}
			}
			resp.Errors[res.Symbol] = res.Err.Error()
			continue
		}
		resp.Summaries = append(resp.Summaries, strategy.Evaluate(res.Report))
	}
	status := http.StatusOK
	if len(resp.Summaries) == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info().Str("addr", s.addr).Msg("http server listening")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
