package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"StockScope/internal/calculator"
	"StockScope/internal/logging"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
)

const defaultConcurrency = 4

// Result is the outcome for one symbol of CollectAll. Exactly one of Report
// and Err is set.
type Result struct {
	Symbol string
	Report *model.Report
	Err    error
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher     Fetcher
	Range       Range
	Settings    calculator.Settings
	Concurrency int
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	Now         func() time.Time
}

// NewCollector creates a Collector. m may be nil.
func NewCollector(fetcher Fetcher, rng Range, settings calculator.Settings, logger zerolog.Logger, m *metrics.Metrics) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		Range:       rng,
		Settings:    settings,
		Concurrency: defaultConcurrency,
		Metrics:     m,
		Logger:      logging.WithComponent(logger, "collector"),
		Now:         time.Now,
	}
}

// Collect fetches the configured range for symbol and computes all indicators.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Report, error) {
	return c.CollectRange(ctx, symbol, c.Range)
}

// CollectRange is Collect with an explicit range.
func (c *Collector) CollectRange(ctx context.Context, symbol string, rng Range) (*model.Report, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	log := logging.WithSymbol(c.Logger, symbol)

	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, rng)
	elapsed := time.Since(start)
	logging.LogFetch(log, c.Fetcher.Name(), symbol, len(bars), elapsed, err)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), elapsed, len(bars), err)
	if err != nil {
		c.Metrics.ReportDone(metrics.StatusError)
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	report, err := c.Analyze(symbol, c.Fetcher.Name(), bars)
	if err != nil {
		c.Metrics.ReportDone(metrics.StatusError)
		return nil, err
	}
	report.Range = string(rng)
	c.Metrics.ReportDone(metrics.StatusOK)
	return report, nil
}

// Analyze computes a report from bars that were obtained elsewhere, such as
// a previously recorded series.
func (c *Collector) Analyze(symbol, provider string, bars []model.Bar) (*model.Report, error) {
	log := logging.WithSymbol(c.Logger, symbol)
	series := model.Series(NormalizeBars(bars, time.Time{}))

	start := time.Now()
	ind, err := calculator.ComputeAll(series, c.Settings)
	c.Metrics.ObserveCompute(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", symbol, err)
	}
	if len(ind.RSI) == 0 || len(ind.MACD.Signal) == 0 || len(ind.Bollinger) == 0 {
		log.Debug().Int("bars", len(series)).Msg("series too short for some indicators")
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return &model.Report{
		Symbol:     symbol,
		Provider:   provider,
		FetchedAt:  now().UTC(),
		Bars:       series,
		Indicators: ind,
	}, nil
}

// CollectAll runs Collect for every symbol with bounded concurrency. A failing
// symbol is reported in its own Result and does not stop the others. Results
// are in the order of symbols.
func (c *Collector) CollectAll(ctx context.Context, symbols []string) []Result {
	results := make([]Result, len(symbols))
	limit := c.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			report, err := c.Collect(ctx, sym)
			results[i] = Result{Symbol: strings.ToUpper(strings.TrimSpace(sym)), Report: report, Err: err}
			if err != nil {
				log := logging.WithSymbol(c.Logger, sym)
				log.Warn().Err(err).Msg("symbol failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
