package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"StockScope/internal/chart"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logging"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"
	"StockScope/internal/strategy"
)

type analyzeOptions struct {
	rng     string
	out     string
	noChart bool
	fromDB  bool
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze [symbols...]",
		Short: "Fetch bars, compute indicators and record the results",
		Long: `Analyze fetches daily bars for each symbol (the configured watchlist when
none are given), computes every configured indicator, writes the configured
outputs and prints a summary table. It fails only when every symbol fails.`,
		Example: `  stockscope analyze AAPL MSFT --range 6mo
  stockscope analyze --from-db --no-chart --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAnalyze(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.rng, "range", "", "history range: 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, max")
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (default output.dir)")
	cmd.Flags().BoolVar(&opts.noChart, "no-chart", false, "skip HTML charts")
	cmd.Flags().BoolVar(&opts.fromDB, "from-db", false, "analyze bars stored in SQLite instead of fetching")
	return cmd
}

func (a *App) runAnalyze(cmd *cobra.Command, args []string, opts analyzeOptions) error {
	ctx := cmd.Context()
	cfg := a.Config

	symbols := config.SplitSymbols(strings.Join(args, ","))
	if len(symbols) == 0 {
		symbols = cfg.DataSource.Symbols
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given and data_source.symbols is empty")
	}

	col, err := a.newCollector(nil)
	if err != nil {
		return err
	}
	if opts.rng != "" {
		rng, err := collector.ParseRange(opts.rng)
		if err != nil {
			return err
		}
		col.Range = rng
	}

	outDir := cfg.Output.Dir
	if opts.out != "" {
		outDir = opts.out
	}

	var results []collector.Result
	if opts.fromDB {
		results, err = a.analyzeFromDB(ctx, col, symbols)
		if err != nil {
			return err
		}
	} else {
		results = col.CollectAll(ctx, symbols)
	}

	rec := a.openRecorders(ctx, outDir)
	defer rec.Close()
	charts := cfg.Output.Chart && !opts.noChart

	var (
		summaries []model.Summary
		failures  []notifier.Failure
	)
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, notifier.Failure{Symbol: res.Symbol, Err: res.Err})
			continue
		}
		log := logging.WithSymbol(a.Logger, res.Symbol)
		if err := rec.RecordReport(ctx, res.Report); err != nil {
			log.Error().Err(err).Msg("record report")
		}
		if charts {
			if path, err := chart.WriteFile(outDir, res.Report); err != nil {
				log.Error().Err(err).Msg("write chart")
			} else {
				log.Info().Str("path", path).Msg("chart written")
			}
		}
		summaries = append(summaries, strategy.Evaluate(res.Report))
	}

	if err := NewOutput(cmd).Summaries(summaries, failures); err != nil {
		return err
	}
	if len(summaries) == 0 {
		return fmt.Errorf("all %d symbols failed", len(symbols))
	}
	return nil
}

// storedRange keeps the stored bars within rng of the newest one, not of today.
func storedRange(bars []model.Bar, rng collector.Range) []model.Bar {
	bars = collector.NormalizeBars(bars, time.Time{})
	last, ok := model.Series(bars).Last()
	if !ok {
		return bars
	}
	return collector.NormalizeBars(bars, rng.Since(last.Date))
}

// analyzeFromDB recomputes indicators from bars already stored in SQLite.
func (a *App) analyzeFromDB(ctx context.Context, col *collector.Collector, symbols []string) ([]collector.Result, error) {
	path := a.Config.Database.SQLitePath
	if path == "" {
		return nil, fmt.Errorf("--from-db needs database.sqlite_path")
	}
	db, err := recorder.NewSQLiteRecorder(path, a.Logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	results := make([]collector.Result, 0, len(symbols))
	for _, sym := range symbols {
		res := collector.Result{Symbol: sym}
		bars, err := db.LoadBars(ctx, sym)
		switch {
		case err != nil:
			res.Err = err
		case len(bars) == 0:
			res.Err = fmt.Errorf("load %s: %w", sym, collector.ErrNoData)
		default:
			res.Report, res.Err = col.Analyze(sym, "sqlite", storedRange(bars, col.Range))
			if res.Report != nil {
				res.Report.Range = string(col.Range)
			}
		}
		results = append(results, res)
	}
	return results, nil
}
