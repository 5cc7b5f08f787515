// Package cli provides the stockscope command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/logging"
	"StockScope/internal/metrics"
	"StockScope/internal/recorder"
)

// Version is set at build time with -ldflags "-X StockScope/internal/cli.Version=...".
var Version = "dev"

const defaultConfigPath = "configs/config.yaml"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	// NewFetcher builds the bar source for the configured provider.
	NewFetcher func(cfg *config.Config) (collector.Fetcher, error)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{NewFetcher: newFetcher})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stockscope",
		Short: "Technical indicators for daily stock data",
		Long: `StockScope fetches daily OHLCV bars, computes SMA, EMA, RSI, MACD and
Bollinger Bands, and records the results as JSON, CSV, SQLite, Redis and
interactive charts. It can also serve them over HTTP or run on a schedule
with Telegram digests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newScheduleCmd(app))
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *App) load(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	a.Config = cfg
	a.Logger = logging.NewLogger(cfg.Log)
	a.Logger.Debug().Str("config", path).Str("provider", cfg.DataSource.Provider).Msg("config loaded")
	return nil
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(cfg.Proxy, ds.Timeout), nil
	case config.ProviderAlphaVantage:
		return collector.NewAlphaVantageFetcher(ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case config.ProviderMock:
		return &collector.MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", ds.Provider)
	}
}

// newCollector wires the configured fetcher and indicator settings. m may be nil.
func (a *App) newCollector(m *metrics.Metrics) (*collector.Collector, error) {
	fetcher, err := a.NewFetcher(a.Config)
	if err != nil {
		return nil, err
	}
	col := collector.NewCollector(fetcher, a.Config.Range(), a.Config.IndicatorSettings(), a.Logger, m)
	col.Concurrency = a.Config.DataSource.Concurrency
	a.Logger.Info().Str("provider", fetcher.Name()).Msg("data source ready")
	return col, nil
}

// openRecorders opens every configured sink. A sink that cannot be opened is
// skipped with a warning so the others still run.
func (a *App) openRecorders(ctx context.Context, outDir string) recorder.Recorder {
	cfg := a.Config
	var sinks recorder.Multi

	if cfg.Output.JSON {
		sinks = append(sinks, recorder.NewJSONRecorder(outDir))
	}
	if cfg.Output.CSV {
		sinks = append(sinks, recorder.NewCSVRecorder(outDir))
	}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("init sqlite recorder failed, skipping")
		} else {
			sinks = append(sinks, sr)
		}
	}
	if cfg.Redis.Addr != "" {
		rr, err := recorder.NewRedisRecorder(ctx, recorder.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		}, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("init redis recorder failed, skipping")
		} else {
			sinks = append(sinks, rr)
		}
	}

	if len(sinks) == 0 {
		return recorder.NewNoopRecorder()
	}
	return sinks
}
