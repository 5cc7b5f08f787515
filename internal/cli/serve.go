package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"StockScope/internal/metrics"
	"StockScope/internal/recorder"
	"StockScope/internal/transport/http/api"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve indicators, summaries, charts and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New(prometheus.NewRegistry())
			col, err := app.newCollector(m)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = app.Config.HTTP.Addr
			}
			srvCfg := api.Config{
				Addr:      addr,
				Collector: col,
				Metrics:   m,
				Symbols:   app.Config.DataSource.Symbols,
				Logger:    app.Logger,
			}
			if cfg := app.Config.Redis; cfg.Addr != "" {
				rr, err := recorder.NewRedisRecorder(ctx, recorder.RedisConfig{
					Addr:     cfg.Addr,
					Password: cfg.Password,
					DB:       cfg.DB,
					TTL:      cfg.TTL,
				}, app.Logger)
				if err != nil {
					app.Logger.Warn().Err(err).Msg("redis unavailable, serving without report cache")
				} else {
					defer rr.Close()
					srvCfg.Cache = rr
				}
			}
			if path := app.Config.Database.SQLitePath; path != "" {
				db, err := recorder.NewSQLiteRecorder(path, app.Logger)
				if err != nil {
					app.Logger.Warn().Err(err).Msg("sqlite unavailable, stored series disabled")
				} else {
					defer db.Close()
					srvCfg.Store = db
				}
			}

			srv, err := api.NewServer(srvCfg)
			if err != nil {
				return err
			}
			err = srv.Start(ctx)
			app.Logger.Info().Msg("http server stopped")
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default http.addr)")
	return cmd
}
