package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockScope/internal/notifier"
	"StockScope/internal/scheduler"
)

const notifyRetries = 3

func newScheduleCmd(app *App) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily analysis on a cron schedule with Telegram digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cfg := app.Config

			col, err := app.newCollector(nil)
			if err != nil {
				return err
			}
			rec := app.openRecorders(ctx, cfg.Output.Dir)
			defer rec.Close()

			chartDir := ""
			if cfg.Output.Chart {
				chartDir = cfg.Output.Dir
			}

			var (
				n  notifier.Notifier = notifier.NoopNotifier{}
				tn *notifier.TelegramNotifier
			)
			if cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, app.Logger)
				n = notifier.RetryingNotifier{TelegramNotifier: tn, MaxRetries: notifyRetries}
			} else {
				app.Logger.Warn().Msg("telegram not configured, digests will only be logged")
			}

			sched := scheduler.NewScheduler(col, rec, n, cfg.DataSource.Symbols, chartDir, app.Logger)
			if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
				return err
			}
			sched.Start(ctx)
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				app.Logger.Info().Msg("telegram polling started")
			}

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				app.Logger.Info().Msg("run-on-start enabled, executing daily task now")
				go func() {
					if _, err := sched.RunNow(ctx); err != nil {
						app.Logger.Error().Err(err).Msg("daily task")
					}
				}()
			}

			app.Logger.Info().Str("cron", cfg.Schedule.DailyCron).Msg("stockscope is running, press Ctrl+C to stop")
			<-ctx.Done()
			app.Logger.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run the daily task once at startup")
	return cmd
}
