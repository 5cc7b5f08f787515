package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockScope/internal/chart"
	"StockScope/internal/collector"
	"StockScope/internal/logging"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"
	"StockScope/internal/strategy"
)

// Scheduler runs the daily watchlist analysis on a cron schedule and answers
// chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Symbols   []string
	// ChartDir receives one HTML chart per symbol; empty disables charts.
	ChartDir string
	Logger   zerolog.Logger
	Now      func() time.Time

	mu  sync.Mutex // serializes daily runs
	ctx context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(col *collector.Collector, rec recorder.Recorder, n notifier.Notifier, symbols []string, chartDir string, logger zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Recorder:  rec,
		Notifier:  n,
		Symbols:   symbols,
		ChartDir:  chartDir,
		Logger:    logging.WithComponent(logger, "scheduler"),
		Now:       time.Now,
		ctx:       context.Background(),
	}
}

// Register adds the daily analysis job.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler. Jobs run under ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.Cron.Start()
	s.Logger.Info().Int("symbols", len(s.Symbols)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunNow executes the daily task immediately (for --run-on-start and /daily).
func (s *Scheduler) RunNow(ctx context.Context) (string, error) {
	return s.runDaily(ctx)
}

func (s *Scheduler) dailyTask() {
	if _, err := s.runDaily(s.ctx); err != nil {
		s.Logger.Error().Err(err).Msg("daily task")
	}
}

// runDaily analyzes the watchlist, records every report, writes charts and
// sends one digest. It returns the digest text.
func (s *Scheduler) runDaily(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.Logger.Info().Strs("symbols", s.Symbols).Msg("running daily task")

	results := s.Collector.CollectAll(ctx, s.Symbols)
	var (
		summaries []model.Summary
		failures  []notifier.Failure
	)
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, notifier.Failure{Symbol: res.Symbol, Err: res.Err})
			continue
		}
		s.store(ctx, res.Report)
		summaries = append(summaries, strategy.Evaluate(res.Report))
	}

	digest := notifier.FormatDigest(s.Now(), summaries, failures)
	if _, noop := s.Notifier.(notifier.NoopNotifier); noop {
		s.Logger.Info().Str("digest", digest).Msg("daily digest")
	}
	if err := s.Notifier.Send(ctx, digest); err != nil {
		return digest, fmt.Errorf("send digest: %w", err)
	}

	s.Logger.Info().
		Int("ok", len(summaries)).
		Int("failed", len(failures)).
		Dur("duration", time.Since(start)).
		Msg("daily task done")
	return digest, nil
}

func (s *Scheduler) store(ctx context.Context, report *model.Report) {
	log := logging.WithSymbol(s.Logger, report.Symbol)
	if err := s.Recorder.RecordReport(ctx, report); err != nil {
		log.Error().Err(err).Msg("record report")
	}
	if s.ChartDir == "" {
		return
	}
	if _, err := chart.WriteFile(s.ChartDir, report); err != nil {
		log.Error().Err(err).Msg("write chart")
	}
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Telegram appends the bot name in groups: /analyze@stockscope_bot
	name := strings.SplitN(strings.ToLower(fields[0]), "@", 2)[0]

	switch name {
	case "/analyze":
		if len(fields) < 2 {
			return "Usage: /analyze SYMBOL"
		}
		report, err := s.Collector.Collect(ctx, fields[1])
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", html.EscapeString(strings.ToUpper(fields[1])), html.EscapeString(err.Error()))
		}
		s.store(ctx, report)
		return notifier.FormatSummary(strategy.Evaluate(report))
	case "/watchlist":
		return notifier.FormatWatchlist(s.Symbols)
	case "/daily":
		if _, err := s.RunNow(ctx); err != nil {
			return "❌ daily task: " + html.EscapeString(err.Error())
		}
		// The digest itself has already been sent.
		return ""
	default:
		return notifier.FormatHelp()
	}
}
