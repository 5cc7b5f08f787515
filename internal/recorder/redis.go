package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"StockScope/internal/model"
)

const (
	reportKeyPrefix = "stockscope:report:"
	latestKeyPrefix = "stockscope:latest:"
)

// RedisConfig configures the Redis recorder.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // 0 keeps keys forever
}

// RedisRecorder caches the latest report per symbol: the full report as JSON
// and a hash with the last value of every series.
type RedisRecorder struct {
	client *goredis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisRecorder connects and pings the server.
func NewRedisRecorder(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisRecorder, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
		MaxRetries:  -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger = logger.With().Str("component", "redis").Logger()
	logger.Info().Str("addr", cfg.Addr).Msg("redis recorder connected")
	return &RedisRecorder{client: client, ttl: cfg.TTL, logger: logger}, nil
}

// ReportKey is where the JSON report for symbol is stored.
func ReportKey(symbol string) string { return reportKeyPrefix + symbol }

// LatestKey is the hash holding the newest value of every series for symbol.
func LatestKey(symbol string) string { return latestKeyPrefix + symbol }

// latestFields builds the HSET field map: the newest bar's date and close plus
// the last point of each non-empty series.
func latestFields(report *model.Report) map[string]interface{} {
	fields := map[string]interface{}{
		"fetched_at": report.FetchedAt.UTC().Format(time.RFC3339),
		"provider":   report.Provider,
	}
	if last, ok := report.Bars.Last(); ok {
		fields["date"] = formatDate(last.Date)
		fields["close"] = strconv.FormatFloat(last.Close, 'f', -1, 64)
	}
	for _, s := range Flatten(report) {
		if n := len(s.Points); n > 0 {
			fields[s.Name] = strconv.FormatFloat(s.Points[n-1].Value, 'f', -1, 64)
		}
	}
	return fields
}

func (r *RedisRecorder) RecordReport(ctx context.Context, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", report.Symbol, err)
	}

	latest := LatestKey(report.Symbol)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, ReportKey(report.Symbol), data, r.ttl)
	pipe.Del(ctx, latest)
	pipe.HSet(ctx, latest, latestFields(report))
	if r.ttl > 0 {
		pipe.Expire(ctx, latest, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write %s: %w", report.Symbol, err)
	}
	r.logger.Debug().Str("symbol", report.Symbol).Int("bytes", len(data)).Msg("report cached")
	return nil
}

// LoadReport returns the cached report for symbol, or nil if none is cached.
func (r *RedisRecorder) LoadReport(ctx context.Context, symbol string) (*model.Report, error) {
	symbol = strings.ToUpper(symbol)
	data, err := r.client.Get(ctx, ReportKey(symbol)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", symbol, err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", symbol, err)
	}
	return &report, nil
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
