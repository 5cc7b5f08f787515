package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockScope/internal/model"
)

// Recorder persists a computed report.
type Recorder interface {
	RecordReport(ctx context.Context, report *model.Report) error
	Close() error
}

// BarLoader reads back previously recorded bars, ascending by date.
type BarLoader interface {
	LoadBars(ctx context.Context, symbol string) ([]model.Bar, error)
}

// NamedSeries is one indicator line under its storage name, e.g. "sma_20".
type NamedSeries struct {
	Name   string
	Points []model.Point
}

// Flatten lists every indicator line of the report in a fixed order: moving
// averages, RSI, the three MACD lines, then the three Bollinger bands.
func Flatten(report *model.Report) []NamedSeries {
	ind := report.Indicators
	var out []NamedSeries
	for _, ma := range ind.SMA {
		out = append(out, NamedSeries{Name: fmt.Sprintf("sma_%d", ma.Period), Points: ma.Points})
	}
	for _, ma := range ind.EMA {
		out = append(out, NamedSeries{Name: fmt.Sprintf("ema_%d", ma.Period), Points: ma.Points})
	}
	out = append(out,
		NamedSeries{Name: fmt.Sprintf("rsi_%d", ind.RSIPeriod), Points: ind.RSI},
		NamedSeries{Name: "macd", Points: ind.MACD.MACD},
		NamedSeries{Name: "macd_signal", Points: ind.MACD.Signal},
		NamedSeries{Name: "macd_hist", Points: ind.MACD.Histogram},
	)

	upper := make([]model.Point, len(ind.Bollinger))
	middle := make([]model.Point, len(ind.Bollinger))
	lower := make([]model.Point, len(ind.Bollinger))
	for i, b := range ind.Bollinger {
		upper[i] = model.Point{Date: b.Date, Value: b.Upper}
		middle[i] = model.Point{Date: b.Date, Value: b.Middle}
		lower[i] = model.Point{Date: b.Date, Value: b.Lower}
	}
	out = append(out,
		NamedSeries{Name: "bb_upper", Points: upper},
		NamedSeries{Name: "bb_middle", Points: middle},
		NamedSeries{Name: "bb_lower", Points: lower},
	)
	return out
}

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

// Multi fans a report out to several recorders. Every recorder is tried; the
// failures are joined.
type Multi []Recorder

func (m Multi) RecordReport(ctx context.Context, report *model.Report) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordReport(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
