package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"StockScope/internal/model"
)

// Fetcher retrieves historical daily bars from one market data provider.
// Returned bars are normalized: ascending by date, one bar per date.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, rng Range) ([]model.Bar, error)
	Name() string
}

// ErrNoData is returned when a provider answers without any usable bars.
var ErrNoData = errors.New("no data returned")

// ProviderError is an error reported by the provider itself, either as a
// non-200 status or as an error message in an otherwise valid response.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Range is a lookback window in the notation Yahoo uses for chart ranges.
type Range string

const (
	Range1M  Range = "1mo"
	Range3M  Range = "3mo"
	Range6M  Range = "6mo"
	Range1Y  Range = "1y"
	Range2Y  Range = "2y"
	Range5Y  Range = "5y"
	Range10Y Range = "10y"
	RangeMax Range = "max"
)

var ranges = []struct {
	r      Range
	months int // 0 = unbounded
}{
	{Range1M, 1},
	{Range3M, 3},
	{Range6M, 6},
	{Range1Y, 12},
	{Range2Y, 24},
	{Range5Y, 60},
	{Range10Y, 120},
	{RangeMax, 0},
}

// ParseRange validates s; empty means one year.
func ParseRange(s string) (Range, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Range1Y, nil
	}
	for _, e := range ranges {
		if string(e.r) == s {
			return e.r, nil
		}
	}
	return "", fmt.Errorf("unknown range %q (want one of 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, max)", s)
}

func (r Range) months() int {
	for _, e := range ranges {
		if e.r == r {
			return e.months
		}
	}
	return 12
}

// Since returns the earliest bar date kept for the range, or the zero time for max.
func (r Range) Since(now time.Time) time.Time {
	m := r.months()
	if m == 0 {
		return time.Time{}
	}
	return model.DateOf(now).AddDate(0, -m, 0)
}

// TradingDays estimates how many sessions the range spans (21 per month).
func (r Range) TradingDays() int {
	m := r.months()
	if m == 0 {
		return -1
	}
	return m * 21
}

// NormalizeBars returns a sorted copy of bars with one bar per date (the last
// one given wins) and nothing before cutoff. A zero cutoff keeps everything.
func NormalizeBars(bars []model.Bar, cutoff time.Time) []model.Bar {
	sorted := make([]model.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]model.Bar, 0, len(sorted))
	for _, b := range sorted {
		if !cutoff.IsZero() && b.Date.Before(cutoff) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
