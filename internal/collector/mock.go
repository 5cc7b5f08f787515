package collector

import (
	"context"
	"math"
	"strings"
	"time"

	"StockScope/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without canned bars get a generated weekday series ending at End.
type MockFetcher struct {
	Price float64
	End   time.Time
	Bars  map[string][]model.Bar
	Errs  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, rng Range) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return NormalizeBars(bars, time.Time{}), nil
	}

	count := rng.TradingDays()
	if count <= 0 {
		count = 2520
	}
	price := m.Price
	if price <= 0 {
		price = 100
	}
	end := m.End
	if end.IsZero() {
		end = time.Now()
	}
	return generateMockBars(price, count, model.DateOf(end)), nil
}

// generateMockBars produces count weekday bars ending on or before end,
// oscillating around basePrice with a slight upward drift.
func generateMockBars(basePrice float64, count int, end time.Time) []model.Bar {
	dates := make([]time.Time, 0, count)
	for d := end; len(dates) < count; d = d.AddDate(0, 0, -1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}

	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/6) + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   dates[count-1-i],
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000 + int64(i%7)*25000,
		}
	}
	return bars
}
