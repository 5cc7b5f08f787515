package calculator

import (
	"time"

	"StockScope/internal/model"
)

// SMA computes the simple moving average of field over period bars.
// The first period-1 dates have no value and are omitted, so the result has
// max(0, N-period+1) points.
func SMA(series model.Series, period int, field Field) ([]model.Point, error) {
	if err := invalidPeriod("period", period); err != nil {
		return nil, err
	}
	if err := field.validate(); err != nil {
		return nil, err
	}
	if len(series) < period {
		return []model.Point{}, nil
	}
	values := smaValues(field.extract(series), period)
	return toPoints(series.Dates(), values), nil
}

// EMA computes the exponential moving average of field, seeded with the SMA of
// the first period values and smoothed with k = 2/(period+1).
func EMA(series model.Series, period int, field Field) ([]model.Point, error) {
	if err := invalidPeriod("period", period); err != nil {
		return nil, err
	}
	if err := field.validate(); err != nil {
		return nil, err
	}
	if len(series) < period {
		return []model.Point{}, nil
	}
	values := emaValues(field.extract(series), period)
	return toPoints(series.Dates(), values), nil
}

// smaValues returns one mean per full window; empty when len(values) < period.
func smaValues(values []float64, period int) []float64 {
	if len(values) < period {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		out = append(out, mean(values[i-period+1:i+1]))
	}
	return out
}

func emaValues(values []float64, period int) []float64 {
	if len(values) < period {
		return []float64{}
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	prev := mean(values[:period])
	out = append(out, prev)
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*k + prev
		out = append(out, prev)
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// toPoints pairs values with the last len(values) dates.
func toPoints(dates []time.Time, values []float64) []model.Point {
	dates = dates[len(dates)-len(values):]
	points := make([]model.Point, len(values))
	for i, v := range values {
		points[i] = model.Point{Date: dates[i], Value: v}
	}
	return points
}
