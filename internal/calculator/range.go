package calculator

import (
	"math"

	"StockScope/internal/model"
)

// TradingDaysPerYear is the lookback used for 52-week highs and lows.
const TradingDaysPerYear = 252

// PriceRange scans the most recent lookback bars and returns the highest high
// and lowest low. ok is false for an empty series or a non-positive lookback.
func PriceRange(series model.Series, lookback int) (high, low float64, ok bool) {
	if len(series) == 0 || lookback < 1 {
		return 0, 0, false
	}
	start := len(series) - lookback
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range series[start:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, true
}

// RangePosition returns where price sits within [low, high], clamped to 0.0~1.0.
// A flat range reports the midpoint.
func RangePosition(price, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
