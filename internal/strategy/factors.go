package strategy

import (
	"StockScope/internal/model"
)

// RSI thresholds, matching the reference lines drawn on the RSI chart.
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
	rsiExtreme    = 85.0
)

// classifyRSI maps an RSI reading onto its zone.
func classifyRSI(rsi float64) model.RSIState {
	switch {
	case rsi >= RSIOverbought:
		return model.RSIOverbought
	case rsi <= RSIOversold:
		return model.RSIOversold
	default:
		return model.RSINeutral
	}
}

// classifyMACD reads the last two histogram values. A sign change on the
// latest bar is a crossover; otherwise the sign gives the bias.
func classifyMACD(hist []model.Point) model.MACDState {
	n := len(hist)
	if n == 0 {
		return ""
	}
	last := hist[n-1].Value
	if n >= 2 {
		prev := hist[n-2].Value
		switch {
		case prev <= 0 && last > 0:
			return model.MACDBullishCross
		case prev >= 0 && last < 0:
			return model.MACDBearishCross
		}
	}
	if last >= 0 {
		return model.MACDBullish
	}
	return model.MACDBearish
}

// percentB is the close's position inside the bands: 0 at the lower band, 1
// at the upper band. Collapsed bands report 0.5.
func percentB(close float64, band model.BandPoint) float64 {
	width := band.Upper - band.Lower
	if width == 0 {
		return 0.5
	}
	return (close - band.Lower) / width
}

func classifyBand(close float64, band model.BandPoint) model.BandPosition {
	switch {
	case close > band.Upper:
		return model.BandAboveUpper
	case close < band.Lower:
		return model.BandBelowLower
	default:
		return model.BandInside
	}
}

// trendAverage picks the longest SMA that has produced a value.
func trendAverage(smas []model.MovingAverage) (model.MovingAverage, bool) {
	var best model.MovingAverage
	found := false
	for _, ma := range smas {
		if len(ma.Points) == 0 {
			continue
		}
		if !found || ma.Period > best.Period {
			best = ma
			found = true
		}
	}
	return best, found
}
