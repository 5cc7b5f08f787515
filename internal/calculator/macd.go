package calculator

import (
	"StockScope/internal/model"
)

// MACD computes the moving average convergence divergence of closing prices.
//
// The raw line is EMA(fast) - EMA(slow) on the slow EMA's dates. The signal is
// an EMA of the raw line, and the returned MACD, Signal and Histogram all share
// the signal's dates. A series too short for any of the three stages yields
// three empty sequences.
func MACD(series model.Series, fast, slow, signal int) (model.MACDResult, error) {
	for _, p := range []struct {
		name  string
		value int
	}{{"fast", fast}, {"slow", slow}, {"signal", signal}} {
		if err := invalidPeriod(p.name, p.value); err != nil {
			return model.MACDResult{}, err
		}
	}
	if fast >= slow {
		return model.MACDResult{}, &ParamError{Param: "fast", Value: fast, Reason: "must be less than slow"}
	}

	empty := model.MACDResult{MACD: []model.Point{}, Signal: []model.Point{}, Histogram: []model.Point{}}
	closes := series.Closes()
	emaSlow := emaValues(closes, slow)
	if len(emaSlow) == 0 {
		return empty, nil
	}
	emaFast := emaValues(closes, fast)

	offset := slow - fast
	raw := make([]float64, len(emaSlow))
	for i := range emaSlow {
		raw[i] = emaFast[i+offset] - emaSlow[i]
	}

	sig := emaValues(raw, signal)
	if len(sig) == 0 {
		return empty, nil
	}

	// raw[j] is dated series[j+slow-1]; sig[j] lines up with raw[j+signal-1].
	dates := series.Dates()[slow-1+signal-1:]
	result := model.MACDResult{
		MACD:      make([]model.Point, len(sig)),
		Signal:    make([]model.Point, len(sig)),
		Histogram: make([]model.Point, len(sig)),
	}
	for i, s := range sig {
		line := raw[i+signal-1]
		result.MACD[i] = model.Point{Date: dates[i], Value: line}
		result.Signal[i] = model.Point{Date: dates[i], Value: s}
		result.Histogram[i] = model.Point{Date: dates[i], Value: line - s}
	}
	return result, nil
}
