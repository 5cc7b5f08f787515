package calculator

import (
	"StockScope/internal/model"
)

// RSI computes the relative strength index over closing prices.
//
// Each value averages the gains and losses of the period price changes ending
// at bar i and is dated series[i].Date, for i in [period, N-1]. A window
// without losses yields 100. The result has max(0, N-period) points.
func RSI(series model.Series, period int) ([]model.Point, error) {
	if err := invalidPeriod("period", period); err != nil {
		return nil, err
	}
	if len(series) <= period {
		return []model.Point{}, nil
	}

	closes := series.Closes()
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change // make positive
		}
	}

	points := make([]model.Point, 0, len(series)-period)
	for i := period; i < len(series); i++ {
		avgGain := mean(gains[i-period+1 : i+1])
		avgLoss := mean(losses[i-period+1 : i+1])
		points = append(points, model.Point{Date: series[i].Date, Value: rsiValue(avgGain, avgLoss)})
	}
	return points, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
