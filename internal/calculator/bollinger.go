package calculator

import (
	"math"

	"StockScope/internal/model"
)

// Bollinger computes Bollinger Bands over closing prices. The middle band is
// the SMA and the envelope is k population standard deviations of the same
// window. Dates match SMA(series, period, FieldClose).
func Bollinger(series model.Series, period int, k float64) ([]model.BandPoint, error) {
	if err := invalidPeriod("period", period); err != nil {
		return nil, err
	}
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, &ParamError{Param: "k", Value: k, Reason: "must be a finite number >= 0"}
	}
	if len(series) < period {
		return []model.BandPoint{}, nil
	}

	closes := series.Closes()
	bands := make([]model.BandPoint, 0, len(series)-period+1)
	for i := period - 1; i < len(series); i++ {
		window := closes[i-period+1 : i+1]
		mid := mean(window)
		width := k * populationStdDev(window, mid)
		bands = append(bands, model.BandPoint{
			Date:   series[i].Date,
			Upper:  mid + width,
			Middle: mid,
			Lower:  mid - width,
		})
	}
	return bands, nil
}

func populationStdDev(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
