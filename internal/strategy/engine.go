package strategy

import (
	"fmt"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

// Evaluate reads the latest bar of a report against its indicators. States of
// indicators without output (series too short) are left empty.
func Evaluate(report *model.Report) model.Summary {
	sum := model.Summary{Symbol: report.Symbol}
	last, ok := report.Bars.Last()
	if !ok {
		return sum
	}
	sum.Date = last.Date
	sum.Close = last.Close

	if n := len(report.Bars); n >= 2 {
		prev := report.Bars[n-2].Close
		if prev != 0 {
			sum.ChangePct = (last.Close - prev) / prev * 100
		}
	}

	ind := report.Indicators

	// Step a: trend against the longest SMA
	if ma, ok := trendAverage(ind.SMA); ok {
		sum.TrendSMA = ma.Period
		sum.Trend = model.TrendDown
		if last.Close >= ma.Points[len(ma.Points)-1].Value {
			sum.Trend = model.TrendUp
		}
	}

	// Step b: RSI zone
	if n := len(ind.RSI); n > 0 {
		sum.RSI = ind.RSI[n-1].Value
		sum.RSIState = classifyRSI(sum.RSI)
		if sum.RSI > rsiExtreme {
			sum.Notes = append(sum.Notes, fmt.Sprintf("RSI %.1f above %.0f", sum.RSI, rsiExtreme))
		}
	}

	// Step c: MACD bias and crossovers
	if n := len(ind.MACD.Histogram); n > 0 {
		sum.MACDHist = ind.MACD.Histogram[n-1].Value
		sum.MACDState = classifyMACD(ind.MACD.Histogram)
		switch sum.MACDState {
		case model.MACDBullishCross:
			sum.Notes = append(sum.Notes, "MACD crossed above signal")
		case model.MACDBearishCross:
			sum.Notes = append(sum.Notes, "MACD crossed below signal")
		}
	}

	// Step d: Bollinger position
	if n := len(ind.Bollinger); n > 0 {
		band := ind.Bollinger[n-1]
		sum.PercentB = percentB(last.Close, band)
		sum.Band = classifyBand(last.Close, band)
		switch sum.Band {
		case model.BandAboveUpper:
			sum.Notes = append(sum.Notes, "close above upper Bollinger band")
		case model.BandBelowLower:
			sum.Notes = append(sum.Notes, "close below lower Bollinger band")
		}
	}

	// Step e: 52-week range
	if high, low, ok := calculator.PriceRange(report.Bars, calculator.TradingDaysPerYear); ok {
		sum.High52w = high
		sum.Low52w = low
		sum.Pos52w = calculator.RangePosition(last.Close, high, low)
		if last.High >= high {
			sum.Notes = append(sum.Notes, "new 52-week high")
		} else if last.Low <= low {
			sum.Notes = append(sum.Notes, "new 52-week low")
		}
	}

	return sum
}

