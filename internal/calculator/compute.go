package calculator

import (
	"fmt"

	"StockScope/internal/model"
)

// Settings selects which indicators ComputeAll produces.
type Settings struct {
	SMAPeriods      []int
	EMAPeriods      []int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerK      float64
}

// DefaultSettings mirrors the usual charting setup: SMA 20/50, EMA 12/26,
// RSI 14, MACD 12/26/9 and Bollinger 20/2.
func DefaultSettings() Settings {
	return Settings{
		SMAPeriods:      []int{20, 50},
		EMAPeriods:      []int{12, 26},
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerK:      2,
	}
}

// withDefaults fills zero periods from DefaultSettings. BollingerK is used as given.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.RSIPeriod == 0 {
		s.RSIPeriod = d.RSIPeriod
	}
	if s.MACDFast == 0 {
		s.MACDFast = d.MACDFast
	}
	if s.MACDSlow == 0 {
		s.MACDSlow = d.MACDSlow
	}
	if s.MACDSignal == 0 {
		s.MACDSignal = d.MACDSignal
	}
	if s.BollingerPeriod == 0 {
		s.BollingerPeriod = d.BollingerPeriod
	}
	return s
}

// ComputeAll runs every configured indicator over series closes. Any invalid
// parameter aborts the whole computation; a short series just leaves the
// affected indicators empty.
func ComputeAll(series model.Series, s Settings) (model.Indicators, error) {
	s = s.withDefaults()
	out := model.Indicators{
		SMA:       make([]model.MovingAverage, 0, len(s.SMAPeriods)),
		EMA:       make([]model.MovingAverage, 0, len(s.EMAPeriods)),
		RSIPeriod: s.RSIPeriod,
	}

	for _, p := range s.SMAPeriods {
		points, err := SMA(series, p, FieldClose)
		if err != nil {
			return model.Indicators{}, fmt.Errorf("sma %d: %w", p, err)
		}
		out.SMA = append(out.SMA, model.MovingAverage{Period: p, Field: string(FieldClose), Points: points})
	}
	for _, p := range s.EMAPeriods {
		points, err := EMA(series, p, FieldClose)
		if err != nil {
			return model.Indicators{}, fmt.Errorf("ema %d: %w", p, err)
		}
		out.EMA = append(out.EMA, model.MovingAverage{Period: p, Field: string(FieldClose), Points: points})
	}

	var err error
	if out.RSI, err = RSI(series, s.RSIPeriod); err != nil {
		return model.Indicators{}, fmt.Errorf("rsi: %w", err)
	}
	if out.MACD, err = MACD(series, s.MACDFast, s.MACDSlow, s.MACDSignal); err != nil {
		return model.Indicators{}, fmt.Errorf("macd: %w", err)
	}
	if out.Bollinger, err = Bollinger(series, s.BollingerPeriod, s.BollingerK); err != nil {
		return model.Indicators{}, fmt.Errorf("bollinger: %w", err)
	}
	return out, nil
}
