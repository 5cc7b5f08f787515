package strategy

import (
	"math"
	"testing"
	"time"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

func reportFromCloses(t *testing.T, closes []float64) *model.Report {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(model.Series, len(closes))
	for i, c := range closes {
		series[i] = model.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 1000}
	}
	ind, err := calculator.ComputeAll(series, calculator.DefaultSettings())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return &model.Report{Symbol: "TEST", Bars: series, Indicators: ind}
}

func TestEvaluate_SteadyUptrend(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 0.05*float64(i*i)
	}
	sum := Evaluate(reportFromCloses(t, closes))

	if sum.Close != closes[79] || sum.Trend != model.TrendUp || sum.TrendSMA != 50 {
		t.Errorf("close/trend = %v/%s/%d", sum.Close, sum.Trend, sum.TrendSMA)
	}
	if sum.RSI != 100 || sum.RSIState != model.RSIOverbought {
		t.Errorf("RSI = %v (%s), want 100 overbought", sum.RSI, sum.RSIState)
	}
	if sum.MACDState != model.MACDBullish {
		t.Errorf("MACD state = %s, want BULLISH", sum.MACDState)
	}
	if sum.Pos52w < 0.99 || sum.High52w != closes[79]+0.5 || sum.Low52w != 99.5 {
		t.Errorf("52w = %v..%v pos %v", sum.Low52w, sum.High52w, sum.Pos52w)
	}
	assertNote(t, sum, "new 52-week high")
	assertNote(t, sum, "RSI 100.0 above 85")
}

func TestEvaluate_SteadyDowntrend(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 200 - 0.02*float64(i*i)
	}
	sum := Evaluate(reportFromCloses(t, closes))

	if sum.Trend != model.TrendDown {
		t.Errorf("trend = %s, want DOWN", sum.Trend)
	}
	if sum.RSI != 0 || sum.RSIState != model.RSIOversold {
		t.Errorf("RSI = %v (%s), want 0 oversold", sum.RSI, sum.RSIState)
	}
	if sum.MACDState != model.MACDBearish {
		t.Errorf("MACD state = %s, want BEARISH", sum.MACDState)
	}
	assertClose(t, "change pct", sum.ChangePct, (closes[79]-closes[78])/closes[78]*100)
	assertNote(t, sum, "new 52-week low")
}

func TestEvaluate_ShortSeriesLeavesStatesEmpty(t *testing.T) {
	sum := Evaluate(reportFromCloses(t, []float64{10, 11, 12}))

	if sum.Close != 12 || sum.Date.IsZero() {
		t.Errorf("latest bar not read: %+v", sum)
	}
	if sum.Trend != "" || sum.RSIState != "" || sum.MACDState != "" || sum.Band != "" {
		t.Errorf("expected empty states, got %+v", sum)
	}
	if sum.High52w != 12.5 || sum.Low52w != 9.5 {
		t.Errorf("52w = %v..%v", sum.Low52w, sum.High52w)
	}
}

func TestEvaluate_EmptyReport(t *testing.T) {
	sum := Evaluate(&model.Report{Symbol: "NONE"})
	if sum.Symbol != "NONE" || !sum.Date.IsZero() || sum.Close != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestClassifyRSI(t *testing.T) {
	tests := []struct {
		rsi  float64
		want model.RSIState
	}{
		{85, model.RSIOverbought},
		{70, model.RSIOverbought},
		{69.9, model.RSINeutral},
		{50, model.RSINeutral},
		{30, model.RSIOversold},
		{5, model.RSIOversold},
	}
	for _, tt := range tests {
		if got := classifyRSI(tt.rsi); got != tt.want {
			t.Errorf("classifyRSI(%v) = %s, want %s", tt.rsi, got, tt.want)
		}
	}
}

func TestClassifyMACD(t *testing.T) {
	pts := func(vals ...float64) []model.Point {
		out := make([]model.Point, len(vals))
		for i, v := range vals {
			out[i] = model.Point{Value: v}
		}
		return out
	}
	tests := []struct {
		name string
		hist []model.Point
		want model.MACDState
	}{
		{"empty", nil, ""},
		{"single positive", pts(0.4), model.MACDBullish},
		{"bullish cross", pts(-0.2, 0.1), model.MACDBullishCross},
		{"bullish cross from zero", pts(0, 0.1), model.MACDBullishCross},
		{"bearish cross", pts(0.3, -0.1), model.MACDBearishCross},
		{"still bearish", pts(-0.3, -0.1), model.MACDBearish},
		{"still bullish", pts(0.1, 0.3), model.MACDBullish},
	}
	for _, tt := range tests {
		if got := classifyMACD(tt.hist); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestBands(t *testing.T) {
	band := model.BandPoint{Upper: 110, Middle: 100, Lower: 90}
	tests := []struct {
		close float64
		pos   model.BandPosition
		pctB  float64
	}{
		{115, model.BandAboveUpper, 1.25},
		{110, model.BandInside, 1},
		{100, model.BandInside, 0.5},
		{85, model.BandBelowLower, -0.25},
	}
	for _, tt := range tests {
		if got := classifyBand(tt.close, band); got != tt.pos {
			t.Errorf("classifyBand(%v) = %s, want %s", tt.close, got, tt.pos)
		}
		assertClose(t, "percentB", percentB(tt.close, band), tt.pctB)
	}
	if got := percentB(5, model.BandPoint{Upper: 5, Middle: 5, Lower: 5}); got != 0.5 {
		t.Errorf("collapsed bands percentB = %v, want 0.5", got)
	}
}

func assertClose(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %.6f, want %.6f", label, got, want)
	}
}

func assertNote(t *testing.T, sum model.Summary, want string) {
	t.Helper()
	for _, n := range sum.Notes {
		if n == want {
			return
		}
	}
	t.Errorf("notes %q missing %q", sum.Notes, want)
}
