package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestBollinger_ArithmeticProgression(t *testing.T) {
	// 20 bars with step d: middle is the mean, population stddev is d*sqrt((p^2-1)/12)
	const p, d = 20, 2.5
	closes := make([]float64, p)
	for i := range closes {
		closes[i] = 100 + d*float64(i)
	}
	series := closesSeries(closes...)

	got, err := Bollinger(series, p, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	sma, _ := SMA(series, p, FieldClose)
	sd := d * math.Sqrt(float64(p*p-1)/12)

	assertDate(t, "band date", got[0].Date, sma[0].Date)
	assertClose(t, "middle", got[0].Middle, sma[0].Value, 1e-12)
	assertClose(t, "middle", got[0].Middle, 100+d*float64(p-1)/2, 1e-9)
	assertClose(t, "upper", got[0].Upper, got[0].Middle+2*sd, 1e-9)
	assertClose(t, "lower", got[0].Lower, got[0].Middle-2*sd, 1e-9)
}

func TestBollinger_DatesMatchSMA(t *testing.T) {
	series := closesSeries(wavySeriesCloses(45)...)

	bands, err := Bollinger(series, 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sma, _ := SMA(series, 20, FieldClose)
	if len(bands) != len(sma) {
		t.Fatalf("bands=%d sma=%d", len(bands), len(sma))
	}
	for i := range bands {
		assertDate(t, "band date", bands[i].Date, sma[i].Date)
		if bands[i].Middle != sma[i].Value {
			t.Errorf("point %d: middle %v != sma %v", i, bands[i].Middle, sma[i].Value)
		}
		if !(bands[i].Upper >= bands[i].Middle && bands[i].Middle >= bands[i].Lower) {
			t.Errorf("point %d: band order violated %+v", i, bands[i])
		}
	}
}

func TestBollinger_ZeroWidth(t *testing.T) {
	got, err := Bollinger(closesSeries(wavySeriesCloses(25)...), 5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range got {
		if b.Upper != b.Middle || b.Lower != b.Middle {
			t.Errorf("point %d: k=0 should collapse the bands, got %+v", i, b)
		}
	}
}

func TestBollinger_ShortSeries(t *testing.T) {
	got, err := Bollinger(closesSeries(1, 2, 3), 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestBollinger_InvalidParameters(t *testing.T) {
	series := closesSeries(wavySeriesCloses(30)...)
	tests := []struct {
		name   string
		period int
		k      float64
		param  string
	}{
		{"zero period", 0, 2, "period"},
		{"negative k", 20, -0.5, "k"},
		{"NaN k", 20, math.NaN(), "k"},
		{"infinite k", 20, math.Inf(1), "k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bollinger(series, tt.period, tt.k)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var pe *ParamError
			if errors.As(err, &pe) && pe.Param != tt.param {
				t.Errorf("param = %q, want %q", pe.Param, tt.param)
			}
		})
	}
}
