package calculator

import (
	"testing"

	"github.com/markcheno/go-talib"
)

// go-talib returns full-length slices with the warm-up prefix zeroed, so its
// values from index period-1 line up with our suffix-aligned output.

func TestSMA_MatchesTalib(t *testing.T) {
	closes := wavySeriesCloses(120)
	series := closesSeries(closes...)

	for _, p := range []int{2, 5, 20, 50} {
		got, err := SMA(series, p, FieldClose)
		if err != nil {
			t.Fatalf("p=%d: unexpected error: %v", p, err)
		}
		want := talib.Sma(closes, p)[p-1:]
		if len(got) != len(want) {
			t.Fatalf("p=%d: got %d points, talib %d", p, len(got), len(want))
		}
		for i := range got {
			assertClose(t, "SMA vs talib", got[i].Value, want[i], 1e-9)
		}
	}
}

func TestEMA_MatchesTalib(t *testing.T) {
	closes := wavySeriesCloses(120)
	series := closesSeries(closes...)

	for _, p := range []int{3, 12, 26} {
		got, err := EMA(series, p, FieldClose)
		if err != nil {
			t.Fatalf("p=%d: unexpected error: %v", p, err)
		}
		want := talib.Ema(closes, p)[p-1:]
		if len(got) != len(want) {
			t.Fatalf("p=%d: got %d points, talib %d", p, len(got), len(want))
		}
		for i := range got {
			assertClose(t, "EMA vs talib", got[i].Value, want[i], 1e-9)
		}
	}
}

func TestBollinger_MatchesTalib(t *testing.T) {
	closes := wavySeriesCloses(120)
	series := closesSeries(closes...)

	const p, k = 20, 2.0
	got, err := Bollinger(series, p, k)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upper, middle, lower := talib.BBands(closes, p, k, k, talib.SMA)
	upper, middle, lower = upper[p-1:], middle[p-1:], lower[p-1:]
	if len(got) != len(middle) {
		t.Fatalf("got %d points, talib %d", len(got), len(middle))
	}
	for i := range got {
		assertClose(t, "upper vs talib", got[i].Upper, upper[i], 1e-6)
		assertClose(t, "middle vs talib", got[i].Middle, middle[i], 1e-9)
		assertClose(t, "lower vs talib", got[i].Lower, lower[i], 1e-6)
	}
}
