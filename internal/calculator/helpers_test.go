package calculator

import (
	"math"
	"testing"
	"time"

	"StockScope/internal/model"
)

var fixtureStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time {
	return fixtureStart.AddDate(0, 0, i)
}

// closesSeries builds one bar per consecutive calendar day with the given closes.
func closesSeries(closes ...float64) model.Series {
	series := make(model.Series, len(closes))
	for i, c := range closes {
		series[i] = model.Bar{
			Date:   day(i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: int64(1000 + i),
		}
	}
	return series
}

func rangeCloses(from, to float64) []float64 {
	var out []float64
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

func assertDate(t *testing.T, label string, got, want time.Time) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s: got date %s, want %s", label, got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}
