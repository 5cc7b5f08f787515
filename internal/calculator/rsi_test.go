package calculator

import (
	"errors"
	"testing"
)

// Fixture closes 10, 11, 10, 12, 13, 11 with RSI(3):
//
//	change:  -  +1  -1  +2  +1  -2
//	bar 3: gains 1,0,2 -> 1   losses 0,1,0 -> 1/3  RS 3    RSI 75
//	bar 4: gains 0,2,1 -> 1   losses 1,0,0 -> 1/3  RS 3    RSI 75
//	bar 5: gains 2,1,0 -> 1   losses 0,0,2 -> 2/3  RS 1.5  RSI 60
func TestRSI_PinnedDates(t *testing.T) {
	series := closesSeries(10, 11, 10, 12, 13, 11)

	got, err := RSI(series, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		bar   int
		value float64
	}{
		{3, 75},
		{4, 75},
		{5, 60},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d points (N-period), got %d", len(want), len(got))
	}
	for i, w := range want {
		assertDate(t, "RSI(3) date", got[i].Date, day(w.bar))
		assertClose(t, "RSI(3) value", got[i].Value, w.value, 1e-9)
	}
}

func TestRSI_MonotonicSeries(t *testing.T) {
	up := closesSeries(rangeCloses(1, 30)...)
	got, err := RSI(up, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range got {
		if p.Value != 100 {
			t.Errorf("rising point %d: got %v, want 100", i, p.Value)
		}
	}

	closes := rangeCloses(1, 30)
	for i, j := 0, len(closes)-1; i < j; i, j = i+1, j-1 {
		closes[i], closes[j] = closes[j], closes[i]
	}
	got, _ = RSI(closesSeries(closes...), 14)
	for i, p := range got {
		if p.Value != 0 {
			t.Errorf("falling point %d: got %v, want 0", i, p.Value)
		}
	}
}

func TestRSI_FlatWindowIsOverbought(t *testing.T) {
	got, err := RSI(closesSeries(5, 5, 5, 5), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range got {
		if p.Value != 100 {
			t.Errorf("flat window: got %v, want 100", p.Value)
		}
	}
}

func TestRSI_Lengths(t *testing.T) {
	tests := []struct {
		n, period, want int
	}{
		{0, 14, 0},
		{14, 14, 0},
		{15, 14, 1},
		{30, 14, 16},
		{2, 1, 1},
	}
	for _, tt := range tests {
		series := closesSeries(rangeCloses(1, float64(tt.n))...)
		got, err := RSI(series, tt.period)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", tt.n, err)
		}
		if len(got) != tt.want {
			t.Errorf("n=%d period=%d: got %d points, want %d", tt.n, tt.period, len(got), tt.want)
		}
		if len(got) > 0 {
			assertDate(t, "first RSI date", got[0].Date, day(tt.period))
		}
	}
}

func TestRSI_InvalidPeriod(t *testing.T) {
	for _, p := range []int{0, -1} {
		if _, err := RSI(closesSeries(1, 2, 3), p); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("period %d: expected ErrInvalidParameter, got %v", p, err)
		}
	}
}
