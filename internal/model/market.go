package model

import "time"

// Bar is one trading day's OHLCV record. Date is the calendar day at UTC midnight.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is an ascending-by-date run of bars with at most one bar per date.
// Indicator code assumes this ordering and does not check it.
type Series []Bar

// Closes returns the close prices in series order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the bar dates in series order.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, b := range s {
		dates[i] = b.Date
	}
	return dates
}

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// DateOf truncates t to its calendar day (in t's own location) and returns it as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
