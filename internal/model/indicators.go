package model

import "time"

// Point is a single indicator value attributed to a bar date.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MACDResult holds the three MACD sequences on the signal line's date axis.
type MACDResult struct {
	MACD      []Point `json:"macd"`
	Signal    []Point `json:"signal"`
	Histogram []Point `json:"histogram"`
}

// BandPoint is one Bollinger Bands row.
type BandPoint struct {
	Date   time.Time `json:"date"`
	Upper  float64   `json:"upper"`
	Middle float64   `json:"middle"`
	Lower  float64   `json:"lower"`
}

// MovingAverage is an SMA or EMA series together with its parameters.
type MovingAverage struct {
	Period int     `json:"period"`
	Field  string  `json:"field"`
	Points []Point `json:"points"`
}

// Indicators is the full set of computed series for one symbol.
type Indicators struct {
	SMA       []MovingAverage `json:"sma"`
	EMA       []MovingAverage `json:"ema"`
	RSIPeriod int             `json:"rsi_period"`
	RSI       []Point         `json:"rsi"`
	MACD      MACDResult      `json:"macd"`
	Bollinger []BandPoint     `json:"bollinger"`
}

// Report is what the pipeline hands to sinks: the bars plus their indicators.
type Report struct {
	Symbol     string     `json:"symbol"`
	Provider   string     `json:"provider"`
	Range      string     `json:"range,omitempty"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Bars       Series     `json:"bars"`
	Indicators Indicators `json:"indicators"`
}
