package model

import "time"

// RSIState classifies the latest RSI reading.
type RSIState string

const (
	RSIOverbought RSIState = "OVERBOUGHT"
	RSIOversold   RSIState = "OVERSOLD"
	RSINeutral    RSIState = "NEUTRAL"
)

// MACDState classifies the latest MACD histogram.
type MACDState string

const (
	MACDBullish      MACDState = "BULLISH"
	MACDBearish      MACDState = "BEARISH"
	MACDBullishCross MACDState = "BULLISH_CROSS"
	MACDBearishCross MACDState = "BEARISH_CROSS"
)

// BandPosition describes where the close sits relative to the Bollinger envelope.
type BandPosition string

const (
	BandAboveUpper BandPosition = "ABOVE_UPPER"
	BandBelowLower BandPosition = "BELOW_LOWER"
	BandInside     BandPosition = "INSIDE"
)

// Trend compares the close against the longest configured SMA.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
)

// Summary is the latest-bar reading of a Report. Empty states mean the
// indicator had no output for the series.
type Summary struct {
	Symbol    string       `json:"symbol"`
	Date      time.Time    `json:"date"`
	Close     float64      `json:"close"`
	ChangePct float64      `json:"change_pct"`
	Trend     Trend        `json:"trend,omitempty"`
	TrendSMA  int          `json:"trend_sma,omitempty"`
	RSI       float64      `json:"rsi"`
	RSIState  RSIState     `json:"rsi_state,omitempty"`
	MACDHist  float64      `json:"macd_hist"`
	MACDState MACDState    `json:"macd_state,omitempty"`
	PercentB  float64      `json:"percent_b"`
	Band      BandPosition `json:"band,omitempty"`
	High52w   float64      `json:"high_52w"`
	Low52w    float64      `json:"low_52w"`
	Pos52w    float64      `json:"pos_52w"` // 0.0 ~ 1.0
	Notes     []string     `json:"notes,omitempty"`
}
