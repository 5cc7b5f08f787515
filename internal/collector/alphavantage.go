package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"StockScope/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// compactSessions is how many sessions outputsize=compact returns.
const compactSessions = 100

// AlphaVantageFetcher implements Fetcher using the TIME_SERIES_DAILY endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
		Now:     time.Now,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avDaily is the TIME_SERIES_DAILY payload. Prices come as decimal strings
// keyed by "1. open" style names; failures come back with HTTP 200 and one of
// the message fields set.
type avDaily struct {
	ErrorMessage string                  `json:"Error Message"`
	Note         string                  `json:"Note"`
	Information  string                  `json:"Information"`
	Series       map[string]avDailyEntry `json:"Time Series (Daily)"`
}

type avDailyEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func outputSize(rng Range) string {
	if days := rng.TradingDays(); days > 0 && days <= compactSessions {
		return "compact"
	}
	return "full"
}

func (f *AlphaVantageFetcher) FetchDailyBars(ctx context.Context, symbol string, rng Range) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", outputSize(rng))
	q.Set("apikey", f.APIKey)
	endpoint := f.BaseURL + "/query?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: f.Name(), Status: resp.StatusCode, Message: string(body)}
	}

	var payload avDaily
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	for _, msg := range []string{payload.ErrorMessage, payload.Note, payload.Information} {
		if msg != "" {
			return nil, &ProviderError{Provider: f.Name(), Message: msg}
		}
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.Bar, 0, len(payload.Series))
	for day, e := range payload.Series {
		bar, err := e.toBar(day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage %s %s: %w", symbol, day, err)
		}
		bars = append(bars, bar)
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return NormalizeBars(bars, rng.Since(now())), nil
}

func (e avDailyEntry) toBar(day string) (model.Bar, error) {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse date: %w", err)
	}
	var prices [4]float64
	for i, s := range []string{e.Open, e.High, e.Low, e.Close} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return model.Bar{}, fmt.Errorf("parse price %q: %w", s, err)
		}
		prices[i] = d.InexactFloat64()
	}
	vol, err := decimal.NewFromString(e.Volume)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse volume %q: %w", e.Volume, err)
	}
	return model.Bar{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: vol.IntPart(),
	}, nil
}
