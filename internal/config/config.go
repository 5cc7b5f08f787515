package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"StockScope/internal/calculator"
	"StockScope/internal/collector"
	"StockScope/internal/logging"
)

// Providers accepted by data_source.provider.
const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
	ProviderMock         = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"api_key"`
		Range       string        `yaml:"range"`
		Symbols     []string      `yaml:"symbols"`
		Concurrency int           `yaml:"concurrency"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Indicators struct {
		SMA  []int `yaml:"sma"`
		EMA  []int `yaml:"ema"`
		RSI  int   `yaml:"rsi"`
		MACD struct {
			Fast   int `yaml:"fast"`
			Slow   int `yaml:"slow"`
			Signal int `yaml:"signal"`
		} `yaml:"macd"`
		Bollinger struct {
			Period int     `yaml:"period"`
			K      float64 `yaml:"k"`
		} `yaml:"bollinger"`
	} `yaml:"indicators"`
	Output struct {
		Dir   string `yaml:"dir"`
		JSON  bool   `yaml:"json"`
		CSV   bool   `yaml:"csv"`
		Chart bool   `yaml:"chart"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log   logging.LogConfig `yaml:"log"`
	Proxy string            `yaml:"proxy"`
}

// Default returns the configuration used when no file or environment sets a value.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.Provider = ProviderYahoo
	cfg.DataSource.Range = string(collector.Range1Y)
	cfg.DataSource.Symbols = []string{"AAPL", "MSFT"}
	cfg.DataSource.Concurrency = 4
	cfg.DataSource.Timeout = 30 * time.Second

	d := calculator.DefaultSettings()
	cfg.Indicators.SMA = d.SMAPeriods
	cfg.Indicators.EMA = d.EMAPeriods
	cfg.Indicators.RSI = d.RSIPeriod
	cfg.Indicators.MACD.Fast = d.MACDFast
	cfg.Indicators.MACD.Slow = d.MACDSlow
	cfg.Indicators.MACD.Signal = d.MACDSignal
	cfg.Indicators.Bollinger.Period = d.BollingerPeriod
	cfg.Indicators.Bollinger.K = d.BollingerK

	cfg.Output.Dir = "output"
	cfg.Output.JSON = true
	cfg.Output.Chart = true

	cfg.Database.SQLitePath = "data/stockscope.db"
	cfg.Redis.TTL = 24 * time.Hour
	cfg.Schedule.DailyCron = "0 30 22 * * 1-5"
	cfg.HTTP.Addr = ":8080"
	cfg.Log = logging.DefaultLogConfig()
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCKSCOPE_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("STOCKSCOPE_SYMBOLS"); v != "" {
		c.DataSource.Symbols = SplitSymbols(v)
	}
	if v := os.Getenv("STOCKSCOPE_RANGE"); v != "" {
		c.DataSource.Range = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		c.Schedule.DailyCron = v
	}
	if v := os.Getenv("STOCKSCOPE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DataSource.Concurrency = n
		}
	}
}

// SplitSymbols parses a comma or space separated symbol list, upper-casing
// entries and dropping blanks and repeats.
func SplitSymbols(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Validate returns the first violated rule.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderAlphaVantage:
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for provider %q", ProviderAlphaVantage)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, alphavantage, mock", c.DataSource.Provider)
	}
	if _, err := collector.ParseRange(c.DataSource.Range); err != nil {
		return fmt.Errorf("data_source.range: %w", err)
	}
	if c.DataSource.Concurrency < 1 {
		return fmt.Errorf("data_source.concurrency must be positive")
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}

	for _, p := range c.Indicators.SMA {
		if p < 1 {
			return fmt.Errorf("indicators.sma: period %d must be >= 1", p)
		}
	}
	for _, p := range c.Indicators.EMA {
		if p < 1 {
			return fmt.Errorf("indicators.ema: period %d must be >= 1", p)
		}
	}
	if c.Indicators.RSI < 1 {
		return fmt.Errorf("indicators.rsi must be >= 1")
	}
	m := c.Indicators.MACD
	if m.Fast < 1 || m.Slow < 1 || m.Signal < 1 {
		return fmt.Errorf("indicators.macd periods must be >= 1")
	}
	if m.Fast >= m.Slow {
		return fmt.Errorf("indicators.macd.fast must be less than slow")
	}
	b := c.Indicators.Bollinger
	if b.Period < 1 {
		return fmt.Errorf("indicators.bollinger.period must be >= 1")
	}
	if b.K < 0 || math.IsNaN(b.K) || math.IsInf(b.K, 0) {
		return fmt.Errorf("indicators.bollinger.k must be a finite number >= 0")
	}

	if (c.Output.JSON || c.Output.CSV || c.Output.Chart) && c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required when file output is enabled")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// Range returns the parsed data_source.range.
func (c *Config) Range() collector.Range {
	r, err := collector.ParseRange(c.DataSource.Range)
	if err != nil {
		return collector.Range1Y
	}
	return r
}

// IndicatorSettings converts the indicators section for the calculator.
func (c *Config) IndicatorSettings() calculator.Settings {
	return calculator.Settings{
		SMAPeriods:      append([]int(nil), c.Indicators.SMA...),
		EMAPeriods:      append([]int(nil), c.Indicators.EMA...),
		RSIPeriod:       c.Indicators.RSI,
		MACDFast:        c.Indicators.MACD.Fast,
		MACDSlow:        c.Indicators.MACD.Slow,
		MACDSignal:      c.Indicators.MACD.Signal,
		BollingerPeriod: c.Indicators.Bollinger.Period,
		BollingerK:      c.Indicators.Bollinger.K,
	}
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
