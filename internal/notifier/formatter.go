package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockScope/internal/model"
)

// Failure is a symbol whose analysis did not produce a report.
type Failure struct {
	Symbol string
	Err    error
}

// FormatSummary formats one symbol's latest reading as a Telegram HTML block.
func FormatSummary(s model.Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<b>%s</b> %.2f (%+.2f%%)", html.EscapeString(s.Symbol), s.Close, s.ChangePct))
	if !s.Date.IsZero() {
		b.WriteString(" " + s.Date.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if s.Trend != "" {
		b.WriteString(fmt.Sprintf("  Trend: %s vs SMA%d\n", s.Trend, s.TrendSMA))
	}
	if s.RSIState != "" {
		b.WriteString(fmt.Sprintf("  RSI: %.1f %s\n", s.RSI, s.RSIState))
	}
	if s.MACDState != "" {
		b.WriteString(fmt.Sprintf("  MACD: %s (hist %+.3f)\n", s.MACDState, s.MACDHist))
	}
	if s.Band != "" {
		b.WriteString(fmt.Sprintf("  Bollinger: %s (%%B %.2f)\n", s.Band, s.PercentB))
	}
	if s.High52w > 0 {
		b.WriteString(fmt.Sprintf("  52w: %.2f ~ %.2f (%.0f%%)\n", s.Low52w, s.High52w, s.Pos52w*100))
	}
	for _, n := range s.Notes {
		b.WriteString("  ⚠️ " + html.EscapeString(n) + "\n")
	}
	return b.String()
}

// FormatDigest formats the daily digest for a whole watchlist.
func FormatDigest(day time.Time, summaries []model.Summary, failures []Failure) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockScope daily</b> | %s\n\n", day.Format("2006-01-02")))
	for _, s := range summaries {
		b.WriteString(FormatSummary(s))
		b.WriteString("\n")
	}
	if len(failures) > 0 {
		b.WriteString("❌ <b>Failed:</b>\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(f.Symbol), html.EscapeString(f.Err.Error())))
		}
	}
	if len(summaries) == 0 && len(failures) == 0 {
		b.WriteString("Watchlist is empty.\n")
	}
	return b.String()
}

// FormatWatchlist lists the configured symbols.
func FormatWatchlist(symbols []string) string {
	if len(symbols) == 0 {
		return "Watchlist is empty."
	}
	return "👀 <b>Watchlist</b>\n" + html.EscapeString(strings.Join(symbols, ", "))
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /analyze SYMBOL - latest indicator reading\n" +
		"• /watchlist - configured symbols\n" +
		"• /daily - run the daily digest now"
}
