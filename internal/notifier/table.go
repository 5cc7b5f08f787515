package notifier

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockScope/internal/model"
)

// RenderTable writes the summaries as a terminal table, failures last.
func RenderTable(w io.Writer, summaries []model.Summary, failures []Failure) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Date", "Close", "Chg %", "Trend", "RSI", "MACD", "Bollinger", "52w pos"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Close", Align: text.AlignRight},
		{Name: "Chg %", Align: text.AlignRight},
		{Name: "RSI", Align: text.AlignRight},
		{Name: "52w pos", Align: text.AlignRight},
	})

	for _, s := range summaries {
		date := "-"
		if !s.Date.IsZero() {
			date = s.Date.Format("2006-01-02")
		}
		t.AppendRow(table.Row{
			s.Symbol,
			date,
			fmt.Sprintf("%.2f", s.Close),
			fmt.Sprintf("%+.2f", s.ChangePct),
			orDash(string(s.Trend)),
			rsiCell(s),
			orDash(string(s.MACDState)),
			orDash(string(s.Band)),
			fmt.Sprintf("%.0f%%", s.Pos52w*100),
		})
	}
	for _, f := range failures {
		t.AppendRow(table.Row{f.Symbol, "ERROR", f.Err.Error()})
	}
	t.Render()
}

func rsiCell(s model.Summary) string {
	if s.RSIState == "" {
		return "-"
	}
	return fmt.Sprintf("%.1f", s.RSI)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
