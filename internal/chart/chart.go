// Package chart renders a report as an interactive HTML page of ECharts panes.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

const (
	width       = "1200px"
	priceHeight = "480px"
	paneHeight  = "240px"

	upColor   = "#26a69a"
	downColor = "#ef5350"

	volumeMAPeriod = 20

	overbought = 70
	oversold   = 30
)

// gap marks a date without a value; ECharts skips it instead of drawing zero.
const gap = "-"

// Render writes the full chart page for report to w: price with moving
// averages and Bollinger Bands, volume, RSI and MACD.
func Render(w io.Writer, report *model.Report) error {
	dates := axis(report.Bars)

	page := components.NewPage()
	page.PageTitle = report.Symbol + " technical indicators"
	page.AddCharts(
		priceChart(report, dates),
		volumeChart(report, dates),
		rsiChart(report, dates),
		macdChart(report, dates),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart %s: %w", report.Symbol, err)
	}
	return nil
}

// Path returns the chart file for symbol inside dir.
func Path(dir, symbol string) string {
	return filepath.Join(dir, symbol+"_chart.html")
}

// WriteFile renders report into {dir}/{symbol}_chart.html and returns the path.
func WriteFile(dir string, report *model.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := Path(dir, report.Symbol)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	if err := Render(f, report); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func axis(bars model.Series) []string {
	dates := make([]string, len(bars))
	for i, b := range bars {
		dates[i] = b.Date.Format("2006-01-02")
	}
	return dates
}

// padded left-pads points with gaps to the n-date axis. Indicator output is
// suffix-aligned with the bars, so the offset is just the length difference.
func padded(n int, points []model.Point) []opts.LineData {
	data := make([]opts.LineData, n)
	offset := n - len(points)
	for i := range data {
		if i < offset {
			data[i] = opts.LineData{Value: gap}
			continue
		}
		data[i] = opts.LineData{Value: points[i-offset].Value}
	}
	return data
}

func baseOpts(title string, height string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "5%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
	}
}

func lineStyle() charts.SeriesOpts {
	return charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
}

func priceChart(report *model.Report, dates []string) *charts.Line {
	n := len(dates)
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOpts(report.Symbol+" price", priceHeight),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)...)

	closes := make([]opts.LineData, n)
	for i, b := range report.Bars {
		closes[i] = opts.LineData{Value: b.Close}
	}
	line.SetXAxis(dates).AddSeries("Close", closes, lineStyle())

	ind := report.Indicators
	for _, ma := range ind.SMA {
		line.AddSeries(fmt.Sprintf("SMA %d", ma.Period), padded(n, ma.Points), lineStyle())
	}
	for _, ma := range ind.EMA {
		line.AddSeries(fmt.Sprintf("EMA %d", ma.Period), padded(n, ma.Points), lineStyle())
	}

	upper := make([]model.Point, len(ind.Bollinger))
	lower := make([]model.Point, len(ind.Bollinger))
	for i, b := range ind.Bollinger {
		upper[i] = model.Point{Date: b.Date, Value: b.Upper}
		lower[i] = model.Point{Date: b.Date, Value: b.Lower}
	}
	bandStyle := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})
	line.AddSeries("BB upper", padded(n, upper), lineStyle(), bandStyle)
	line.AddSeries("BB lower", padded(n, lower), lineStyle(), bandStyle)
	return line
}

func volumeChart(report *model.Report, dates []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("Volume", paneHeight)...)

	data := make([]opts.BarData, len(report.Bars))
	for i, b := range report.Bars {
		color := upColor
		if b.Close < b.Open {
			color = downColor
		}
		data[i] = opts.BarData{Value: b.Volume, ItemStyle: &opts.ItemStyle{Color: color}}
	}
	bar.SetXAxis(dates).AddSeries("Volume", data)

	if ma, err := calculator.SMA(report.Bars, volumeMAPeriod, calculator.FieldVolume); err == nil && len(ma) > 0 {
		avg := charts.NewLine()
		avg.SetXAxis(dates).AddSeries(fmt.Sprintf("Volume SMA %d", volumeMAPeriod), padded(len(dates), ma), lineStyle())
		bar.Overlap(avg)
	}
	return bar
}

func rsiChart(report *model.Report, dates []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOpts(fmt.Sprintf("RSI %d", report.Indicators.RSIPeriod), paneHeight),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
	)...)
	line.SetXAxis(dates).AddSeries("RSI", padded(len(dates), report.Indicators.RSI),
		lineStyle(),
		charts.WithMarkLineNameYAxisItemOpts(
			opts.MarkLineNameYAxisItem{Name: "Overbought", YAxis: overbought},
			opts.MarkLineNameYAxisItem{Name: "Oversold", YAxis: oversold},
		),
	)
	return line
}

func macdChart(report *model.Report, dates []string) *charts.Bar {
	n := len(dates)
	macd := report.Indicators.MACD

	hist := make([]opts.BarData, n)
	offset := n - len(macd.Histogram)
	for i := range hist {
		if i < offset {
			hist[i] = opts.BarData{Value: gap}
			continue
		}
		v := macd.Histogram[i-offset].Value
		color := upColor
		if v < 0 {
			color = downColor
		}
		hist[i] = opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: color}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("MACD", paneHeight)...)
	bar.SetXAxis(dates).AddSeries("Histogram", hist)

	lines := charts.NewLine()
	lines.SetXAxis(dates).
		AddSeries("MACD", padded(n, macd.MACD), lineStyle()).
		AddSeries("Signal", padded(n, macd.Signal), lineStyle())
	bar.Overlap(lines)
	return bar
}
