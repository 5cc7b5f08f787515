package recorder

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"StockScope/internal/model"
)

// CSVRecorder writes {symbol}_bars.csv and a long-format {symbol}_indicators.csv
// with one row per (date, series) pair.
type CSVRecorder struct {
	Dir string
}

func NewCSVRecorder(dir string) *CSVRecorder { return &CSVRecorder{Dir: dir} }

type barRow struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

type indicatorRow struct {
	Date   string  `csv:"date"`
	Series string  `csv:"series"`
	Value  float64 `csv:"value"`
}

func (r *CSVRecorder) RecordReport(_ context.Context, report *model.Report) error {
	bars := make([]*barRow, 0, len(report.Bars))
	for _, b := range report.Bars {
		bars = append(bars, &barRow{
			Date:   formatDate(b.Date),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	var points []*indicatorRow
	for _, s := range Flatten(report) {
		for _, p := range s.Points {
			points = append(points, &indicatorRow{Date: formatDate(p.Date), Series: s.Name, Value: p.Value})
		}
	}

	if err := r.write(report.Symbol+"_bars.csv", &bars); err != nil {
		return err
	}
	return r.write(report.Symbol+"_indicators.csv", &points)
}

func (r *CSVRecorder) write(name string, rows interface{}) error {
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return writeFile(filepath.Join(r.Dir, name), buf.Bytes())
}

func (r *CSVRecorder) Close() error { return nil }
