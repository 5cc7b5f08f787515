package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockScope/internal/calculator"
	"StockScope/internal/model"
)

func testReport(t *testing.T, n int) *model.Report {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(model.Series, n)
	for i := range series {
		c := 50 + 3*math.Sin(float64(i)/4)
		series[i] = model.Bar{Date: start.AddDate(0, 0, i), Open: c - 0.2, High: c + 1, Low: c - 1, Close: c, Volume: int64(5000 + i)}
	}
	ind, err := calculator.ComputeAll(series, calculator.DefaultSettings())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return &model.Report{Symbol: "TSLA", Provider: "mock", Bars: series, Indicators: ind}
}

func TestPadded(t *testing.T) {
	points := []model.Point{{Value: 1.5}, {Value: 2.5}}
	got := padded(5, points)
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	for i := 0; i < 3; i++ {
		if got[i].Value != gap {
			t.Errorf("entry %d: expected gap, got %v", i, got[i].Value)
		}
	}
	if got[3].Value != 1.5 || got[4].Value != 2.5 {
		t.Errorf("tail = %v, %v", got[3].Value, got[4].Value)
	}

	empty := padded(3, nil)
	for i, d := range empty {
		if d.Value != gap {
			t.Errorf("empty series entry %d = %v, want gap", i, d.Value)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testReport(t, 80)); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"TSLA price", "SMA 20", "EMA 12", "BB upper", "RSI 14", "Overbought", "Oversold", "Histogram", "Signal", "Volume SMA 20"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart page missing %q", want)
		}
	}
}

func TestRender_ShortSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, testReport(t, 5)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "Volume SMA") {
		t.Error("volume average should be omitted for a short series")
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	path, err := WriteFile(dir, testReport(t, 40))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "TSLA_chart.html") {
		t.Errorf("path = %s", path)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("chart file missing or empty: %v", err)
	}
}
