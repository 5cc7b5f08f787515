package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFetch("yahoo", 200*time.Millisecond, 250, nil)
	m.ObserveFetch("yahoo", 100*time.Millisecond, 0, errors.New("timeout"))
	m.ObserveFetch("alphavantage", time.Second, 100, nil)

	if got := testutil.ToFloat64(m.BarsFetched.WithLabelValues("yahoo")); got != 250 {
		t.Errorf("yahoo bars = %v, want 250", got)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("yahoo")); got != 1 {
		t.Errorf("yahoo errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("alphavantage")); got != 0 {
		t.Errorf("alphavantage errors = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(m.FetchDuration); got != 2 {
		t.Errorf("fetch duration series = %d, want 2", got)
	}
}

func TestReportDone(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ReportDone(StatusOK)
	m.ReportDone(StatusOK)
	m.ReportDone(StatusError)
	m.ObserveCompute(time.Millisecond)

	if got := testutil.ToFloat64(m.ReportsTotal.WithLabelValues(StatusOK)); got != 2 {
		t.Errorf("ok reports = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ReportsTotal.WithLabelValues(StatusError)); got != 1 {
		t.Errorf("error reports = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("yahoo", time.Second, 1, nil)
	m.ObserveCompute(time.Second)
	m.ReportDone(StatusOK)
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ReportDone(StatusOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `stockscope_reports_total{status="ok"} 1`) {
		t.Errorf("metrics output missing report counter:\n%s", body)
	}
}
