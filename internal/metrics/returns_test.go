package metrics

import (
	"math"
	"testing"
	"time"

	"factorbench/internal/calendar"
	"factorbench/internal/table"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func days(ns ...int) []time.Time {
	out := make([]time.Time, len(ns))
	for i, n := range ns {
		out[i] = day(n)
	}
	return out
}

var nan = math.NaN()

func mustFrame(t *testing.T, dates []time.Time, cols []string, values [][]float64) *table.Frame {
	t.Helper()
	f, err := table.FromRows(dates, cols, values)
	if err != nil {
		t.Fatalf("FromRows returned error: %v", err)
	}
	return f
}

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) < 1e-9
}

func TestReturnsPackage_BasicStats(t *testing.T) {
	ret := mustFrame(t, days(1, 2, 3, 4), []string{"total"},
		[][]float64{{0.1}, {-0.05}, {0.02}, {0}})

	m, err := ReturnsPackage{}.Compute(ret, nil, calendar.PeriodDaily, 12)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	wantTotal := 1.1*0.95*1.02 - 1
	if got := m.At("total", "total_return"); !almostEqual(got, wantTotal) {
		t.Errorf("expected total_return %v, got %v", wantTotal, got)
	}
	if got := m.At("total", "best"); got != 0.1 {
		t.Errorf("expected best 0.1, got %v", got)
	}
	if got := m.At("total", "worst"); got != -0.05 {
		t.Errorf("expected worst -0.05, got %v", got)
	}
	if got := m.At("total", "win_rate"); !almostEqual(got, 0.5) {
		t.Errorf("expected win_rate 0.5, got %v", got)
	}
	if got := m.At("total", "avg_win"); !almostEqual(got, 0.06) {
		t.Errorf("expected avg_win 0.06, got %v", got)
	}
	if got := m.At("total", "avg_loss"); !almostEqual(got, -0.05) {
		t.Errorf("expected avg_loss -0.05, got %v", got)
	}
	if got := m.At("total", "profit_factor"); !almostEqual(got, 0.12/0.05) {
		t.Errorf("expected profit_factor 2.4, got %v", got)
	}
}

func TestReturnsPackage_SkipsSparseColumns(t *testing.T) {
	ret := mustFrame(t, days(1, 2, 3), []string{"full", "sparse", "empty"}, [][]float64{
		{0.01, 0.02, nan},
		{0.02, nan, nan},
		{0.03, nan, nan},
	})

	m, err := ReturnsPackage{}.Compute(ret, nil, calendar.PeriodDaily, 12)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if len(m.RowLabels) != 1 || m.RowLabels[0] != "full" {
		t.Errorf("expected only full column retained, got %v", m.RowLabels)
	}
}

func TestRiskPackage_MaxDrawdownAndSharpe(t *testing.T) {
	ret := mustFrame(t, days(1, 2, 3, 4), []string{"total"},
		[][]float64{{0.1}, {-0.5}, {0.1}, {0.1}})

	m, err := RiskPackage{}.Compute(ret, nil, calendar.PeriodDaily, 12)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got := m.At("total", "max_drawdown"); !almostEqual(got, 0.5) {
		t.Errorf("expected max_drawdown 0.5, got %v", got)
	}
	if got := m.At("total", "sharpe"); math.IsNaN(got) {
		t.Errorf("expected finite sharpe, got NaN")
	}
	if got := m.At("total", "omega"); !almostEqual(got, 0.3/0.5) {
		t.Errorf("expected omega 0.6, got %v", got)
	}
}

func TestRiskPackage_FlatSeriesSharpeUndefined(t *testing.T) {
	ret := mustFrame(t, days(1, 2, 3), []string{"total"},
		[][]float64{{0.01}, {0.01}, {0.01}})

	m, err := RiskPackage{}.Compute(ret, nil, calendar.PeriodDaily, 12)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got := m.At("total", "sharpe"); !math.IsNaN(got) {
		t.Errorf("expected NaN sharpe for zero volatility, got %v", got)
	}
	if got := m.At("total", "omega"); !math.IsNaN(got) {
		t.Errorf("expected NaN omega without losses, got %v", got)
	}
	if got := m.At("total", "max_drawdown"); got != 0 {
		t.Errorf("expected zero drawdown, got %v", got)
	}
}

func TestBenchmarkSeries_WeightedBlend(t *testing.T) {
	ret := mustFrame(t, days(1, 2), []string{"a", "b"}, [][]float64{
		{0.1, 0.3},
		{0.2, 0.4},
	})

	bench := benchmarkSeries(ret, map[string]float64{"a": 1, "b": 3})
	if bench == nil {
		t.Fatal("expected benchmark series, got nil")
	}
	if !almostEqual(bench[0], 0.25) {
		t.Errorf("expected blended 0.25, got %v", bench[0])
	}

	if got := benchmarkSeries(ret, map[string]float64{"missing": 1}); got != nil {
		t.Errorf("expected nil for unmatched benchmark, got %v", got)
	}
	if got := benchmarkSeries(ret, nil); got != nil {
		t.Errorf("expected nil for empty benchmark, got %v", got)
	}
}

func TestPeriodsPerYear(t *testing.T) {
	cases := map[calendar.Period]float64{
		calendar.PeriodYearly:    1,
		calendar.PeriodQuarterly: 4,
		calendar.PeriodMonthly:   12,
		calendar.PeriodDaily:     252,
		calendar.PeriodUnknown:   252,
	}
	for p, want := range cases {
		if got := periodsPerYear(p); got != want {
			t.Errorf("period %s: expected %v, got %v", p, want, got)
		}
	}
}
