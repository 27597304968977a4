package metrics

import (
	"math"
	"testing"

	"factorbench/internal/calendar"
)

func TestTrailingSum(t *testing.T) {
	series := []float64{1, 2, 3, 4}
	if got := trailingSum(series, 2); got != 7 {
		t.Errorf("expected trailing sum 7, got %v", got)
	}
	if got := trailingSum(series, 4); got != 10 {
		t.Errorf("expected trailing sum 10, got %v", got)
	}
	if got := trailingSum(series, 5); !math.IsNaN(got) {
		t.Errorf("expected NaN for short series, got %v", got)
	}
	if got := trailingSum([]float64{1, nan, 3}, 2); !math.IsNaN(got) {
		t.Errorf("expected NaN when window contains missing value, got %v", got)
	}
	// 缺失值在窗口之外不影响结果
	if got := trailingSum([]float64{nan, 2, 3}, 2); got != 5 {
		t.Errorf("expected trailing sum 5, got %v", got)
	}
}

func TestNavStatistics_MonthlyPeriod(t *testing.T) {
	nav := mustFrame(t, days(1, 2, 3), []string{"total"},
		[][]float64{{1.0}, {1.1}, {1.2}})

	m := NavStatistics(nav, calendar.PeriodMonthly)

	if got := m.At("total", "latest_pct"); !almostEqual(got, 120) {
		t.Errorf("expected latest_pct 120, got %v", got)
	}
	// 月频下 1 月窗口就是最近一期
	if got := m.At("total", "recent_1m_pct"); !almostEqual(got, 120) {
		t.Errorf("expected recent_1m_pct 120, got %v", got)
	}
	if got := m.At("total", "recent_3m_pct"); !almostEqual(got, 330) {
		t.Errorf("expected recent_3m_pct 330, got %v", got)
	}
	// 三个观测凑不满 12 期年窗
	if got := m.At("total", "recent_1y_pct"); !math.IsNaN(got) {
		t.Errorf("expected NaN recent_1y_pct, got %v", got)
	}
	if got := m.At("total", "since_inception_pct"); !almostEqual(got, 330) {
		t.Errorf("expected since_inception_pct 330, got %v", got)
	}
	if got := m.At("total", "min"); got != 1.0 {
		t.Errorf("expected min 1.0, got %v", got)
	}
	if got := m.At("total", "max"); got != 1.2 {
		t.Errorf("expected max 1.2, got %v", got)
	}
	if got := m.At("total", "quantile_50"); !almostEqual(got, 1.1) {
		t.Errorf("expected median 1.1, got %v", got)
	}
}

func TestNavStatistics_QuarterlyHasNoMonthlyWindows(t *testing.T) {
	nav := mustFrame(t, days(1, 2, 3, 4), []string{"total"},
		[][]float64{{1.0}, {1.1}, {1.2}, {1.3}})

	m := NavStatistics(nav, calendar.PeriodQuarterly)

	if got := m.At("total", "recent_1m_pct"); !math.IsNaN(got) {
		t.Errorf("expected missing recent_1m_pct for quarterly period, got %v", got)
	}
	if got := m.At("total", "recent_3m_pct"); !math.IsNaN(got) {
		t.Errorf("expected missing recent_3m_pct for quarterly period, got %v", got)
	}
	// 季频年窗为 4 期
	if got := m.At("total", "recent_1y_pct"); !almostEqual(got, 460) {
		t.Errorf("expected recent_1y_pct 460, got %v", got)
	}
}

func TestNavStatistics_NaNSkippedInQuantiles(t *testing.T) {
	nav := mustFrame(t, days(1, 2, 3), []string{"total"},
		[][]float64{{nan}, {1.0}, {2.0}})

	m := NavStatistics(nav, calendar.PeriodYearly)

	if got := m.At("total", "min"); got != 1.0 {
		t.Errorf("expected min 1.0 ignoring missing, got %v", got)
	}
	if got := m.At("total", "since_inception_pct"); !almostEqual(got, 300) {
		t.Errorf("expected since_inception_pct 300, got %v", got)
	}
	// 年窗含缺失值，滚动合计缺失
	if got := m.At("total", "recent_3y_pct"); !math.IsNaN(got) {
		t.Errorf("expected NaN recent_3y_pct, got %v", got)
	}
}

func TestRollingPackage_BenchmarkRelative(t *testing.T) {
	// total 恰为 bench 的两倍，回归斜率应为 2
	ret := mustFrame(t, days(1, 2, 3, 4), []string{"total", "bench"}, [][]float64{
		{0.02, 0.01},
		{-0.04, -0.02},
		{0.06, 0.03},
		{0.02, 0.01},
	})

	m, err := RollingPackage{}.Compute(ret, map[string]float64{"bench": 1}, calendar.PeriodMonthly, 3)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if got := m.At("total", "beta"); !almostEqual(got, 2) {
		t.Errorf("expected beta 2, got %v", got)
	}
	if got := m.At("total", "alpha"); !almostEqual(got, 0) {
		t.Errorf("expected alpha 0, got %v", got)
	}
	if got := m.At("total", "up_capture"); !almostEqual(got, 2) {
		t.Errorf("expected up_capture 2, got %v", got)
	}
	if got := m.At("total", "down_capture"); !almostEqual(got, 2) {
		t.Errorf("expected down_capture 2, got %v", got)
	}
	if got := m.At("total", "roll_volatility"); math.IsNaN(got) {
		t.Errorf("expected finite roll_volatility, got NaN")
	}
}

func TestRollingPackage_NoBenchmarkSkipsRelativeColumns(t *testing.T) {
	ret := mustFrame(t, days(1, 2, 3), []string{"total"},
		[][]float64{{0.01}, {-0.02}, {0.03}})

	m, err := RollingPackage{}.Compute(ret, nil, calendar.PeriodDaily, 2)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got := m.At("total", "beta"); !math.IsNaN(got) {
		t.Errorf("expected missing beta without benchmark, got %v", got)
	}
	// 尾窗只取最后 winlen 个观测
	want := maxDrawdown([]float64{-0.02, 0.03})
	if got := m.At("total", "roll_max_drawdown"); !almostEqual(got, want) {
		t.Errorf("expected roll_max_drawdown %v, got %v", want, got)
	}
}
