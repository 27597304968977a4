package metrics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"factorbench/internal/calendar"
	"factorbench/internal/table"
)

var navColumns = []string{
	"latest_pct", "recent_1m_pct", "recent_3m_pct", "recent_1y_pct",
	"recent_3y_pct", "recent_5y_pct", "since_inception_pct",
	"quantile_25", "quantile_50", "quantile_75", "min", "max",
}

// NavStatistics 计算净值统计表：最新值、近 1 月/3 月/1 年/3 年/5 年的
// 滚动合计、成立以来合计、分位点与极值。月度窗口仅对日频与月频有定义，
// 其余频率对应列保持缺失。
func NavStatistics(nav *table.Frame, period calendar.Period) *table.Matrix {
	freqYear := int(periodsPerYear(period))
	m := table.NewMatrix(nav.Columns(), navColumns)

	for _, col := range nav.Columns() {
		series := nav.Column(col)
		if len(series) == 0 {
			continue
		}

		m.Set(col, "latest_pct", series[len(series)-1]*100)
		m.Set(col, "recent_1y_pct", trailingSum(series, freqYear)*100)
		m.Set(col, "recent_3y_pct", trailingSum(series, 3*freqYear)*100)
		m.Set(col, "recent_5y_pct", trailingSum(series, 5*freqYear)*100)
		m.Set(col, "since_inception_pct", table.SumSkipNA(series)*100)

		switch period {
		case calendar.PeriodDaily:
			m.Set(col, "recent_1m_pct", trailingSum(series, 30)*100)
			m.Set(col, "recent_3m_pct", trailingSum(series, 90)*100)
		case calendar.PeriodMonthly:
			m.Set(col, "recent_1m_pct", series[len(series)-1]*100)
			m.Set(col, "recent_3m_pct", trailingSum(series, 3)*100)
		}

		clean := cleanColumn(series)
		if len(clean) == 0 {
			continue
		}
		sorted := slices.Clone(clean)
		slices.Sort(sorted)
		m.Set(col, "quantile_25", stat.Quantile(0.25, stat.LinInterp, sorted, nil))
		m.Set(col, "quantile_50", stat.Quantile(0.5, stat.LinInterp, sorted, nil))
		m.Set(col, "quantile_75", stat.Quantile(0.75, stat.LinInterp, sorted, nil))
		m.Set(col, "min", sorted[0])
		m.Set(col, "max", sorted[len(sorted)-1])
	}
	return m
}

// trailingSum 对序列末尾 window 个观测求和。
// 观测不足或窗口内含缺失值时返回 NaN。
func trailingSum(series []float64, window int) float64 {
	if window <= 0 || len(series) < window {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range series[len(series)-window:] {
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += v
	}
	return sum
}
