package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"factorbench/internal/calendar"
	"factorbench/internal/table"
)

var rollingColumns = []string{
	"roll_volatility", "roll_sharpe", "roll_max_drawdown",
	"alpha", "beta", "up_capture", "down_capture",
	"tracking_error", "information_ratio",
}

// RollingPackage 计算窗口与基准相关指标：winlen 尾窗的波动率、夏普与
// 最大回撤，以及相对基准的 alpha/beta、上行/下行捕获、跟踪误差与信息
// 比率。基准由 benchmark 权重对收益表加权合成；无可用基准时相关列缺失。
type RollingPackage struct{}

func (RollingPackage) Name() string { return "rolling" }

func (RollingPackage) Compute(ret *table.Frame, benchmark map[string]float64, period calendar.Period, winlen int) (*table.Matrix, error) {
	freq := periodsPerYear(period)
	rows := nonEmptyColumns(ret)
	m := table.NewMatrix(rows, rollingColumns)
	bench := benchmarkSeries(ret, benchmark)

	for _, col := range rows {
		full := ret.Column(col)
		r := cleanColumn(full)

		window := r
		if winlen > 0 && len(r) > winlen {
			window = r[len(r)-winlen:]
		}
		m.Set(col, "roll_volatility", stat.StdDev(window, nil)*math.Sqrt(freq))
		m.Set(col, "roll_sharpe", sharpe(window, freq))
		m.Set(col, "roll_max_drawdown", maxDrawdown(window))

		if bench == nil {
			continue
		}
		// alpha/beta 等需要逐期配对，按日历位置对齐后剔除缺失
		var xs, ys []float64
		for i := range full {
			if math.IsNaN(full[i]) || math.IsNaN(bench[i]) {
				continue
			}
			xs = append(xs, bench[i])
			ys = append(ys, full[i])
		}
		if len(xs) < 2 {
			continue
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		m.Set(col, "alpha", alpha*freq)
		m.Set(col, "beta", beta)
		m.Set(col, "up_capture", capture(ys, xs, true))
		m.Set(col, "down_capture", capture(ys, xs, false))

		diffs := make([]float64, len(xs))
		for i := range xs {
			diffs[i] = ys[i] - xs[i]
		}
		te := stat.StdDev(diffs, nil) * math.Sqrt(freq)
		m.Set(col, "tracking_error", te)
		if te != 0 {
			m.Set(col, "information_ratio", stat.Mean(diffs, nil)*freq/te)
		}
	}
	return m, nil
}

// capture 计算基准上行（或下行）期间的收益捕获比。
func capture(r, bench []float64, up bool) float64 {
	var rs, bs float64
	n := 0
	for i := range bench {
		if (up && bench[i] > 0) || (!up && bench[i] < 0) {
			rs += r[i]
			bs += bench[i]
			n++
		}
	}
	if n == 0 || bs == 0 {
		return math.NaN()
	}
	return rs / bs
}
