package metrics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"factorbench/internal/calendar"
	"factorbench/internal/table"
)

var riskColumns = []string{
	"sharpe", "sortino", "max_drawdown", "calmar", "downside_deviation",
	"value_at_risk", "cvar", "omega", "tail_ratio",
}

// RiskPackage 计算风险类指标：夏普、索提诺、最大回撤、卡玛、
// 下行波动、VaR/CVaR、Omega 与尾部比率。
type RiskPackage struct{}

func (RiskPackage) Name() string { return "risk" }

func (RiskPackage) Compute(ret *table.Frame, benchmark map[string]float64, period calendar.Period, winlen int) (*table.Matrix, error) {
	freq := periodsPerYear(period)
	rows := nonEmptyColumns(ret)
	m := table.NewMatrix(rows, riskColumns)

	for _, col := range rows {
		r := cleanColumn(ret.Column(col))

		m.Set(col, "sharpe", sharpe(r, freq))
		m.Set(col, "sortino", sortino(r, freq))
		maxDD := maxDrawdown(r)
		m.Set(col, "max_drawdown", maxDD)
		if maxDD > 0 {
			annRet := math.Pow(compound(r), freq/float64(len(r))) - 1
			m.Set(col, "calmar", annRet/maxDD)
		}
		m.Set(col, "downside_deviation", downsideDeviation(r)*math.Sqrt(freq))
		m.Set(col, "value_at_risk", valueAtRisk(r, 0.05))
		m.Set(col, "cvar", conditionalVaR(r, 0.05))
		m.Set(col, "omega", omega(r))
		m.Set(col, "tail_ratio", tailRatio(r))
	}
	return m, nil
}

func compound(r []float64) float64 {
	acc := 1.0
	for _, v := range r {
		acc *= 1 + v
	}
	return acc
}

func sharpe(r []float64, freq float64) float64 {
	std := stat.StdDev(r, nil)
	if std == 0 || math.IsNaN(std) {
		return math.NaN()
	}
	return stat.Mean(r, nil) / std * math.Sqrt(freq)
}

func sortino(r []float64, freq float64) float64 {
	dd := downsideDeviation(r)
	if dd == 0 || math.IsNaN(dd) {
		return math.NaN()
	}
	return stat.Mean(r, nil) / dd * math.Sqrt(freq)
}

func downsideDeviation(r []float64) float64 {
	if len(r) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range r {
		if v < 0 {
			sum += v * v
		}
	}
	return math.Sqrt(sum / float64(len(r)))
}

// maxDrawdown 返回净值曲线相对历史峰值的最大跌幅（正数）。
func maxDrawdown(r []float64) float64 {
	nav := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, v := range r {
		nav *= 1 + v
		if nav > peak {
			peak = nav
		}
		if peak > 0 {
			dd := (peak - nav) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func valueAtRisk(r []float64, alpha float64) float64 {
	if len(r) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(r)
	slices.Sort(sorted)
	return stat.Quantile(alpha, stat.Empirical, sorted, nil)
}

func conditionalVaR(r []float64, alpha float64) float64 {
	if len(r) == 0 {
		return math.NaN()
	}
	cutoff := valueAtRisk(r, alpha)
	var tail []float64
	for _, v := range r {
		if v <= cutoff {
			tail = append(tail, v)
		}
	}
	if len(tail) == 0 {
		return cutoff
	}
	return stat.Mean(tail, nil)
}

func omega(r []float64) float64 {
	gains, losses := 0.0, 0.0
	for _, v := range r {
		if v > 0 {
			gains += v
		} else {
			losses += -v
		}
	}
	if losses == 0 {
		return math.NaN()
	}
	return gains / losses
}

func tailRatio(r []float64) float64 {
	if len(r) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(r)
	slices.Sort(sorted)
	upper := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	lower := stat.Quantile(0.05, stat.Empirical, sorted, nil)
	if lower == 0 {
		return math.NaN()
	}
	return math.Abs(upper) / math.Abs(lower)
}
