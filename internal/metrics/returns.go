package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"factorbench/internal/calendar"
	"factorbench/internal/table"
)

var returnsColumns = []string{
	"total_return", "annual_return", "annual_volatility", "cum_return_final",
	"best", "worst", "skew", "kurtosis", "win_rate", "avg_win", "avg_loss",
	"profit_factor",
}

// ReturnsPackage 计算收益类指标：总收益、年化收益与波动、最佳/最差、
// 偏度峰度、胜率与盈亏比等。
type ReturnsPackage struct{}

func (ReturnsPackage) Name() string { return "returns" }

func (ReturnsPackage) Compute(ret *table.Frame, benchmark map[string]float64, period calendar.Period, winlen int) (*table.Matrix, error) {
	freq := periodsPerYear(period)
	rows := nonEmptyColumns(ret)
	m := table.NewMatrix(rows, returnsColumns)

	for _, col := range rows {
		r := cleanColumn(ret.Column(col))
		n := float64(len(r))

		comp := 1.0
		best := math.Inf(-1)
		worst := math.Inf(1)
		wins, losses := 0, 0
		winSum, lossSum := 0.0, 0.0
		for _, v := range r {
			comp *= 1 + v
			if v > best {
				best = v
			}
			if v < worst {
				worst = v
			}
			if v > 0 {
				wins++
				winSum += v
			} else if v < 0 {
				losses++
				lossSum += -v
			}
		}

		std := stat.StdDev(r, nil)

		m.Set(col, "total_return", comp-1)
		m.Set(col, "cum_return_final", comp-1)
		m.Set(col, "annual_return", math.Pow(comp, freq/n)-1)
		m.Set(col, "annual_volatility", std*math.Sqrt(freq))
		m.Set(col, "best", best)
		m.Set(col, "worst", worst)
		if len(r) > 2 {
			m.Set(col, "skew", stat.Skew(r, nil))
			m.Set(col, "kurtosis", stat.ExKurtosis(r, nil))
		}
		m.Set(col, "win_rate", float64(wins)/n)
		if wins > 0 {
			m.Set(col, "avg_win", winSum/float64(wins))
		}
		if losses > 0 {
			m.Set(col, "avg_loss", -lossSum/float64(losses))
			m.Set(col, "profit_factor", winSum/lossSum)
		}
	}
	return m, nil
}

// nonEmptyColumns 返回至少含两个有效观测的列；
// 全空列与单观测列一律跳过，与年度切片的有效性规则一致。
func nonEmptyColumns(ret *table.Frame) []string {
	var out []string
	for _, col := range ret.Columns() {
		if len(cleanColumn(ret.Column(col))) >= 2 {
			out = append(out, col)
		}
	}
	return out
}
