package metrics

import (
	"math"

	"factorbench/internal/calendar"
	"factorbench/internal/table"
)

// Package 是一个绩效指标包：输入一张收益率表，输出按标的为行、
// 指标为列的统计表。绩效聚合器按名字存取各包的结果，
// 聚合层不关心任何具体公式。
type Package interface {
	Name() string
	Compute(ret *table.Frame, benchmark map[string]float64, period calendar.Period, winlen int) (*table.Matrix, error)
}

// DefaultPackages 返回内置的指标包集合。
func DefaultPackages() []Package {
	return []Package{
		ReturnsPackage{},
		RiskPackage{},
		RollingPackage{},
	}
}

// periodsPerYear 返回各评价频率对应的年化倍数，未知频率按日频处理。
func periodsPerYear(p calendar.Period) float64 {
	switch p {
	case calendar.PeriodYearly:
		return 1
	case calendar.PeriodQuarterly:
		return 4
	case calendar.PeriodMonthly:
		return 12
	default:
		return 252
	}
}

// cleanColumn 去掉序列中的缺失与无穷观测。
func cleanColumn(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// benchmarkSeries 用 benchmark 权重对收益表加权合成基准收益序列。
// 权重中没有任何列能匹配时返回 nil。
func benchmarkSeries(ret *table.Frame, benchmark map[string]float64) []float64 {
	if len(benchmark) == 0 {
		return nil
	}
	matched := false
	out := make([]float64, ret.NumRows())
	weightSum := 0.0
	for col, w := range benchmark {
		if _, ok := ret.ColIndex(col); !ok {
			continue
		}
		matched = true
		weightSum += w
		series := ret.Column(col)
		for i, v := range series {
			if math.IsNaN(v) {
				continue
			}
			out[i] += w * v
		}
	}
	if !matched || weightSum == 0 {
		return nil
	}
	for i := range out {
		out[i] /= weightSum
	}
	return out
}
