package grouping

import (
	"fmt"
	"math"

	"factorbench/internal/rank"
	"factorbench/internal/table"
)

// BuildPortfolio 按收益率构建分组组合表：
// total 列为当日全体标的的平均收益，group_k 为按收益稳定降序切出的
// 第 k 个连续块的平均收益（末块吸收余数），long_short 为首末组之差。
func BuildPortfolio(ret *table.Frame, groups int) *table.Frame {
	cols := []string{"total"}
	for g := 1; g <= groups; g++ {
		cols = append(cols, fmt.Sprintf("group_%d", g))
	}
	cols = append(cols, "long_short")

	out := table.NewFrame(ret.Dates(), cols)
	for i := 0; i < ret.NumRows(); i++ {
		row := ret.Row(i)
		out.SetIndex(i, 0, table.MeanSkipNA(row))

		order := rank.DescendingOrder(row)
		size := len(order) / groups
		var first, last float64 = math.NaN(), math.NaN()
		for g := 0; g < groups; g++ {
			start := g * size
			end := start + size
			if g == groups-1 {
				end = len(order)
			}
			var vals []float64
			for _, idx := range order[start:end] {
				vals = append(vals, row[idx])
			}
			mean := table.MeanSkipNA(vals)
			out.SetIndex(i, 1+g, mean)
			if g == 0 {
				first = mean
			}
			if g == groups-1 {
				last = mean
			}
		}
		out.SetIndex(i, 1+groups, first-last)
	}
	return out
}
