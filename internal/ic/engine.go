package ic

import (
	"fmt"
	"math"
	"sort"

	"factorbench/internal/rank"
	"factorbench/internal/table"
)

// Compute 计算全样本与分组的信息系数。
//
// 对每个日期，把因子值与下一期收益（收益表 shift(-1)）配对，剔除缺失
// 与无穷值后要求至少两对有效观测，total 列为 Spearman（rank IC）与
// Pearson（normal IC）相关系数；再按因子值稳定降序把截面切成 groups 个
// 连续块（末块吸收余数），对每块做同样的计算，填入 rank_ic_k /
// normal_ic_k 列。不满足有效性要求的单元保持缺失。
func Compute(factor, ret *table.Frame, groups int) (rankIC, normalIC *table.Frame) {
	rankCols := []string{"total"}
	normalCols := []string{"total"}
	for g := 1; g <= groups; g++ {
		rankCols = append(rankCols, fmt.Sprintf("rank_ic_%d", g))
		normalCols = append(normalCols, fmt.Sprintf("normal_ic_%d", g))
	}
	rankIC = table.NewFrame(factor.Dates(), rankCols)
	normalIC = table.NewFrame(factor.Dates(), normalCols)

	shifted := ret.Shift(-1)
	cols := factor.Columns()

	for i := 0; i < factor.NumRows(); i++ {
		d := factor.Date(i)
		row := factor.Row(i)

		// 全样本
		var fv, rv []float64
		for j, c := range cols {
			fv = append(fv, row[j])
			rv = append(rv, shifted.At(d, c))
		}
		if xs, ys, ok := validPairs(fv, rv); ok {
			rankIC.SetIndex(i, 0, spearman(xs, ys))
			normalIC.SetIndex(i, 0, table.Correlation(xs, ys))
		}

		// 分组
		order := rank.DescendingOrder(row)
		size := len(order) / groups
		for g := 0; g < groups; g++ {
			start := g * size
			end := start + size
			if g == groups-1 {
				end = len(order) // 末组吸收余数
			}
			if start > len(order) {
				start = len(order)
			}
			var gf, gr []float64
			for _, idx := range order[start:end] {
				gf = append(gf, row[idx])
				gr = append(gr, shifted.At(d, cols[idx]))
			}
			if xs, ys, ok := validPairs(gf, gr); ok {
				rankIC.SetIndex(i, 1+g, spearman(xs, ys))
				normalIC.SetIndex(i, 1+g, table.Correlation(xs, ys))
			}
		}
	}
	return rankIC, normalIC
}

// ComputeLag 对每个滞后期 k 重复全样本 IC 计算，使用 shift(-k) 的收益。
// 收益表索引中不存在的日期被跳过。
func ComputeLag(factor, ret *table.Frame, lags []int) (rankIC, normalIC *table.Frame) {
	var rankCols, normalCols []string
	for _, k := range lags {
		rankCols = append(rankCols, fmt.Sprintf("rank_ic_%d", k))
		normalCols = append(normalCols, fmt.Sprintf("normal_ic_%d", k))
	}
	rankIC = table.NewFrame(factor.Dates(), rankCols)
	normalIC = table.NewFrame(factor.Dates(), normalCols)

	shifts := make([]*table.Frame, len(lags))
	for n, k := range lags {
		shifts[n] = ret.Shift(-k)
	}
	cols := factor.Columns()

	for i := 0; i < factor.NumRows(); i++ {
		d := factor.Date(i)
		if _, ok := ret.RowIndex(d); !ok {
			continue
		}
		row := factor.Row(i)
		for n := range lags {
			var fv, rv []float64
			for j, c := range cols {
				fv = append(fv, row[j])
				rv = append(rv, shifts[n].At(d, c))
			}
			if xs, ys, ok := validPairs(fv, rv); ok {
				rankIC.SetIndex(i, n, spearman(xs, ys))
				normalIC.SetIndex(i, n, table.Correlation(xs, ys))
			}
		}
	}
	return rankIC, normalIC
}

// validPairs 剔除任一侧缺失或无穷的观测对，并要求至少两对。
func validPairs(x, y []float64) (xs, ys []float64, ok bool) {
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys, len(xs) >= 2
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// spearman 通过并列取平均名次的秩变换计算 Spearman 相关系数。
func spearman(x, y []float64) float64 {
	return table.Correlation(ranks(x), ranks(y))
}

func ranks(vals []float64) []float64 {
	n := len(vals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && vals[order[j+1]] == vals[order[i]] {
			j++
		}
		// 并列观测共享平均名次
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[order[k]] = avg
		}
		i = j + 1
	}
	return out
}
