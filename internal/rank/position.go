package rank

import (
	"math"
	"slices"
	"sort"
	"strconv"

	"factorbench/internal/table"
)

// BuildPositions 把因子截面转换为持仓排序表。
//
// 横截面模式（默认，多列且未显式要求择时标签）：对每个日期按因子值
// 稳定降序排序，缺失值排在最后，槽位 1..N（1 为最优）填入标的名称。
// 同值标的保持原始列顺序。
//
// 择时标签模式（单列或 timeLabel 为真）：把每个源列的取值当作离散
// 状态，对每个 (列, 状态) 组合生成一列，在该状态成立的日期填列名；
// 另有 total 列记录当日读数最大的列名。
func BuildPositions(factor *table.Frame, timeLabel bool) *table.StringFrame {
	if timeLabel || factor.NumCols() == 1 {
		return buildTimeLabelPositions(factor)
	}
	return buildCrossSectionPositions(factor)
}

func buildCrossSectionPositions(factor *table.Frame) *table.StringFrame {
	assets := factor.Columns()
	slots := make([]string, len(assets))
	for i := range slots {
		slots[i] = strconv.Itoa(i + 1)
	}
	pos := table.NewStringFrame(factor.Dates(), slots)
	for i := 0; i < factor.NumRows(); i++ {
		order := DescendingOrder(factor.Row(i))
		for slot, colIdx := range order {
			pos.SetIndex(i, slot, assets[colIdx])
		}
	}
	return pos
}

// DescendingOrder 返回按值稳定降序排列的列号，NaN 沉底且保持相对顺序。
// 分组 IC 与分组组合复用同一排序规则，保证各处分组一致。
func DescendingOrder(row []float64) []int {
	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := row[order[a]], row[order[b]]
		switch {
		case math.IsNaN(va):
			return false
		case math.IsNaN(vb):
			return true
		default:
			return va > vb
		}
	})
	return order
}

func buildTimeLabelPositions(factor *table.Frame) *table.StringFrame {
	srcCols := factor.Columns()
	rows := factor.NumRows()

	// 先收集每个源列出现过的状态值（升序），确定输出列
	var outCols []string
	type stateCol struct {
		srcIdx int
		state  float64
	}
	var specs []stateCol
	for j, name := range srcCols {
		var states []float64
		seen := map[float64]struct{}{}
		for i := 0; i < rows; i++ {
			v := factor.AtIndex(i, j)
			if math.IsNaN(v) {
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				states = append(states, v)
			}
		}
		slices.Sort(states)
		for _, s := range states {
			outCols = append(outCols, name+"_"+formatState(s))
			specs = append(specs, stateCol{srcIdx: j, state: s})
		}
	}
	outCols = append(outCols, "total")

	pos := table.NewStringFrame(factor.Dates(), outCols)
	for i := 0; i < rows; i++ {
		for k, spec := range specs {
			if factor.AtIndex(i, spec.srcIdx) == spec.state {
				pos.SetIndex(i, k, srcCols[spec.srcIdx])
			}
		}
		// total 列：当日最大读数所在列的列名，全部缺失时留空
		best := math.Inf(-1)
		bestCol := ""
		for j, name := range srcCols {
			v := factor.AtIndex(i, j)
			if math.IsNaN(v) {
				continue
			}
			if v > best {
				best = v
				bestCol = name
			}
		}
		pos.SetIndex(i, len(outCols)-1, bestCol)
	}
	return pos
}

func formatState(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
