package grouping

import (
	"fmt"
	"math"

	"factorbench/internal/table"
)

// BuildGroupMembership 生成组别表：与价格表同形，第 j 列（按列位置）
// 归入第 ceil 分块的组号 1..groups，多余的列并入末组；
// 持仓表当日对应槽位为空时组号记 0（空仓）。
func BuildGroupMembership(pos *table.StringFrame, price *table.Frame, groups int) *table.Frame {
	cols := price.Columns()
	nSlots := pos.NumCols()
	block := nSlots / groups
	if nSlots%groups != 0 {
		block++
	}

	out := table.NewFrame(price.Dates(), cols)
	for i := 0; i < price.NumRows(); i++ {
		d := price.Date(i)
		posRow, hasRow := pos.RowIndex(d)
		for j := range cols {
			g := groups
			if block > 0 && j/block+1 < groups {
				g = j/block + 1
			}
			if hasRow && j < nSlots && pos.AtIndex(posRow, j) == "" {
				g = 0
			}
			out.SetIndex(i, j, float64(g))
		}
	}
	return out
}

// ComputeTurnover 计算换手率表。首个日期换手率恒为 0；此后
// total_turnover_rate = 当日组别发生变化的标的市值 / 当日全体标的市值，
// 分母为零时记 0。group_k_turnover_rate 为第 k 组当前成员中组别发生
// 变化者的市值占该组当前市值的比例，同样对零分母保护。
func ComputeTurnover(pos *table.StringFrame, price *table.Frame, group *table.Frame, groups int) *table.Frame {
	cols := []string{"total_turnover_rate"}
	for g := 1; g <= groups; g++ {
		cols = append(cols, fmt.Sprintf("group_%d_turnover_rate", g))
	}
	dates := pos.Dates()
	out := table.NewFrame(dates, cols)
	if len(dates) == 0 {
		return out
	}

	for j := range cols {
		out.SetIndex(0, j, 0)
	}

	assets := price.Columns()
	for i := 1; i < len(dates); i++ {
		d, prev := dates[i], dates[i-1]
		if _, ok := price.RowIndex(d); !ok {
			continue
		}
		if _, ok := price.RowIndex(prev); !ok {
			continue
		}

		totalValue := 0.0
		changedValue := 0.0
		groupValue := make([]float64, groups+1)
		groupChanged := make([]float64, groups+1)
		for _, a := range assets {
			px := price.At(d, a)
			if math.IsNaN(px) {
				continue
			}
			cur := group.At(d, a)
			old := group.At(prev, a)
			changed := cur != old

			totalValue += px
			if changed {
				changedValue += px
			}
			g := int(cur)
			if g >= 1 && g <= groups {
				groupValue[g] += px
				if changed {
					groupChanged[g] += px
				}
			}
		}

		out.SetIndex(i, 0, safeRatio(changedValue, totalValue))
		for g := 1; g <= groups; g++ {
			out.SetIndex(i, g, safeRatio(groupChanged[g], groupValue[g]))
		}
	}
	return out
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
