package ic

import (
	"math"
	"slices"
	"strconv"

	"factorbench/internal/table"
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Statistics 计算 IC 表的派生统计量：累计 IC、12 期移动平均与列间相关矩阵。
func Statistics(icTable *table.Frame) (cum, ma12 *table.Frame, corr *table.Matrix) {
	return icTable.Cumsum(), icTable.RollingMean(12), icTable.CorrMatrix()
}

// MonthlyMap 按 (年, 月) 对 total 列求均值并转置为 年×月 矩阵。
// 没有 total 列时返回 nil。
func MonthlyMap(icTable *table.Frame) *table.Matrix {
	col, ok := icTable.ColIndex("total")
	if !ok {
		return nil
	}

	type cell struct {
		sum float64
		n   int
	}
	agg := make(map[int]*[12]cell)
	var years []int
	for i := 0; i < icTable.NumRows(); i++ {
		v := icTable.AtIndex(i, col)
		if math.IsNaN(v) {
			continue
		}
		y, m, _ := icTable.Date(i).Date()
		row, ok := agg[y]
		if !ok {
			row = &[12]cell{}
			agg[y] = row
			years = append(years, y)
		}
		row[int(m)-1].sum += v
		row[int(m)-1].n++
	}
	if len(years) == 0 {
		return nil
	}
	slices.Sort(years)

	rowLabels := make([]string, len(years))
	for i, y := range years {
		rowLabels[i] = strconv.Itoa(y)
	}
	m := table.NewMatrix(rowLabels, monthNames)
	for i, y := range years {
		for j := 0; j < 12; j++ {
			c := agg[y][j]
			if c.n > 0 {
				m.Values[i][j] = c.sum / float64(c.n)
			}
		}
	}
	return m
}
