package table

import (
	"math"
	"slices"
)

// Matrix 是带行列标签的数值矩阵，用于相关系数矩阵、月度图、
// 绩效指标表与净值统计表等非日期索引结果。
type Matrix struct {
	RowLabels []string
	ColLabels []string
	Values    [][]float64
}

// NewMatrix 创建填满 NaN 的标签矩阵。
func NewMatrix(rows, cols []string) *Matrix {
	m := &Matrix{
		RowLabels: slices.Clone(rows),
		ColLabels: slices.Clone(cols),
		Values:    make([][]float64, len(rows)),
	}
	for i := range m.Values {
		row := make([]float64, len(cols))
		for j := range row {
			row[j] = math.NaN()
		}
		m.Values[i] = row
	}
	return m
}

// Set 按标签写入，标签不存在时忽略。
func (m *Matrix) Set(row, col string, v float64) {
	i := slices.Index(m.RowLabels, row)
	j := slices.Index(m.ColLabels, col)
	if i < 0 || j < 0 {
		return
	}
	m.Values[i][j] = v
}

// At 按标签取值，标签不存在时返回 NaN。
func (m *Matrix) At(row, col string) float64 {
	i := slices.Index(m.RowLabels, row)
	j := slices.Index(m.ColLabels, col)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}
