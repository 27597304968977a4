package table

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Frame 是按交易日期索引的二维数值表，列为标的名称或排序槽位。
// 缺失值统一用 NaN 表示。日期索引要求严格递增，由构造方保证。
// Frame 不做原地共享：所有变换返回新表，单次回测内的表互不影响。
type Frame struct {
	dates  []time.Time
	cols   []string
	rowIdx map[int64]int
	colIdx map[string]int
	values [][]float64 // values[row][col]
}

// NewFrame 创建给定日期与列的空表，所有单元格初始化为 NaN。
func NewFrame(dates []time.Time, cols []string) *Frame {
	f := &Frame{
		dates:  slices.Clone(dates),
		cols:   slices.Clone(cols),
		rowIdx: make(map[int64]int, len(dates)),
		colIdx: make(map[string]int, len(cols)),
		values: make([][]float64, len(dates)),
	}
	for i, d := range f.dates {
		f.rowIdx[d.UnixNano()] = i
	}
	for j, c := range f.cols {
		f.colIdx[c] = j
	}
	for i := range f.values {
		row := make([]float64, len(cols))
		for j := range row {
			row[j] = math.NaN()
		}
		f.values[i] = row
	}
	return f
}

// FromRows 用行数据创建 Frame。values 的行数与列数必须与 dates、cols 匹配。
func FromRows(dates []time.Time, cols []string, values [][]float64) (*Frame, error) {
	if len(values) != len(dates) {
		return nil, fmt.Errorf("table: 行数 %d 与日期数 %d 不一致", len(values), len(dates))
	}
	f := NewFrame(dates, cols)
	for i, row := range values {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("table: 第 %d 行列数 %d 与列名数 %d 不一致", i, len(row), len(cols))
		}
		copy(f.values[i], row)
	}
	return f, nil
}

// Dates 返回日期索引的副本。
func (f *Frame) Dates() []time.Time {
	return slices.Clone(f.dates)
}

// Columns 返回列名的副本。
func (f *Frame) Columns() []string {
	return slices.Clone(f.cols)
}

// NumRows 返回行数。
func (f *Frame) NumRows() int {
	return len(f.dates)
}

// NumCols 返回列数。
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// RowIndex 返回日期对应的行号。
func (f *Frame) RowIndex(d time.Time) (int, bool) {
	i, ok := f.rowIdx[d.UnixNano()]
	return i, ok
}

// ColIndex 返回列名对应的列号。
func (f *Frame) ColIndex(name string) (int, bool) {
	j, ok := f.colIdx[name]
	return j, ok
}

// At 按日期与列名取值，任一缺失时返回 NaN。
func (f *Frame) At(d time.Time, col string) float64 {
	i, ok := f.rowIdx[d.UnixNano()]
	if !ok {
		return math.NaN()
	}
	j, ok := f.colIdx[col]
	if !ok {
		return math.NaN()
	}
	return f.values[i][j]
}

// AtIndex 按行列号取值。
func (f *Frame) AtIndex(i, j int) float64 {
	return f.values[i][j]
}

// Set 按日期与列名写入，索引不存在时静默忽略。
func (f *Frame) Set(d time.Time, col string, v float64) {
	i, ok := f.rowIdx[d.UnixNano()]
	if !ok {
		return
	}
	j, ok := f.colIdx[col]
	if !ok {
		return
	}
	f.values[i][j] = v
}

// SetIndex 按行列号写入。
func (f *Frame) SetIndex(i, j int, v float64) {
	f.values[i][j] = v
}

// Date 返回第 i 行的日期。
func (f *Frame) Date(i int) time.Time {
	return f.dates[i]
}

// Row 返回第 i 行数据的副本。
func (f *Frame) Row(i int) []float64 {
	return slices.Clone(f.values[i])
}

// Column 返回某列的完整时间序列副本，列不存在时返回 nil。
func (f *Frame) Column(name string) []float64 {
	j, ok := f.colIdx[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(f.dates))
	for i := range f.dates {
		out[i] = f.values[i][j]
	}
	return out
}

// Clone 返回深拷贝。
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.dates, f.cols)
	for i := range f.values {
		copy(out.values[i], f.values[i])
	}
	return out
}

// Reindex 按新日期索引重排，源表缺失的日期填 NaN 行，不在新索引中的日期被丢弃。
func (f *Frame) Reindex(dates []time.Time) *Frame {
	out := NewFrame(dates, f.cols)
	for i, d := range dates {
		if src, ok := f.rowIdx[d.UnixNano()]; ok {
			copy(out.values[i], f.values[src])
		}
	}
	return out
}

// SortByDate 返回按日期升序重排的新表。
func (f *Frame) SortByDate() *Frame {
	dates := slices.Clone(f.dates)
	slices.SortStableFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return f.Reindex(dates)
}

// Shift 按 pandas 语义做行位移：n>0 时数值向后（更晚日期）移动 n 行，
// n<0 时向前移动，空出的行填 NaN。
func (f *Frame) Shift(n int) *Frame {
	out := NewFrame(f.dates, f.cols)
	for i := range f.values {
		src := i - n
		if src < 0 || src >= len(f.values) {
			continue
		}
		copy(out.values[i], f.values[src])
	}
	return out
}

// PctChange 计算逐行简单收益率，首行恒为 NaN；相邻两值任一缺失时结果为 NaN。
func (f *Frame) PctChange() *Frame {
	out := NewFrame(f.dates, f.cols)
	for i := 1; i < len(f.values); i++ {
		for j := range f.cols {
			prev := f.values[i-1][j]
			cur := f.values[i][j]
			if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
				continue
			}
			out.values[i][j] = cur/prev - 1
		}
	}
	return out
}

// FillNA 将 NaN 替换为给定值。
func (f *Frame) FillNA(v float64) *Frame {
	out := f.Clone()
	for i := range out.values {
		for j := range out.values[i] {
			if math.IsNaN(out.values[i][j]) {
				out.values[i][j] = v
			}
		}
	}
	return out
}

// Cumsum 对每列做累计求和。NaN 单元格保持 NaN 且不汇入累计值，
// 后续数值不受其污染。
func (f *Frame) Cumsum() *Frame {
	out := NewFrame(f.dates, f.cols)
	for j := range f.cols {
		acc := 0.0
		for i := range f.values {
			v := f.values[i][j]
			if math.IsNaN(v) {
				continue
			}
			acc += v
			out.values[i][j] = acc
		}
	}
	return out
}

// CumprodOnePlus 计算净值曲线 cumprod(1+v)，NaN 先按 0 处理。
func (f *Frame) CumprodOnePlus() *Frame {
	out := NewFrame(f.dates, f.cols)
	for j := range f.cols {
		acc := 1.0
		for i := range f.values {
			v := f.values[i][j]
			if math.IsNaN(v) {
				v = 0
			}
			acc *= 1 + v
			out.values[i][j] = acc
		}
	}
	return out
}

// RollingMean 计算固定窗口的移动平均；窗口不满或窗口内含 NaN 时结果为 NaN。
func (f *Frame) RollingMean(window int) *Frame {
	out := NewFrame(f.dates, f.cols)
	if window <= 0 {
		return out
	}
	for j := range f.cols {
		for i := window - 1; i < len(f.values); i++ {
			sum := 0.0
			valid := true
			for k := i - window + 1; k <= i; k++ {
				v := f.values[k][j]
				if math.IsNaN(v) {
					valid = false
					break
				}
				sum += v
			}
			if valid {
				out.values[i][j] = sum / float64(window)
			}
		}
	}
	return out
}

// RowMean 返回每行的均值（忽略 NaN），整行缺失时为 NaN。
func (f *Frame) RowMean() []float64 {
	out := make([]float64, len(f.dates))
	for i := range f.values {
		out[i] = MeanSkipNA(f.values[i])
	}
	return out
}

// AllNaN 判断整张表是否没有任何有效数值。
func (f *Frame) AllNaN() bool {
	for i := range f.values {
		for _, v := range f.values[i] {
			if !math.IsNaN(v) {
				return false
			}
		}
	}
	return true
}

// CorrMatrix 计算列与列之间的 Pearson 相关系数矩阵，
// 逐对删除缺失观测，不足两对时该单元为 NaN。
func (f *Frame) CorrMatrix() *Matrix {
	n := len(f.cols)
	m := NewMatrix(f.cols, f.cols)
	series := make([][]float64, n)
	for j, c := range f.cols {
		series[j] = f.Column(c)
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			m.Values[a][b] = pairwiseCorr(series[a], series[b])
		}
	}
	return m
}

func pairwiseCorr(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return Correlation(xs, ys)
}

// MeanSkipNA 返回切片均值，忽略 NaN；没有有效值时返回 NaN。
func MeanSkipNA(vals []float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SumSkipNA 返回切片之和，忽略 NaN；全部缺失时返回 0（与 pandas sum 一致）。
func SumSkipNA(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
	}
	return sum
}
