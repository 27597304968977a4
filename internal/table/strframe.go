package table

import (
	"slices"
	"time"
)

// StringFrame 与 Frame 同构，但单元格为字符串（持仓表中的标的名称），
// 空串表示缺失。
type StringFrame struct {
	dates  []time.Time
	cols   []string
	rowIdx map[int64]int
	colIdx map[string]int
	cells  [][]string
}

// NewStringFrame 创建空的字符串表。
func NewStringFrame(dates []time.Time, cols []string) *StringFrame {
	f := &StringFrame{
		dates:  slices.Clone(dates),
		cols:   slices.Clone(cols),
		rowIdx: make(map[int64]int, len(dates)),
		colIdx: make(map[string]int, len(cols)),
		cells:  make([][]string, len(dates)),
	}
	for i, d := range f.dates {
		f.rowIdx[d.UnixNano()] = i
	}
	for j, c := range f.cols {
		f.colIdx[c] = j
	}
	for i := range f.cells {
		f.cells[i] = make([]string, len(cols))
	}
	return f
}

// Dates 返回日期索引的副本。
func (f *StringFrame) Dates() []time.Time {
	return slices.Clone(f.dates)
}

// Columns 返回列名的副本。
func (f *StringFrame) Columns() []string {
	return slices.Clone(f.cols)
}

// NumRows 返回行数。
func (f *StringFrame) NumRows() int {
	return len(f.dates)
}

// NumCols 返回列数。
func (f *StringFrame) NumCols() int {
	return len(f.cols)
}

// Date 返回第 i 行的日期。
func (f *StringFrame) Date(i int) time.Time {
	return f.dates[i]
}

// At 按日期与列名取值，缺失返回空串。
func (f *StringFrame) At(d time.Time, col string) string {
	i, ok := f.rowIdx[d.UnixNano()]
	if !ok {
		return ""
	}
	j, ok := f.colIdx[col]
	if !ok {
		return ""
	}
	return f.cells[i][j]
}

// AtIndex 按行列号取值。
func (f *StringFrame) AtIndex(i, j int) string {
	return f.cells[i][j]
}

// Set 按日期与列名写入。
func (f *StringFrame) Set(d time.Time, col, v string) {
	i, ok := f.rowIdx[d.UnixNano()]
	if !ok {
		return
	}
	j, ok := f.colIdx[col]
	if !ok {
		return
	}
	f.cells[i][j] = v
}

// SetIndex 按行列号写入。
func (f *StringFrame) SetIndex(i, j int, v string) {
	f.cells[i][j] = v
}

// RowIndex 返回日期对应的行号。
func (f *StringFrame) RowIndex(d time.Time) (int, bool) {
	i, ok := f.rowIdx[d.UnixNano()]
	return i, ok
}

// Reindex 按新日期索引重排，源表缺失的日期为空行。
func (f *StringFrame) Reindex(dates []time.Time) *StringFrame {
	out := NewStringFrame(dates, f.cols)
	for i, d := range dates {
		if src, ok := f.rowIdx[d.UnixNano()]; ok {
			copy(out.cells[i], f.cells[src])
		}
	}
	return out
}

// ReindexFFill 按新日期索引重排并向前填充：新索引中某日期在源表缺失时，
// 取源表中不晚于该日期的最近一行；没有更早行则保持空。
// 对应调仓日持仓向整个交易日历的延续。
func (f *StringFrame) ReindexFFill(dates []time.Time) *StringFrame {
	out := NewStringFrame(dates, f.cols)
	for i, d := range dates {
		if src, ok := f.rowIdx[d.UnixNano()]; ok {
			copy(out.cells[i], f.cells[src])
			continue
		}
		last := -1
		for k, sd := range f.dates {
			if sd.After(d) {
				break
			}
			last = k
		}
		if last >= 0 {
			copy(out.cells[i], f.cells[last])
		}
	}
	return out
}
