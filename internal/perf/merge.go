package perf

import (
	"sort"

	"factorbench/internal/table"
)

// MergedRow 是合并表的一行：因子名、标的名与各指标的取值。
type MergedRow struct {
	Factor string
	Asset  string
	Values []float64
}

// MergedTable 是跨因子合并后的单个 (指标包, 区间) 结果表，
// 列顺序取自参与合并的首个因子。
type MergedTable struct {
	Columns []string
	Rows    []MergedRow
}

// Merge 将多个因子的绩效报告按 (区间, 指标包) 合并成跨因子表，
// 每行额外携带因子名。nil 条目（失败或空切片）不参与合并。
func Merge(reports map[string]Report) map[string]map[string]*MergedTable {
	factors := make([]string, 0, len(reports))
	for name := range reports {
		factors = append(factors, name)
	}
	sort.Strings(factors)

	out := make(map[string]map[string]*MergedTable)
	for _, factor := range factors {
		for scope, entry := range reports[factor] {
			for pkg, m := range entry {
				if m == nil {
					continue
				}
				byPkg, ok := out[scope]
				if !ok {
					byPkg = make(map[string]*MergedTable)
					out[scope] = byPkg
				}
				merged, ok := byPkg[pkg]
				if !ok {
					merged = &MergedTable{Columns: m.ColLabels}
					byPkg[pkg] = merged
				}
				appendRows(merged, factor, m)
			}
		}
	}
	return out
}

// appendRows 按合并表既有列序取数，源表缺失的列保持 NaN。
func appendRows(merged *MergedTable, factor string, m *table.Matrix) {
	for _, asset := range m.RowLabels {
		row := MergedRow{
			Factor: factor,
			Asset:  asset,
			Values: make([]float64, len(merged.Columns)),
		}
		for j, col := range merged.Columns {
			row.Values[j] = m.At(asset, col)
		}
		merged.Rows = append(merged.Rows, row)
	}
}
