package main

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"factorbench/internal/app"
	"factorbench/internal/perf"
	"factorbench/internal/result"
)

// render 把每个因子的净值统计表与跨因子绩效合并表打印到终端。
func render(w io.Writer, evaluations map[string]app.Evaluation, merged map[string]map[string]*perf.MergedTable) {
	factors := make([]string, 0, len(evaluations))
	for name := range evaluations {
		factors = append(factors, name)
	}
	sort.Strings(factors)

	for _, name := range factors {
		node := evaluations[name].Bundle.Get("stats_tb")
		if node == nil || node.Matrix() == nil {
			continue
		}
		fmt.Fprintf(w, "\n因子 %s 净值统计\n", name)
		renderMatrix(w, node)
	}

	scopes := make([]string, 0, len(merged))
	for scope := range merged {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	for _, scope := range scopes {
		packages := make([]string, 0, len(merged[scope]))
		for pkg := range merged[scope] {
			packages = append(packages, pkg)
		}
		sort.Strings(packages)

		for _, pkg := range packages {
			fmt.Fprintf(w, "\n绩效 %s / %s\n", scope, pkg)
			renderMerged(w, merged[scope][pkg])
		}
	}
}

func renderMatrix(w io.Writer, node *result.Node) {
	m := node.Matrix()
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{""}
	for _, col := range m.ColLabels {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for i, label := range m.RowLabels {
		row := table.Row{label}
		for _, v := range m.Values[i] {
			row = append(row, formatCell(v))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderMerged(w io.Writer, mt *perf.MergedTable) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{"factorname", "asset"}
	for _, col := range mt.Columns {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for _, row := range mt.Rows {
		out := table.Row{row.Factor, row.Asset}
		for _, v := range row.Values {
			out = append(out, formatCell(v))
		}
		t.AppendRow(out)
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func formatCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
