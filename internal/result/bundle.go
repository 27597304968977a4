package result

import (
	"factorbench/internal/ic"
	"factorbench/internal/perf"
	"factorbench/internal/table"
)

// Artifacts 汇集一次因子评测的全部产出表。
type Artifacts struct {
	Portfolio   *table.Frame
	Returns     *table.Frame
	Nav         *table.Frame
	RankIC      *table.Frame
	NormalIC    *table.Frame
	RankICLag   *table.Frame
	NormalICLag *table.Frame
	Turnover    *table.Frame
	Stats       *table.Matrix
	Performance perf.Report
}

// Build 把评测产出组装成命名结果树。下游按键名逐项取用，
// 键名是兼容面，不可改动。
func Build(a Artifacts) *Node {
	root := NewBranch()
	root.Put("portfolio_tb", FrameNode(a.Portfolio))
	root.Put("ret_tb", FrameNode(a.Returns))
	root.Put("nav_tb", FrameNode(a.Nav))
	root.Put("turnover_tb", FrameNode(a.Turnover))
	root.Put("stats_tb", MatrixNode(a.Stats))

	putICFamily(root, "rank_ic", a.RankIC)
	putICFamily(root, "normal_ic", a.NormalIC)
	root.Put("rank_ic_lag", FrameNode(a.RankICLag))
	root.Put("normal_ic_lag", FrameNode(a.NormalICLag))

	for scope, packages := range a.Performance {
		for pkg, m := range packages {
			branch := root.Get(pkg)
			if branch == nil {
				branch = NewBranch()
				root.Put(pkg, branch)
			}
			branch.Put(scope, MatrixNode(m))
		}
	}
	return root
}

// putICFamily 写入 IC 表及其累计、12期均线、相关矩阵与月度图衍生项。
func putICFamily(root *Node, prefix string, icTable *table.Frame) {
	root.Put(prefix, FrameNode(icTable))
	if icTable == nil {
		root.Put(prefix+"_cum", FrameNode(nil))
		root.Put(prefix+"_ma12", FrameNode(nil))
		root.Put(prefix+"_cor", MatrixNode(nil))
		root.Put(prefix+"_monthlymap", MatrixNode(nil))
		return
	}
	cum, ma12, corr := ic.Statistics(icTable)
	root.Put(prefix+"_cum", FrameNode(cum))
	root.Put(prefix+"_ma12", FrameNode(ma12))
	root.Put(prefix+"_cor", MatrixNode(corr))
	root.Put(prefix+"_monthlymap", MatrixNode(ic.MonthlyMap(icTable)))
}
