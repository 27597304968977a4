package rank

import (
	"factorbench/internal/table"
)

// Reconstruct 按持仓表把任意按标的索引的序列重构到槽位空间：
// 输出表第 i 列在某日期的值，等于当日占据槽位 i 的标的在源表中的取值。
// lag>0 时向后看 lag 行（源表 shift(-lag)），用于把未来收益对齐到信号日。
// 日期或标的在源表中缺失时该单元为 NaN，不中断其余单元的处理。
func Reconstruct(pos *table.StringFrame, src *table.Frame, lag int) *table.Frame {
	shifted := src
	if lag != 0 {
		shifted = src.Shift(-lag)
	}
	out := table.NewFrame(pos.Dates(), pos.Columns())
	for i := 0; i < pos.NumRows(); i++ {
		d := pos.Date(i)
		for j := 0; j < pos.NumCols(); j++ {
			asset := pos.AtIndex(i, j)
			if asset == "" {
				continue
			}
			out.SetIndex(i, j, shifted.At(d, asset))
		}
	}
	return out
}
