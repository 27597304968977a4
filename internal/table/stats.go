package table

import (
	"gonum.org/v1/gonum/stat"
)

// Correlation 计算两个等长序列的 Pearson 相关系数。
// 调用方负责保证长度一致且不含缺失值。
func Correlation(x, y []float64) float64 {
	return stat.Correlation(x, y, nil)
}
