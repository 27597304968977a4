package factor

import (
	"math"
	"time"

	"factorbench/internal/table"
)

// Dataset 保存按日期与标的对齐的行情表，各表共享同一行索引。
type Dataset struct {
	Open   *table.Frame
	High   *table.Frame
	Low    *table.Frame
	Close  *table.Frame
	Volume *table.Frame
}

// Assets 返回数据集覆盖的标的列表。
func (d *Dataset) Assets() []string {
	return d.Close.Columns()
}

// Dates 返回数据集的日期索引。
func (d *Dataset) Dates() []time.Time {
	return d.Close.Dates()
}

// Series 将单个标的的行情拆成便于指标计算的序列。
type Series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// AssetSeries 抽取单个标的在各表中的列。
func (d *Dataset) AssetSeries(asset string) Series {
	return Series{
		Open:   d.Open.Column(asset),
		High:   d.High.Column(asset),
		Low:    d.Low.Column(asset),
		Close:  d.Close.Column(asset),
		Volume: d.Volume.Column(asset),
	}
}

// withWarmup 把指标前 lookback 个预热值置为缺失。
// go-talib 对预热区间返回 0，直接参与排序会干扰截面名次。
func withWarmup(values []float64, lookback int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	for i := 0; i < lookback && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out
}
