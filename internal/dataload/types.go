package dataload

import (
	"sort"
	"time"

	"factorbench/internal/factor"
	"factorbench/internal/table"
)

// Candle 代表单根K线。
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// BuildDataset 把逐标的K线序列对齐成行情数据集。
// 行索引取所有标的时间戳的并集，缺口保持缺失。
func BuildDataset(candles map[string][]Candle) *factor.Dataset {
	seen := make(map[time.Time]struct{})
	for _, series := range candles {
		for _, c := range series {
			seen[c.Timestamp.UTC()] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for ts := range seen {
		dates = append(dates, ts)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	assets := make([]string, 0, len(candles))
	for symbol := range candles {
		assets = append(assets, symbol)
	}
	sort.Strings(assets)

	ds := &factor.Dataset{
		Open:   table.NewFrame(dates, assets),
		High:   table.NewFrame(dates, assets),
		Low:    table.NewFrame(dates, assets),
		Close:  table.NewFrame(dates, assets),
		Volume: table.NewFrame(dates, assets),
	}
	for _, symbol := range assets {
		for _, c := range candles[symbol] {
			ts := c.Timestamp.UTC()
			ds.Open.Set(ts, symbol, c.Open)
			ds.High.Set(ts, symbol, c.High)
			ds.Low.Set(ts, symbol, c.Low)
			ds.Close.Set(ts, symbol, c.Close)
			ds.Volume.Set(ts, symbol, c.Volume)
		}
	}
	return ds
}
