package factor

import (
	talib "github.com/markcheno/go-talib"

	"factorbench/internal/table"
)

func init() {
	Register("momentum_20", Momentum(20))
	Register("rsi_14", RSI(14))
	Register("obv", OBV)
	Register("macd_hist", MACDHistogram(12, 26, 9))
	Register("chaikin_osc", ChaikinOscillator(3, 10))
}

// Momentum 返回 n 期动量因子（收盘价变动率）。
func Momentum(n int) Func {
	return func(data *Dataset) *table.Frame {
		return perAsset(data, n, func(s Series) []float64 {
			return talib.Roc(s.Close, n)
		})
	}
}

// RSI 返回 n 期相对强弱因子。
func RSI(n int) Func {
	return func(data *Dataset) *table.Frame {
		return perAsset(data, n, func(s Series) []float64 {
			return talib.Rsi(s.Close, n)
		})
	}
}

// OBV 能量潮因子。
func OBV(data *Dataset) *table.Frame {
	return perAsset(data, 1, func(s Series) []float64 {
		return talib.Obv(s.Close, s.Volume)
	})
}

// MACDHistogram 返回 MACD 柱因子。
func MACDHistogram(fast, slow, signal int) Func {
	return func(data *Dataset) *table.Frame {
		return perAsset(data, slow+signal, func(s Series) []float64 {
			_, _, hist := talib.Macd(s.Close, fast, slow, signal)
			return hist
		})
	}
}

// ChaikinOscillator 返回佳庆摆动因子。
func ChaikinOscillator(fast, slow int) Func {
	return func(data *Dataset) *table.Frame {
		return perAsset(data, slow, func(s Series) []float64 {
			return talib.AdOsc(s.High, s.Low, s.Close, s.Volume, fast, slow)
		})
	}
}

// perAsset 逐标的计算指标序列并装回因子表，预热区间置缺失。
func perAsset(data *Dataset, lookback int, fn func(Series) []float64) *table.Frame {
	out := table.NewFrame(data.Dates(), data.Assets())
	for j, asset := range data.Assets() {
		values := withWarmup(fn(data.AssetSeries(asset)), lookback)
		for i, v := range values {
			out.SetIndex(i, j, v)
		}
	}
	return out
}
