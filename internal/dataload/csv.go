package dataload

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"factorbench/internal/config"
	"factorbench/internal/factor"
	"factorbench/internal/table"
)

const dateColumn = "date"

// LoadFrame 从 CSV 读入一张行情表：首列为日期（YYYY-MM-DD），
// 其余列为各标的的取值，空单元格按缺失处理。
func LoadFrame(path string) (*table.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开行情文件失败: %w", err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.Float),
		dataframe.WithTypes(map[string]series.Type{dateColumn: series.String}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, df.Err)
	}

	names := df.Names()
	if len(names) == 0 || names[0] != dateColumn {
		return nil, fmt.Errorf("%s 首列必须为 %s", path, dateColumn)
	}

	records := df.Col(dateColumn).Records()
	dates := make([]time.Time, len(records))
	for i, rec := range records {
		d, err := time.Parse(time.DateOnly, rec)
		if err != nil {
			return nil, fmt.Errorf("%s 第 %d 行日期非法: %w", path, i+1, err)
		}
		dates[i] = d.UTC()
	}

	assets := names[1:]
	values := make([][]float64, len(dates))
	for i := range values {
		values[i] = make([]float64, len(assets))
	}
	for j, name := range assets {
		col := df.Col(name).Float()
		for i := range dates {
			values[i][j] = col[i]
		}
	}
	return table.FromRows(dates, assets, values)
}

// LoadDataset 按配置读入 OHLCV 五张表。未配置路径的表退化为收盘表，
// 仅依赖收盘价的因子不受影响。
func LoadDataset(cfg config.CSVConfig) (*factor.Dataset, error) {
	closeFrame, err := LoadFrame(cfg.Close)
	if err != nil {
		return nil, err
	}

	load := func(path string) (*table.Frame, error) {
		if path == "" {
			return closeFrame, nil
		}
		return LoadFrame(path)
	}

	open, err := load(cfg.Open)
	if err != nil {
		return nil, err
	}
	high, err := load(cfg.High)
	if err != nil {
		return nil, err
	}
	low, err := load(cfg.Low)
	if err != nil {
		return nil, err
	}
	volume, err := load(cfg.Volume)
	if err != nil {
		return nil, err
	}

	return &factor.Dataset{
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closeFrame,
		Volume: volume,
	}, nil
}
