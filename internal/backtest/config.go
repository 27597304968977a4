package backtest

import (
	"time"

	"factorbench/internal/calendar"
)

// Config 定义一次回测的参数。
type Config struct {
	StartDate time.Time         // 回测开始日期
	EndDate   time.Time         // 回测结束日期
	Interval  calendar.Interval // 调仓频率，零值表示逐日调仓
	Anchor    calendar.Anchor   // 每个调仓桶内取首个或末个日期
	Period    calendar.Period   // 评价频率，空值时由日历推断
	TimeLabel bool              // 是否启用择时标签模式
}

func (c *Config) normalize() Config {
	cfg := *c
	if cfg.Anchor == "" {
		cfg.Anchor = calendar.AnchorStart
	}
	return cfg
}
