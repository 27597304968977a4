package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"factorbench/internal/calendar"
	"factorbench/internal/rank"
	"factorbench/internal/table"
)

// Result 汇总回测产出的全部中间表。除 Result 本身外，
// 所有中间表在调用结束后不再被引擎持有。
type Result struct {
	PriceRaw   *table.Frame       // 对齐到日历的价格表
	ReturnsRaw *table.Frame       // 标的空间的收益率表
	FactorRaw  *table.Frame       // 对齐到日历的因子表
	PriceRec   *table.Frame       // 槽位空间的价格表
	ReturnsRec *table.Frame       // 槽位空间的收益率表
	FactorRec  *table.Frame       // 槽位空间的因子表
	Positions  *table.StringFrame // 持仓排序表（已前向填充到全日历）
	Calendar   []time.Time
	Period     calendar.Period
}

// Engine 串联日历对齐、频率转换、排序建仓与序列重构。
// 每次 Run 只读取入参并返回新表，可在不同 goroutine 中各自持表并发调用。
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// NewEngine 构建回测引擎。
func NewEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	if cfg.StartDate.IsZero() || cfg.EndDate.IsZero() {
		return nil, fmt.Errorf("backtest: 开始与结束日期不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg.normalize(), logger: logger}, nil
}

// Run 执行完整回测流程：
// 对齐日历 → 重索引价格/因子 → 计算收益率 → 推断评价频率 →
// 重采样出调仓日期 → 构建持仓排序 → 前向填充 → 槽位空间重构。
func (e *Engine) Run(factorRaw, priceRaw *table.Frame, calendarSrc []time.Time) (Result, error) {
	cal, err := calendar.Align(calendarSrc, e.cfg.StartDate, e.cfg.EndDate)
	if err != nil {
		return Result{}, err
	}

	price := priceRaw.Reindex(cal)
	factor := factorRaw.Reindex(cal)
	returns := price.SortByDate().PctChange()

	period := e.cfg.Period
	if period == "" {
		inferred, ok := calendar.InferPeriod(cal)
		if !ok {
			e.logger.Warn("无法从日历推断评价频率", zap.Int("calendar_len", len(cal)))
		}
		period = inferred
	}

	rebalance := calendar.Resample(cal, e.cfg.Interval, e.cfg.Anchor)
	e.logger.Debug("日历构建完成",
		zap.Int("trading_days", len(cal)),
		zap.Int("rebalance_days", len(rebalance)),
		zap.String("period", string(period)))

	positions := rank.BuildPositions(factor.Reindex(rebalance), e.cfg.TimeLabel)
	positions = positions.ReindexFFill(cal)

	factorRec := rank.Reconstruct(positions, factor, 0)
	returnsRec := rank.Reconstruct(positions, returns, 0)
	priceRec := rank.Reconstruct(positions, price, 0)

	return Result{
		PriceRaw:   price,
		ReturnsRaw: returns,
		FactorRaw:  factor,
		PriceRec:   priceRec,
		ReturnsRec: returnsRec,
		FactorRec:  factorRec,
		Positions:  positions,
		Calendar:   cal,
		Period:     period,
	}, nil
}
