package app

import (
	"fmt"

	"go.uber.org/zap"

	"factorbench/internal/backtest"
	"factorbench/internal/calendar"
	"factorbench/internal/config"
	"factorbench/internal/factor"
	"factorbench/internal/grouping"
	"factorbench/internal/ic"
	"factorbench/internal/metrics"
	"factorbench/internal/perf"
	"factorbench/internal/result"
)

// Evaluation 是单个因子的一次完整评测产出。
type Evaluation struct {
	FactorName  string
	Bundle      *result.Node
	Performance perf.Report
}

// pipeline 串联单因子评测的全部步骤。不同因子各持一份
// pipeline 与数据引用，之间没有共享可变状态。
type pipeline struct {
	cfg    config.BacktestConfig
	logger *zap.Logger
}

// run 执行因子评测：计算因子值 → 回测 → 组合收益与净值 →
// IC 指标族 → 换手率 → 净值统计 → 分年度绩效，最后组装结果树。
func (p *pipeline) run(name string, ds *factor.Dataset) (Evaluation, error) {
	fn, err := factor.Get(name)
	if err != nil {
		return Evaluation{}, err
	}
	factorRaw := fn(ds)

	interval, err := calendar.ParseInterval(p.cfg.FrequencyInterval)
	if err != nil {
		return Evaluation{}, fmt.Errorf("解析调仓频率失败: %w", err)
	}

	engine, err := backtest.NewEngine(backtest.Config{
		StartDate: p.cfg.StartDate,
		EndDate:   p.cfg.EndDate,
		Interval:  interval,
		Anchor:    calendar.Anchor(p.cfg.FreqPosition),
		Period:    calendar.Period(p.cfg.Period),
		TimeLabel: p.cfg.TimeLabel,
	}, p.logger)
	if err != nil {
		return Evaluation{}, err
	}

	res, err := engine.Run(factorRaw, ds.Close, ds.Dates())
	if err != nil {
		return Evaluation{}, fmt.Errorf("回测 %s 失败: %w", name, err)
	}

	groups := p.cfg.SubportfolioNum
	ret := res.ReturnsRec
	nav := ret.FillNA(0).CumprodOnePlus()
	portfolio := grouping.BuildPortfolio(ret, groups)

	rankIC, normalIC := ic.Compute(res.FactorRec, ret, groups)
	rankICLag, normalICLag := ic.ComputeLag(res.FactorRec, ret, p.cfg.ICLagN)

	membership := grouping.BuildGroupMembership(res.Positions, res.PriceRaw, groups)
	turnover := grouping.ComputeTurnover(res.Positions, res.PriceRaw, membership, groups)

	stats := metrics.NavStatistics(nav, res.Period)

	var report perf.Report
	if portfolio.AllNaN() {
		p.logger.Warn("组合收益全部缺失，跳过绩效计算", zap.String("factor", name))
	} else {
		agg := perf.NewAggregator(metrics.DefaultPackages(), p.cfg.Benchmark, p.cfg.Winlen, p.logger)
		report = agg.Compute(portfolio, res.Period)
	}

	bundle := result.Build(result.Artifacts{
		Portfolio:   portfolio,
		Returns:     ret,
		Nav:         nav,
		RankIC:      rankIC,
		NormalIC:    normalIC,
		RankICLag:   rankICLag,
		NormalICLag: normalICLag,
		Turnover:    turnover,
		Stats:       stats,
		Performance: report,
	})

	p.logger.Info("因子评测完成",
		zap.String("factor", name),
		zap.Int("trading_days", len(res.Calendar)),
		zap.String("period", string(res.Period)),
	)
	return Evaluation{FactorName: name, Bundle: bundle, Performance: report}, nil
}
