package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"factorbench/internal/config"
	"factorbench/internal/dataload"
	"factorbench/internal/factor"
	"factorbench/internal/perf"
	"factorbench/internal/store"
)

// App 聚合核心依赖并驱动一次多因子评测。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 加载行情数据，逐因子并发评测，合并跨因子绩效并落库。
func (a *App) Run(ctx context.Context) (map[string]Evaluation, map[string]map[string]*perf.MergedTable, error) {
	a.logger.Info("因子评测系统已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.Strings("factors", a.cfg.Factors),
		zap.String("data_source", a.cfg.Data.Source),
	)

	dataset, err := a.loadDataset(ctx)
	if err != nil {
		return nil, nil, err
	}

	var mu sync.Mutex
	evaluations := make(map[string]Evaluation, len(a.cfg.Factors))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, name := range a.cfg.Factors {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			p := &pipeline{cfg: a.cfg.Backtest, logger: a.logger.With(zap.String("factor", name))}
			eval, err := p.run(name, dataset)
			if err != nil {
				return err
			}
			mu.Lock()
			evaluations[name] = eval
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	reports := make(map[string]perf.Report, len(evaluations))
	for name, eval := range evaluations {
		reports[name] = eval.Performance
	}
	merged := perf.Merge(reports)

	for name, eval := range evaluations {
		id, err := a.store.SaveRun(ctx, name, a.cfg.Backtest.StartDate, a.cfg.Backtest.EndDate, eval.Bundle)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Info("评测结果已落库", zap.String("factor", name), zap.Int64("run_id", id))
	}

	return evaluations, merged, nil
}

func (a *App) loadDataset(ctx context.Context) (*factor.Dataset, error) {
	switch strings.ToLower(a.cfg.Data.Source) {
	case "csv":
		return dataload.LoadDataset(a.cfg.Data.CSV)
	case "ccxt":
		downloader, err := dataload.NewDownloader(a.cfg.Data.CCXT, a.logger)
		if err != nil {
			return nil, err
		}
		return downloader.FetchDataset(ctx)
	default:
		return nil, fmt.Errorf("未知的数据来源: %s", a.cfg.Data.Source)
	}
}
