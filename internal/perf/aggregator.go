package perf

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"factorbench/internal/calendar"
	"factorbench/internal/metrics"
	"factorbench/internal/table"
)

// ScopeAllTime 覆盖整段样本的评价区间名。
const ScopeAllTime = "alltime"

// Report 按评价区间与指标包名索引的绩效结果。
// 某包在某区间计算失败或输入全缺失时对应条目为 nil。
type Report map[string]map[string]*table.Matrix

// Aggregator 将收益率表切成逐年区间加整段区间，
// 逐区间调用各指标包并汇总结果。单个包的失败只影响自身条目。
type Aggregator struct {
	packages  []metrics.Package
	benchmark map[string]float64
	winlen    int
	logger    *zap.Logger
}

func NewAggregator(packages []metrics.Package, benchmark map[string]float64, winlen int, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(packages) == 0 {
		packages = metrics.DefaultPackages()
	}
	return &Aggregator{
		packages:  packages,
		benchmark: benchmark,
		winlen:    winlen,
		logger:    logger,
	}
}

// Compute 计算所有评价区间的全部指标包。
// 只有一行的年份不具备收益统计意义，跳过并记录日志。
func (a *Aggregator) Compute(ret *table.Frame, period calendar.Period) Report {
	scopes := a.sliceScopes(ret)

	report := make(Report, len(scopes))
	var mu sync.Mutex
	var g errgroup.Group

	for name, frame := range scopes {
		g.Go(func() error {
			entry := a.computeScope(name, frame, period)
			mu.Lock()
			report[name] = entry
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (a *Aggregator) computeScope(scope string, ret *table.Frame, period calendar.Period) map[string]*table.Matrix {
	entry := make(map[string]*table.Matrix, len(a.packages))
	for _, pkg := range a.packages {
		if ret.AllNaN() {
			a.logger.Debug("skip metric package on empty slice",
				zap.String("scope", scope),
				zap.String("package", pkg.Name()))
			entry[pkg.Name()] = nil
			continue
		}
		m, err := pkg.Compute(ret, a.benchmark, period, a.winlen)
		if err != nil {
			a.logger.Warn("metric package failed",
				zap.String("scope", scope),
				zap.String("package", pkg.Name()),
				zap.Error(err))
			entry[pkg.Name()] = nil
			continue
		}
		entry[pkg.Name()] = m
	}
	return entry
}

// sliceScopes 把收益表按自然年切片，并附上覆盖全样本的 alltime 区间。
func (a *Aggregator) sliceScopes(ret *table.Frame) map[string]*table.Frame {
	byYear := make(map[string][]time.Time)
	for _, d := range ret.Dates() {
		key := d.Format("2006")
		byYear[key] = append(byYear[key], d)
	}

	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)

	scopes := make(map[string]*table.Frame, len(years)+1)
	for _, y := range years {
		dates := byYear[y]
		if len(dates) <= 1 {
			a.logger.Info("skip single-row year in performance slicing",
				zap.String("year", y))
			continue
		}
		scopes[y] = ret.Reindex(dates)
	}
	scopes[ScopeAllTime] = ret
	return scopes
}
