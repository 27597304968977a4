package dataload

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"factorbench/internal/config"
	"factorbench/internal/factor"
)

var (
	// ErrMaintenance 表示交易所处于维护状态，需要上层改日重试。
	ErrMaintenance = errors.New("exchange on maintenance")
)

// Downloader 负责从交易所拉取历史K线并实现重试机制。
type Downloader struct {
	cfg      config.CCXTConfig
	logger   *zap.Logger
	exchange *ccxt.Binanceusdm

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewDownloader 构造历史行情下载器，目前支持 Binance USDⓈ-M。
func NewDownloader(cfg config.CCXTConfig, logger *zap.Logger) (*Downloader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !strings.EqualFold(cfg.Exchange, "binanceusdm") {
		return nil, fmt.Errorf("不支持的交易所: %s", cfg.Exchange)
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
			"defaultType":             "future",
		},
	}
	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.APISecret != "" {
		userConfig["secret"] = cfg.APISecret
	}

	ex := ccxt.NewBinanceusdm(userConfig)
	if cfg.UseSandbox {
		ex.SetSandboxMode(true)
	}

	return &Downloader{
		cfg:      cfg,
		logger:   logger,
		exchange: ex,
	}, nil
}

// FetchHistory 获取单个交易对的历史K线，按时间升序返回。
func (d *Downloader) FetchHistory(ctx context.Context, symbol string) ([]Candle, error) {
	limit := d.cfg.Limit
	if limit <= 0 {
		limit = 1
	}

	var raw []ccxt.OHLCV
	err := d.callWithRetry(ctx, fmt.Sprintf("fetch_ohlcv_%s", symbol), func() error {
		if err := d.ensureMarketsLoaded(ctx); err != nil {
			return err
		}

		result, err := d.exchange.FetchOHLCV(
			symbol,
			ccxt.WithFetchOHLCVTimeframe(d.cfg.Timeframe),
			ccxt.WithFetchOHLCVLimit(limit),
		)
		if err != nil {
			return err
		}

		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	candles := make([]Candle, 0, len(raw))
	for _, item := range raw {
		candles = append(candles, Candle{
			Timestamp: time.UnixMilli(item.Timestamp).UTC(),
			Open:      item.Open,
			High:      item.High,
			Low:       item.Low,
			Close:     item.Close,
			Volume:    item.Volume,
		})
	}
	return candles, nil
}

// FetchDataset 并发拉取全部交易对并对齐成数据集。
func (d *Downloader) FetchDataset(ctx context.Context) (*factor.Dataset, error) {
	var mu sync.Mutex
	candles := make(map[string][]Candle, len(d.cfg.Symbols))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, symbol := range d.cfg.Symbols {
		group.Go(func() error {
			data, err := d.FetchHistory(groupCtx, symbol)
			if err != nil {
				return fmt.Errorf("拉取 %s 历史行情失败: %w", symbol, err)
			}
			mu.Lock()
			candles[symbol] = data
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	ds := BuildDataset(candles)
	d.logger.Info("历史行情下载完成",
		zap.Int("symbols", len(d.cfg.Symbols)),
		zap.Int("rows", ds.Close.NumRows()),
	)
	return ds, nil
}

func (d *Downloader) ensureMarketsLoaded(ctx context.Context) error {
	if d.marketsLoaded {
		return nil
	}

	d.marketsMu.Lock()
	defer d.marketsMu.Unlock()

	if d.marketsLoaded {
		return nil
	}

	loadErr := d.callWithRetry(ctx, "load_markets", func() error {
		_, err := d.exchange.LoadMarkets()
		return err
	})
	if loadErr != nil {
		return loadErr
	}

	d.marketsLoaded = true
	d.logger.Info("已完成市场元数据加载", zap.String("exchange", d.cfg.Exchange))
	return nil
}

func (d *Downloader) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	delay := d.cfg.Retry.MinDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxDelay := d.cfg.Retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		start := time.Now()
		err := fn()
		duration := time.Since(start)
		if err == nil {
			if attempt > 1 {
				d.logger.Info("交易所调用重试后成功",
					zap.String("operation", operation),
					zap.Int("attempts", attempt),
					zap.Duration("latency", duration),
				)
			}
			return nil
		}

		normalizedErr, retry := d.classifyError(err)

		if errors.Is(normalizedErr, ErrMaintenance) {
			d.logger.Warn("交易所维护中",
				zap.String("operation", operation),
				zap.Error(normalizedErr),
			)
			return normalizedErr
		}

		if !retry || attempt >= d.cfg.Retry.MaxAttempts {
			d.logger.Error("交易所调用失败",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Duration("latency", duration),
				zap.Error(normalizedErr),
			)
			return normalizedErr
		}

		wait := delay
		if wait > maxDelay {
			wait = maxDelay
		}

		d.logger.Warn("交易所调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(normalizedErr),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func (d *Downloader) classifyError(err error) (error, bool) {
	if err == nil {
		return nil, false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err, false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return err, true
		case ccxt.OnMaintenanceErrType:
			message := strings.TrimSpace(ccxtErr.Message)
			if message == "" {
				message = "exchange under maintenance"
			}
			return fmt.Errorf("%w: %s", ErrMaintenance, message), false
		default:
			return err, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return err, true
	}

	return err, false
}
