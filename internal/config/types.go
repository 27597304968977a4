package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Factors  []string       `mapstructure:"factors"`
	Data     DataConfig     `mapstructure:"data"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// BacktestConfig 控制回测窗口与评价参数。
type BacktestConfig struct {
	StartDate         time.Time          `mapstructure:"start_date"`
	EndDate           time.Time          `mapstructure:"end_date"`
	FrequencyInterval string             `mapstructure:"frequency_interval"`
	FreqPosition      string             `mapstructure:"freq_position"`
	SubportfolioNum   int                `mapstructure:"subportfolio_num"`
	ICLagN            []int              `mapstructure:"ic_lag_n"`
	Period            string             `mapstructure:"period"`
	Winlen            int                `mapstructure:"winlen"`
	TimeLabel         bool               `mapstructure:"time_label"`
	Benchmark         map[string]float64 `mapstructure:"benchmark"`
}

// DataConfig 描述行情数据来源。source 取 csv 或 ccxt。
type DataConfig struct {
	Source string     `mapstructure:"source"`
	CSV    CSVConfig  `mapstructure:"csv"`
	CCXT   CCXTConfig `mapstructure:"ccxt"`
}

// CSVConfig 给出本地行情表的路径，各表共享日期列与标的列。
type CSVConfig struct {
	Open   string `mapstructure:"open"`
	High   string `mapstructure:"high"`
	Low    string `mapstructure:"low"`
	Close  string `mapstructure:"close"`
	Volume string `mapstructure:"volume"`
}

// CCXTConfig 描述交易所历史行情下载参数。
type CCXTConfig struct {
	Exchange   string        `mapstructure:"exchange"`
	Symbols    []string      `mapstructure:"symbols"`
	Timeframe  string        `mapstructure:"timeframe"`
	Limit      int64         `mapstructure:"limit"`
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	UseSandbox bool          `mapstructure:"use_sandbox"`
	Retry      RetryConfig   `mapstructure:"retry"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RetryConfig 统一控制重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Backtest.StartDate.IsZero() {
		err = multierr.Append(err, errors.New("backtest.start_date 不能为空"))
	}
	if c.Backtest.EndDate.IsZero() {
		err = multierr.Append(err, errors.New("backtest.end_date 不能为空"))
	}
	if !c.Backtest.StartDate.IsZero() && !c.Backtest.EndDate.IsZero() &&
		c.Backtest.EndDate.Before(c.Backtest.StartDate) {
		err = multierr.Append(err, errors.New("backtest.end_date 不能早于 start_date"))
	}
	switch c.Backtest.FreqPosition {
	case "start", "end":
	default:
		err = multierr.Append(err, errors.New("backtest.freq_position 必须为 start 或 end"))
	}
	if c.Backtest.SubportfolioNum <= 0 {
		err = multierr.Append(err, errors.New("backtest.subportfolio_num 必须大于0"))
	}
	for _, lag := range c.Backtest.ICLagN {
		if lag <= 0 {
			err = multierr.Append(err, errors.New("backtest.ic_lag_n 各项必须大于0"))
			break
		}
	}
	if c.Backtest.Winlen <= 0 {
		err = multierr.Append(err, errors.New("backtest.winlen 必须大于0"))
	}
	for name, w := range c.Backtest.Benchmark {
		if w < 0 {
			err = multierr.Append(err, fmt.Errorf("backtest.benchmark.%s 权重不能为负", name))
		}
	}
	if len(c.Factors) == 0 {
		err = multierr.Append(err, errors.New("factors 至少包含一个因子名"))
	}

	switch strings.ToLower(c.Data.Source) {
	case "csv":
		if c.Data.CSV.Close == "" {
			err = multierr.Append(err, errors.New("data.csv.close 不能为空"))
		}
	case "ccxt":
		if c.Data.CCXT.Exchange == "" {
			err = multierr.Append(err, errors.New("data.ccxt.exchange 不能为空"))
		}
		if len(c.Data.CCXT.Symbols) == 0 {
			err = multierr.Append(err, errors.New("data.ccxt.symbols 至少包含一个交易对"))
		}
		if c.Data.CCXT.Timeframe == "" {
			err = multierr.Append(err, errors.New("data.ccxt.timeframe 不能为空"))
		}
		if c.Data.CCXT.Limit <= 0 {
			err = multierr.Append(err, errors.New("data.ccxt.limit 必须大于0"))
		}
		if c.Data.CCXT.Retry.MaxAttempts <= 0 {
			err = multierr.Append(err, errors.New("data.ccxt.retry.max_attempts 必须大于0"))
		}
		if c.Data.CCXT.Retry.MinDelay <= 0 || c.Data.CCXT.Retry.MaxDelay <= 0 {
			err = multierr.Append(err, errors.New("data.ccxt.retry.delay 必须为正"))
		}
		if c.Data.CCXT.Retry.MinDelay > c.Data.CCXT.Retry.MaxDelay {
			err = multierr.Append(err, errors.New("data.ccxt.retry.min_delay 不能大于 max_delay"))
		}
	default:
		err = multierr.Append(err, errors.New("data.source 必须为 csv 或 ccxt"))
	}

	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
