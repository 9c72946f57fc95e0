package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了研究流水线所需的全部配置项。
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Data       DataConfig       `mapstructure:"data"`
	Strategies StrategiesConfig `mapstructure:"strategies"`
	Backtest   BacktestConfig   `mapstructure:"backtest"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// DataConfig 描述价格数据来源。
type DataConfig struct {
	Source    string          `mapstructure:"source"` // synthetic / csv / exchange
	CSVPath   string          `mapstructure:"csv_path"`
	Synthetic SyntheticConfig `mapstructure:"synthetic"`
	Exchange  ExchangeConfig  `mapstructure:"exchange"`
}

// SyntheticConfig 控制合成价格生成。
type SyntheticConfig struct {
	Periods      int     `mapstructure:"periods"`
	InitialPrice float64 `mapstructure:"initial_price"`
	Drift        float64 `mapstructure:"drift"`
	Volatility   float64 `mapstructure:"volatility"`
	Seed         int64   `mapstructure:"seed"`
}

// ExchangeConfig 描述交易所行情拉取参数。
type ExchangeConfig struct {
	Name       string      `mapstructure:"name"`
	Market     string      `mapstructure:"market"`
	APIKey     string      `mapstructure:"api_key"`
	APISecret  string      `mapstructure:"api_secret"`
	UseSandbox bool        `mapstructure:"use_sandbox"`
	Timeframe  string      `mapstructure:"timeframe"`
	Limit      int         `mapstructure:"limit"`
	Retry      RetryConfig `mapstructure:"retry"`
}

// RetryConfig 统一控制重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// StrategiesConfig 汇总各策略参数。
type StrategiesConfig struct {
	Enabled          []string               `mapstructure:"enabled"`
	MeanReversion    MeanReversionConfig    `mapstructure:"mean_reversion"`
	Momentum         MomentumConfig         `mapstructure:"momentum"`
	Crossover        CrossoverConfig        `mapstructure:"crossover"`
	Breakout         BreakoutConfig         `mapstructure:"breakout"`
	VolatilityFilter VolatilityFilterConfig `mapstructure:"volatility_filter"`
}

// MeanReversionConfig 控制均值回归策略。
type MeanReversionConfig struct {
	Lookback       int     `mapstructure:"lookback"`
	EntryThreshold float64 `mapstructure:"entry_threshold"`
}

// MomentumConfig 控制动量策略。
type MomentumConfig struct {
	Lookback  int     `mapstructure:"lookback"`
	Threshold float64 `mapstructure:"threshold"`
}

// CrossoverConfig 控制双均线策略。
type CrossoverConfig struct {
	ShortWindow int `mapstructure:"short_window"`
	LongWindow  int `mapstructure:"long_window"`
}

// BreakoutConfig 控制通道突破策略。
type BreakoutConfig struct {
	Lookback int `mapstructure:"lookback"`
}

// VolatilityFilterConfig 控制波动率过滤。
type VolatilityFilterConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Lookback     int     `mapstructure:"lookback"`
	ThresholdStd float64 `mapstructure:"threshold_std"`
}

// BacktestConfig 控制回测与指标口径。
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
	PeriodsPerYear int     `mapstructure:"periods_per_year"`
}

// SweepConfig 控制参数扫描。
type SweepConfig struct {
	Enabled     bool      `mapstructure:"enabled"`
	Strategy    string    `mapstructure:"strategy"`
	Lookbacks   []int     `mapstructure:"lookbacks"`
	Thresholds  []float64 `mapstructure:"thresholds"`
	Concurrency int       `mapstructure:"concurrency"`
}

// OpenAIConfig 描述大模型调用参数，api_key 为空时解读功能关闭。
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 管理日志行为。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 检查配置合法性，汇总全部问题后一次性返回。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}

	switch strings.ToLower(c.Data.Source) {
	case "synthetic":
		if c.Data.Synthetic.Periods < 2 {
			err = multierr.Append(err, errors.New("data.synthetic.periods 必须不小于2"))
		}
		if c.Data.Synthetic.InitialPrice <= 0 {
			err = multierr.Append(err, errors.New("data.synthetic.initial_price 必须为正"))
		}
		if c.Data.Synthetic.Volatility < 0 {
			err = multierr.Append(err, errors.New("data.synthetic.volatility 不能为负"))
		}
	case "csv":
		if c.Data.CSVPath == "" {
			err = multierr.Append(err, errors.New("data.csv_path 不能为空"))
		}
	case "exchange":
		if c.Data.Exchange.Name == "" {
			err = multierr.Append(err, errors.New("data.exchange.name 不能为空"))
		}
		if c.Data.Exchange.Market == "" {
			err = multierr.Append(err, errors.New("data.exchange.market 不能为空"))
		}
		if c.Data.Exchange.Limit < 2 {
			err = multierr.Append(err, errors.New("data.exchange.limit 必须不小于2"))
		}
		if c.Data.Exchange.Retry.MaxAttempts <= 0 {
			err = multierr.Append(err, errors.New("data.exchange.retry.max_attempts 必须大于0"))
		}
		if c.Data.Exchange.Retry.MinDelay <= 0 || c.Data.Exchange.Retry.MaxDelay <= 0 {
			err = multierr.Append(err, errors.New("data.exchange.retry.delay 必须为正"))
		}
		if c.Data.Exchange.Retry.MinDelay > c.Data.Exchange.Retry.MaxDelay {
			err = multierr.Append(err, errors.New("data.exchange.retry.min_delay 不能大于 max_delay"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("data.source %q 必须为 synthetic/csv/exchange 之一", c.Data.Source))
	}

	if len(c.Strategies.Enabled) == 0 {
		err = multierr.Append(err, errors.New("strategies.enabled 至少启用一个策略"))
	}
	if c.Strategies.MeanReversion.Lookback < 2 {
		err = multierr.Append(err, errors.New("strategies.mean_reversion.lookback 必须不小于2"))
	}
	if c.Strategies.MeanReversion.EntryThreshold <= 0 {
		err = multierr.Append(err, errors.New("strategies.mean_reversion.entry_threshold 必须为正"))
	}
	if c.Strategies.Momentum.Lookback < 1 {
		err = multierr.Append(err, errors.New("strategies.momentum.lookback 必须为正"))
	}
	if c.Strategies.Momentum.Threshold <= 0 {
		err = multierr.Append(err, errors.New("strategies.momentum.threshold 必须为正"))
	}
	if c.Strategies.Crossover.ShortWindow < 2 {
		err = multierr.Append(err, errors.New("strategies.crossover.short_window 必须不小于2"))
	}
	if c.Strategies.Crossover.ShortWindow >= c.Strategies.Crossover.LongWindow {
		err = multierr.Append(err, errors.New("strategies.crossover.short_window 必须小于 long_window"))
	}
	if c.Strategies.Breakout.Lookback < 2 {
		err = multierr.Append(err, errors.New("strategies.breakout.lookback 必须不小于2"))
	}
	if c.Strategies.VolatilityFilter.Enabled {
		if c.Strategies.VolatilityFilter.Lookback < 2 {
			err = multierr.Append(err, errors.New("strategies.volatility_filter.lookback 必须不小于2"))
		}
		if c.Strategies.VolatilityFilter.ThresholdStd <= 0 {
			err = multierr.Append(err, errors.New("strategies.volatility_filter.threshold_std 必须为正"))
		}
	}

	if c.Backtest.InitialCapital <= 0 {
		err = multierr.Append(err, errors.New("backtest.initial_capital 必须为正"))
	}
	if c.Backtest.RiskFreeRate < 0 {
		err = multierr.Append(err, errors.New("backtest.risk_free_rate 不能为负"))
	}
	if c.Backtest.PeriodsPerYear <= 0 {
		err = multierr.Append(err, errors.New("backtest.periods_per_year 必须大于0"))
	}

	if c.Sweep.Enabled {
		if c.Sweep.Strategy == "" {
			err = multierr.Append(err, errors.New("sweep.strategy 不能为空"))
		}
		if len(c.Sweep.Lookbacks) == 0 {
			err = multierr.Append(err, errors.New("sweep.lookbacks 至少包含一个窗口"))
		}
		if len(c.Sweep.Thresholds) == 0 {
			err = multierr.Append(err, errors.New("sweep.thresholds 至少包含一个阈值"))
		}
		if c.Sweep.Concurrency <= 0 {
			err = multierr.Append(err, errors.New("sweep.concurrency 必须大于0"))
		}
	}

	if c.OpenAI.APIKey != "" {
		if c.OpenAI.Model == "" {
			err = multierr.Append(err, errors.New("openai.model 不能为空"))
		}
		if c.OpenAI.Timeout <= 0 {
			err = multierr.Append(err, errors.New("openai.timeout 必须大于0"))
		}
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
