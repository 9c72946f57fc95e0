package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "quantlab"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "research")

	v.SetDefault("data.source", "synthetic")
	v.SetDefault("data.csv_path", "")
	v.SetDefault("data.synthetic.periods", 252)
	v.SetDefault("data.synthetic.initial_price", 100.0)
	v.SetDefault("data.synthetic.drift", 0.0001)
	v.SetDefault("data.synthetic.volatility", 0.02)
	v.SetDefault("data.synthetic.seed", 42)
	v.SetDefault("data.exchange.name", "binanceusdm")
	v.SetDefault("data.exchange.market", "BTC/USDT:USDT")
	v.SetDefault("data.exchange.timeframe", "1d")
	v.SetDefault("data.exchange.limit", 252)
	v.SetDefault("data.exchange.use_sandbox", false)
	v.SetDefault("data.exchange.retry.max_attempts", 5)
	v.SetDefault("data.exchange.retry.min_delay", "500ms")
	v.SetDefault("data.exchange.retry.max_delay", "5s")

	v.SetDefault("strategies.enabled", []string{"mean_reversion", "momentum"})
	v.SetDefault("strategies.mean_reversion.lookback", 20)
	v.SetDefault("strategies.mean_reversion.entry_threshold", 2.0)
	v.SetDefault("strategies.momentum.lookback", 20)
	v.SetDefault("strategies.momentum.threshold", 0.02)
	v.SetDefault("strategies.crossover.short_window", 20)
	v.SetDefault("strategies.crossover.long_window", 50)
	v.SetDefault("strategies.breakout.lookback", 20)
	v.SetDefault("strategies.volatility_filter.enabled", false)
	v.SetDefault("strategies.volatility_filter.lookback", 20)
	v.SetDefault("strategies.volatility_filter.threshold_std", 1.5)

	v.SetDefault("backtest.initial_capital", 10000.0)
	v.SetDefault("backtest.risk_free_rate", 0.0)
	v.SetDefault("backtest.periods_per_year", 252)

	v.SetDefault("sweep.enabled", false)
	v.SetDefault("sweep.strategy", "momentum")
	v.SetDefault("sweep.lookbacks", []int{10, 20, 40})
	v.SetDefault("sweep.thresholds", []float64{0.01, 0.02, 0.05})
	v.SetDefault("sweep.concurrency", 4)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4.1")
	v.SetDefault("openai.timeout", "15s")

	v.SetDefault("database.path", "data/quantlab.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
