package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/series"
)

// 合成序列统一从该日期起按工作日排布，便于复现。
var syntheticStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// GenerateSynthetic 按几何随机游走生成合成价格序列。
// 相同种子与参数生成结果完全一致，用于示例与测试。
func GenerateSynthetic(cfg config.SyntheticConfig) (*series.PriceSeries, error) {
	if cfg.Periods < 2 {
		return nil, fmt.Errorf("%w: periods %d 必须不小于2", series.ErrInvalidInput, cfg.Periods)
	}
	if cfg.InitialPrice <= 0 {
		return nil, fmt.Errorf("%w: initial_price %f 必须为正", series.ErrInvalidInput, cfg.InitialPrice)
	}
	if cfg.Volatility < 0 {
		return nil, fmt.Errorf("%w: volatility %f 不能为负", series.ErrInvalidInput, cfg.Volatility)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	prices := &series.PriceSeries{
		Timestamps: make([]time.Time, cfg.Periods),
		Prices:     make([]float64, cfg.Periods),
	}

	ts := syntheticStart
	cumulative := 0.0
	for i := 0; i < cfg.Periods; i++ {
		for ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
			ts = ts.AddDate(0, 0, 1)
		}
		cumulative += cfg.Drift + cfg.Volatility*rng.NormFloat64()
		prices.Timestamps[i] = ts
		prices.Prices[i] = cfg.InitialPrice * math.Exp(cumulative)
		ts = ts.AddDate(0, 0, 1)
	}

	return prices, nil
}
