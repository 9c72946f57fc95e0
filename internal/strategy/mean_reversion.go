package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"quantlab/internal/series"
)

// MeanReversion 基于滚动z-score的均值回归策略：价格显著低于均值时做多，
// 显著高于均值时做空。
type MeanReversion struct {
	lookback       int
	entryThreshold float64
}

// NewMeanReversion 构造均值回归策略。
func NewMeanReversion(lookback int, entryThreshold float64) (*MeanReversion, error) {
	if lookback < 2 {
		return nil, fmt.Errorf("%w: lookback %d 必须不小于2", series.ErrInvalidInput, lookback)
	}
	if entryThreshold <= 0 {
		return nil, fmt.Errorf("%w: entry_threshold %f 必须为正", series.ErrInvalidInput, entryThreshold)
	}
	return &MeanReversion{lookback: lookback, entryThreshold: entryThreshold}, nil
}

// Name 返回策略标识。
func (s *MeanReversion) Name() string { return "mean_reversion" }

// Generate 计算滚动均值与标准差得到z-score并生成信号。
// 前 lookback-1 个周期没有完整窗口，信号为中性；零方差窗口同样保持中性。
func (s *MeanReversion) Generate(prices *series.PriceSeries) (series.SignalSeries, error) {
	if err := validatePrices(prices, s.lookback); err != nil {
		return nil, err
	}

	means := talib.Sma(prices.Prices, s.lookback)
	stds := talib.StdDev(prices.Prices, s.lookback, 1.0)

	signals := make(series.SignalSeries, prices.Len())
	for t := s.lookback - 1; t < prices.Len(); t++ {
		if stds[t] < zeroStdEpsilon {
			continue
		}
		z := series.SafeDivide(prices.Prices[t]-means[t], stds[t])
		switch {
		case z < -s.entryThreshold:
			signals[t] = series.SignalLong
		case z > s.entryThreshold:
			signals[t] = series.SignalShort
		}
	}
	return signals, nil
}
