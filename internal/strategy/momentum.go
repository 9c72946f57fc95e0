package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"quantlab/internal/series"
)

// Momentum 基于变化率(ROC)的动量策略：涨幅超过阈值做多，跌幅超过阈值做空。
type Momentum struct {
	lookback  int
	threshold float64
}

// NewMomentum 构造动量策略。
func NewMomentum(lookback int, threshold float64) (*Momentum, error) {
	if lookback < 1 {
		return nil, fmt.Errorf("%w: lookback %d 必须为正", series.ErrInvalidInput, lookback)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold %f 必须为正", series.ErrInvalidInput, threshold)
	}
	return &Momentum{lookback: lookback, threshold: threshold}, nil
}

// Name 返回策略标识。
func (s *Momentum) Name() string { return "momentum" }

// Generate 计算 roc[t] = price[t]/price[t-lookback] - 1 并生成信号。
// 前 lookback 个周期没有可比价格，信号为中性。
func (s *Momentum) Generate(prices *series.PriceSeries) (series.SignalSeries, error) {
	if err := validatePrices(prices, s.lookback+1); err != nil {
		return nil, err
	}

	roc := talib.Rocp(prices.Prices, s.lookback)

	signals := make(series.SignalSeries, prices.Len())
	for t := s.lookback; t < prices.Len(); t++ {
		switch {
		case roc[t] > s.threshold:
			signals[t] = series.SignalLong
		case roc[t] < -s.threshold:
			signals[t] = series.SignalShort
		}
	}
	return signals, nil
}
