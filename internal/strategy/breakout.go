package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"quantlab/internal/series"
)

// Breakout 通道突破策略：价格突破前一周期的滚动高点做多，跌破滚动低点做空。
type Breakout struct {
	lookback int
}

// NewBreakout 构造突破策略。
func NewBreakout(lookback int) (*Breakout, error) {
	if lookback < 2 {
		return nil, fmt.Errorf("%w: lookback %d 必须不小于2", series.ErrInvalidInput, lookback)
	}
	return &Breakout{lookback: lookback}, nil
}

// Name 返回策略标识。
func (s *Breakout) Name() string { return "breakout" }

// Generate 将当期价格与上一周期的滚动极值比较生成信号。
// 通道整体滞后一个周期，当期价格不参与自身的通道计算。
func (s *Breakout) Generate(prices *series.PriceSeries) (series.SignalSeries, error) {
	if err := validatePrices(prices, s.lookback+1); err != nil {
		return nil, err
	}

	rollingMax := talib.Max(prices.Prices, s.lookback)
	rollingMin := talib.Min(prices.Prices, s.lookback)

	signals := make(series.SignalSeries, prices.Len())
	for t := s.lookback; t < prices.Len(); t++ {
		switch {
		case prices.Prices[t] > rollingMax[t-1]:
			signals[t] = series.SignalLong
		case prices.Prices[t] < rollingMin[t-1]:
			signals[t] = series.SignalShort
		}
	}
	return signals, nil
}
