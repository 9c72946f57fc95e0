package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"quantlab/internal/series"
)

// Crossover 双均线策略：短均线在长均线之上视为多头格局，反之为空头格局。
type Crossover struct {
	shortWindow int
	longWindow  int
}

// NewCrossover 构造双均线策略。
func NewCrossover(shortWindow, longWindow int) (*Crossover, error) {
	if shortWindow < 2 {
		return nil, fmt.Errorf("%w: short_window %d 必须不小于2", series.ErrInvalidInput, shortWindow)
	}
	if shortWindow >= longWindow {
		return nil, fmt.Errorf("%w: short_window %d 必须小于 long_window %d", series.ErrInvalidInput, shortWindow, longWindow)
	}
	return &Crossover{shortWindow: shortWindow, longWindow: longWindow}, nil
}

// Name 返回策略标识。
func (s *Crossover) Name() string { return "crossover" }

// Generate 比较短长两条简单均线生成信号，长均线窗口未满前保持中性。
func (s *Crossover) Generate(prices *series.PriceSeries) (series.SignalSeries, error) {
	if err := validatePrices(prices, s.longWindow); err != nil {
		return nil, err
	}

	shortSma := talib.Sma(prices.Prices, s.shortWindow)
	longSma := talib.Sma(prices.Prices, s.longWindow)

	signals := make(series.SignalSeries, prices.Len())
	for t := s.longWindow - 1; t < prices.Len(); t++ {
		switch {
		case shortSma[t] > longSma[t]:
			signals[t] = series.SignalLong
		case shortSma[t] < longSma[t]:
			signals[t] = series.SignalShort
		}
	}
	return signals, nil
}
