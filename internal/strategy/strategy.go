package strategy

import (
	"fmt"
	"strings"

	"quantlab/internal/series"
)

// Generator 为信号生成器的统一契约：输入价格序列，输出逐index对齐、
// 取值在 {-1,0,1} 的信号序列，且只允许使用向后看的滚动窗口。
type Generator interface {
	Name() string
	Generate(prices *series.PriceSeries) (series.SignalSeries, error)
}

// Params 汇总各策略构造所需的可调参数。
type Params struct {
	Lookback    int
	Threshold   float64
	ShortWindow int
	LongWindow  int
}

// New 按名称构造策略实例。
func New(name string, params Params) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mean_reversion":
		return NewMeanReversion(params.Lookback, params.Threshold)
	case "momentum":
		return NewMomentum(params.Lookback, params.Threshold)
	case "crossover", "ma_crossover":
		return NewCrossover(params.ShortWindow, params.LongWindow)
	case "breakout":
		return NewBreakout(params.Lookback)
	default:
		return nil, fmt.Errorf("%w: 未知策略 %q", series.ErrInvalidInput, name)
	}
}

// 滚动标准差低于该阈值的窗口视为零方差，对应信号保持中性。
const zeroStdEpsilon = 1e-12

func validatePrices(prices *series.PriceSeries, minLen int) error {
	if prices == nil {
		return fmt.Errorf("%w: 价格序列不能为空", series.ErrInvalidInput)
	}
	if err := prices.Validate(); err != nil {
		return err
	}
	if prices.Len() < minLen {
		return fmt.Errorf("%w: 价格序列长度%d小于所需窗口%d", series.ErrInvalidInput, prices.Len(), minLen)
	}
	return nil
}
