package strategy

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"quantlab/internal/series"
)

// 波动率基线窗口取 lookback 的倍数，避免用全样本均值引入前视偏差。
const baselineWindowMultiple = 5

// ApplyVolatilityFilter 在高波动阶段将信号强制置0。
//
// 以对数收益的滚动标准差衡量当前波动率，与其自身更长窗口的滚动均值作为
// 基线比较；当前波动率超过 thresholdStd 倍基线时对应周期转为空仓。历史
// 不足以建立基线的周期不做过滤，原信号透传。
func ApplyVolatilityFilter(signals series.SignalSeries, prices *series.PriceSeries, lookback int, thresholdStd float64) series.SignalSeries {
	filtered := append(series.SignalSeries(nil), signals...)
	if prices == nil || lookback < 2 || thresholdStd <= 0 {
		return filtered
	}
	if prices.Len() != len(signals) || prices.Len() < lookback*baselineWindowMultiple+1 {
		return filtered
	}

	// returns[i] 对应价格index i+1。
	returns := make([]float64, prices.Len()-1)
	for i := 1; i < prices.Len(); i++ {
		returns[i-1] = math.Log(prices.Prices[i] / prices.Prices[i-1])
	}

	rollingVol := talib.StdDev(returns, lookback, 1.0)
	baseline := talib.Sma(rollingVol, lookback*baselineWindowMultiple)

	baselineStart := lookback - 1 + lookback*baselineWindowMultiple - 1
	for i := baselineStart; i < len(returns); i++ {
		if baseline[i] <= 0 {
			continue
		}
		if rollingVol[i] > thresholdStd*baseline[i] {
			filtered[i+1] = series.SignalFlat
		}
	}
	return filtered
}
