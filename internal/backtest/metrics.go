package backtest

import "math"

// Metrics 记录回测绩效指标。
type Metrics struct {
	SharpeRatio      float64
	MaxDrawdown      float64
	TotalReturn      float64
	AnnualizedReturn float64
}

// MetricsOptions 控制指标计算口径。
type MetricsOptions struct {
	RiskFreeRate   float64 // 年化无风险利率
	PeriodsPerYear int     // 日线数据取252
}

func (o MetricsOptions) normalize() MetricsOptions {
	opts := o
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = 252
	}
	return opts
}

// ComputeMetrics 从回测结果计算绩效指标。
//
// 纯函数，对同一 Result 重复调用结果一致。收益方差为0时夏普比率无定义，
// 返回 NaN 哨兵值而非报错或除零。
func ComputeMetrics(result *Result, opts MetricsOptions) Metrics {
	opts = opts.normalize()

	if result == nil || len(result.Records) == 0 {
		return Metrics{
			SharpeRatio:      math.NaN(),
			MaxDrawdown:      math.NaN(),
			TotalReturn:      math.NaN(),
			AnnualizedReturn: math.NaN(),
		}
	}

	totalReturn := math.NaN()
	if result.InitialCapital > 0 {
		totalReturn = result.FinalEquity()/result.InitialCapital - 1
	}

	// 首个周期为种子周期，不计入年化折算。
	nPeriods := len(result.Records) - 1
	annualized := math.NaN()
	if nPeriods > 0 && !math.IsNaN(totalReturn) {
		years := float64(nPeriods) / float64(opts.PeriodsPerYear)
		annualized = math.Pow(1+totalReturn, 1/years) - 1
	}

	return Metrics{
		SharpeRatio:      computeSharpe(result.StrategyReturns()[1:], opts),
		MaxDrawdown:      computeDrawdown(result.EquityCurve()),
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualized,
	}
}

func computeDrawdown(equity []float64) float64 {
	var peak float64
	maxDD := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (v - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	// 空头遭遇单周期涨幅超过100%时权益可为负，回撤按全额亏损1封顶。
	return math.Min(math.Abs(maxDD), 1)
}

func computeSharpe(returns []float64, opts MetricsOptions) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}

	// 年化无风险利率折算为单周期利率。
	rfPeriodic := math.Pow(1+opts.RiskFreeRate, 1/float64(opts.PeriodsPerYear)) - 1

	mean := 0.0
	for _, r := range returns {
		mean += r - rfPeriodic
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - rfPeriodic - mean
		variance += diff * diff
	}
	if len(returns) > 1 {
		variance /= float64(len(returns) - 1)
	}

	std := math.Sqrt(variance)
	if std == 0 {
		return math.NaN()
	}

	return mean / std * math.Sqrt(float64(opts.PeriodsPerYear))
}
