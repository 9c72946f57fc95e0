package backtest

import (
	"fmt"
	"time"

	"quantlab/internal/series"
)

// Record 为单个周期的回测明细。
type Record struct {
	Timestamp      time.Time
	Price          float64
	Signal         series.Signal
	Position       series.Signal
	Return         float64
	StrategyReturn float64
	Equity         float64
}

// Result 汇总回测结果，返回后不再修改。
type Result struct {
	InitialCapital float64
	Records        []Record
}

// FinalEquity 返回期末净值。
func (r *Result) FinalEquity() float64 {
	if len(r.Records) == 0 {
		return r.InitialCapital
	}
	return series.Last(r.EquityCurve())
}

// EquityCurve 返回净值曲线副本。
func (r *Result) EquityCurve() []float64 {
	curve := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		curve[i] = rec.Equity
	}
	return curve
}

// StrategyReturns 返回策略收益序列副本。
func (r *Result) StrategyReturns() []float64 {
	returns := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		returns[i] = rec.StrategyReturn
	}
	return returns
}

// Run 对信号序列执行向量化回测。
//
// 为避免前视偏差，信号统一滞后一个周期生效：t 时刻的信号决定 t+1 时刻持仓，
// 首个周期无可用信号，持仓为0。净值按 (1+策略收益) 逐期复利累乘。
// 函数为纯函数，输入校验失败时返回 series.ErrInvalidInput 且不产生部分结果。
func Run(prices *series.PriceSeries, signals series.SignalSeries, initialCapital float64) (*Result, error) {
	if prices == nil {
		return nil, fmt.Errorf("%w: 价格序列不能为空", series.ErrInvalidInput)
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if len(signals) != prices.Len() {
		return nil, fmt.Errorf("%w: 信号长度%d与价格长度%d不一致", series.ErrInvalidInput, len(signals), prices.Len())
	}
	if err := signals.Validate(); err != nil {
		return nil, err
	}
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: 初始资金%f必须为正", series.ErrInvalidInput, initialCapital)
	}

	records := make([]Record, prices.Len())
	equity := initialCapital
	for t := 0; t < prices.Len(); t++ {
		rec := Record{
			Timestamp: prices.Timestamps[t],
			Price:     prices.Prices[t],
			Signal:    signals[t],
		}
		if t > 0 {
			rec.Position = signals[t-1]
			rec.Return = prices.Prices[t]/prices.Prices[t-1] - 1
			rec.StrategyReturn = float64(rec.Position) * rec.Return
			equity *= 1 + rec.StrategyReturn
		}
		rec.Equity = equity
		records[t] = rec
	}

	return &Result{
		InitialCapital: initialCapital,
		Records:        records,
	}, nil
}
