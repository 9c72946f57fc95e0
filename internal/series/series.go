package series

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput 表示输入数据不满足前置条件，调用方修正输入后重试。
var ErrInvalidInput = errors.New("invalid input")

// Signal 表示离散交易意图：+1 做多、-1 做空、0 空仓。
type Signal int8

const (
	SignalShort Signal = -1
	SignalFlat  Signal = 0
	SignalLong  Signal = 1
)

// Valid 判断信号是否在 {-1,0,1} 取值域内。
func (s Signal) Valid() bool {
	return s == SignalShort || s == SignalFlat || s == SignalLong
}

// SignalSeries 为与价格序列逐index对齐的信号序列。
type SignalSeries []Signal

// Validate 校验所有信号均在取值域内。
func (s SignalSeries) Validate() error {
	for i, v := range s {
		if !v.Valid() {
			return fmt.Errorf("%w: 信号序列第%d个值%d超出{-1,0,1}", ErrInvalidInput, i, v)
		}
	}
	return nil
}

// PriceSeries 将价格数据拆分为时间与价格两条平行序列，按时间升序排列。
type PriceSeries struct {
	Timestamps []time.Time
	Prices     []float64
}

// Len 返回序列长度。
func (p *PriceSeries) Len() int {
	return len(p.Prices)
}

// Validate 校验价格序列的基本不变量：长度至少为2、时间严格递增、价格为正。
// 零或负价格会破坏百分比收益计算，这里直接拒绝而非静默处理。
func (p *PriceSeries) Validate() error {
	if len(p.Prices) != len(p.Timestamps) {
		return fmt.Errorf("%w: 时间与价格长度不一致 (%d vs %d)", ErrInvalidInput, len(p.Timestamps), len(p.Prices))
	}
	if len(p.Prices) < 2 {
		return fmt.Errorf("%w: 价格序列长度%d不足2", ErrInvalidInput, len(p.Prices))
	}
	for i, price := range p.Prices {
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return fmt.Errorf("%w: 第%d个价格%f非正或非法", ErrInvalidInput, i, price)
		}
	}
	for i := 1; i < len(p.Timestamps); i++ {
		if !p.Timestamps[i].After(p.Timestamps[i-1]) {
			return fmt.Errorf("%w: 第%d个时间戳%s未严格递增", ErrInvalidInput, i, p.Timestamps[i].Format(time.RFC3339))
		}
	}
	return nil
}

// Last 返回序列最后一个值，若为空则返回 NaN。
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// SafeDivide 除法保护，除数为0时返回0。
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
