package strategy

import (
	"errors"
	"math"
	"testing"

	"quantlab/internal/series"
)

func trendingPrices(start, ratePerPeriod float64, n int) *series.PriceSeries {
	values := make([]float64, n)
	price := start
	for i := range values {
		values[i] = price
		price *= 1 + ratePerPeriod
	}
	return makePrices(values)
}

func TestMomentum_TrendingSeries(t *testing.T) {
	gen, err := NewMomentum(5, 0.02)
	if err != nil {
		t.Fatalf("NewMomentum returned error: %v", err)
	}

	up, err := gen.Generate(trendingPrices(100, 0.02, 20))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	assertDomain(t, up)
	assertWarmupFlat(t, up, 5)
	for i := 5; i < len(up); i++ {
		if up[i] != series.SignalLong {
			t.Errorf("uptrend signal[%d] = %d, want +1", i, up[i])
		}
	}

	down, err := gen.Generate(trendingPrices(100, -0.02, 20))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for i := 5; i < len(down); i++ {
		if down[i] != series.SignalShort {
			t.Errorf("downtrend signal[%d] = %d, want -1", i, down[i])
		}
	}
}

func TestMomentum_FlatSeriesNeutral(t *testing.T) {
	gen, err := NewMomentum(5, 0.02)
	if err != nil {
		t.Fatalf("NewMomentum returned error: %v", err)
	}

	signals, err := gen.Generate(constantPrices(100, 20))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for i, s := range signals {
		if s != series.SignalFlat {
			t.Errorf("flat series: signal[%d] = %d, want 0", i, s)
		}
	}
}

func TestMomentum_ThresholdBoundary(t *testing.T) {
	// 5期累计涨幅约1%，低于2%阈值，应保持中性。
	gen, err := NewMomentum(5, 0.02)
	if err != nil {
		t.Fatalf("NewMomentum returned error: %v", err)
	}

	signals, err := gen.Generate(trendingPrices(100, 0.002, 20))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	cumulative := math.Pow(1.002, 5) - 1
	if cumulative >= 0.02 {
		t.Fatalf("test setup broken: cumulative roc %f not below threshold", cumulative)
	}
	for i, s := range signals {
		if s != series.SignalFlat {
			t.Errorf("sub-threshold trend: signal[%d] = %d, want 0", i, s)
		}
	}
}

func TestMomentum_InvalidParams(t *testing.T) {
	if _, err := NewMomentum(0, 0.02); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("zero lookback: want ErrInvalidInput, got %v", err)
	}
	if _, err := NewMomentum(5, -0.1); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("negative threshold: want ErrInvalidInput, got %v", err)
	}
}
