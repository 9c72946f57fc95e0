package strategy

import (
	"testing"

	"quantlab/internal/series"
)

func TestBreakout_ChannelBreaks(t *testing.T) {
	gen, err := NewBreakout(5)
	if err != nil {
		t.Fatalf("NewBreakout returned error: %v", err)
	}

	// 10个周期横盘后向上突破，再回落击穿通道下沿。
	values := []float64{100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 108, 109, 90}
	signals, err := gen.Generate(makePrices(values))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	assertDomain(t, signals)
	assertWarmupFlat(t, signals, 5)

	if signals[10] != series.SignalLong {
		t.Errorf("breakout up: signal[10] = %d, want +1", signals[10])
	}
	if signals[11] != series.SignalLong {
		t.Errorf("continued breakout: signal[11] = %d, want +1", signals[11])
	}
	if signals[12] != series.SignalShort {
		t.Errorf("breakdown: signal[12] = %d, want -1", signals[12])
	}
}

func TestBreakout_RangeBoundNeutral(t *testing.T) {
	gen, err := NewBreakout(5)
	if err != nil {
		t.Fatalf("NewBreakout returned error: %v", err)
	}

	signals, err := gen.Generate(constantPrices(100, 15))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for i, s := range signals {
		if s != series.SignalFlat {
			t.Errorf("range-bound: signal[%d] = %d, want 0", i, s)
		}
	}
}
