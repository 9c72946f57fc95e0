package dataset

import (
	"errors"
	"testing"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/series"
)

func syntheticConfig() config.SyntheticConfig {
	return config.SyntheticConfig{
		Periods:      100,
		InitialPrice: 100,
		Drift:        0.0001,
		Volatility:   0.02,
		Seed:         42,
	}
}

func TestGenerateSynthetic_Deterministic(t *testing.T) {
	first, err := GenerateSynthetic(syntheticConfig())
	if err != nil {
		t.Fatalf("GenerateSynthetic returned error: %v", err)
	}
	second, err := GenerateSynthetic(syntheticConfig())
	if err != nil {
		t.Fatalf("GenerateSynthetic returned error: %v", err)
	}

	if first.Len() != 100 || second.Len() != 100 {
		t.Fatalf("unexpected lengths: %d / %d", first.Len(), second.Len())
	}
	for i := range first.Prices {
		if first.Prices[i] != second.Prices[i] {
			t.Fatalf("same seed diverged at %d: %f vs %f", i, first.Prices[i], second.Prices[i])
		}
	}

	other := syntheticConfig()
	other.Seed = 7
	third, err := GenerateSynthetic(other)
	if err != nil {
		t.Fatalf("GenerateSynthetic returned error: %v", err)
	}
	same := true
	for i := range first.Prices {
		if first.Prices[i] != third.Prices[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical series")
	}
}

func TestGenerateSynthetic_ValidSeries(t *testing.T) {
	prices, err := GenerateSynthetic(syntheticConfig())
	if err != nil {
		t.Fatalf("GenerateSynthetic returned error: %v", err)
	}
	if err := prices.Validate(); err != nil {
		t.Fatalf("generated series fails validation: %v", err)
	}
	for i, ts := range prices.Timestamps {
		if ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday {
			t.Errorf("timestamp[%d] = %s falls on a weekend", i, ts.Format("2006-01-02"))
		}
	}
}

func TestGenerateSynthetic_InvalidParams(t *testing.T) {
	cfg := syntheticConfig()
	cfg.Periods = 1
	if _, err := GenerateSynthetic(cfg); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("single period: want ErrInvalidInput, got %v", err)
	}

	cfg = syntheticConfig()
	cfg.InitialPrice = 0
	if _, err := GenerateSynthetic(cfg); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("zero initial price: want ErrInvalidInput, got %v", err)
	}

	cfg = syntheticConfig()
	cfg.Volatility = -0.01
	if _, err := GenerateSynthetic(cfg); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("negative volatility: want ErrInvalidInput, got %v", err)
	}
}
