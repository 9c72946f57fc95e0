package strategy

import (
	"errors"
	"testing"

	"quantlab/internal/series"
)

func TestNew_KnownStrategies(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		want   string
	}{
		{"mean_reversion", Params{Lookback: 20, Threshold: 2.0}, "mean_reversion"},
		{"momentum", Params{Lookback: 20, Threshold: 0.02}, "momentum"},
		{"crossover", Params{ShortWindow: 20, LongWindow: 50}, "crossover"},
		{"MA_Crossover", Params{ShortWindow: 20, LongWindow: 50}, "crossover"},
		{"breakout", Params{Lookback: 20}, "breakout"},
	}

	for _, tc := range cases {
		gen, err := New(tc.name, tc.params)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", tc.name, err)
		}
		if gen.Name() != tc.want {
			t.Errorf("New(%q).Name() = %q, want %q", tc.name, gen.Name(), tc.want)
		}
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	if _, err := New("arbitrage", Params{}); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("unknown strategy: want ErrInvalidInput, got %v", err)
	}
}
