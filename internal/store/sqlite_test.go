package store

import (
	"context"
	"math"
	"testing"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, RunRecord{
		Strategy:       "momentum",
		Params:         map[string]interface{}{"lookback": 20, "threshold": 0.02},
		DataSource:     "synthetic",
		InitialCapital: 10000,
		FinalEquity:    10480.5,
		Periods:        252,
		Metrics: backtest.Metrics{
			TotalReturn:      0.04805,
			AnnualizedReturn: 0.0482,
			SharpeRatio:      1.21,
			MaxDrawdown:      0.061,
		},
	})
	if err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("SaveRun returned non-positive id %d", id)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns returned %d records, want 1", len(runs))
	}

	got := runs[0]
	if got.Strategy != "momentum" || got.DataSource != "synthetic" {
		t.Errorf("unexpected record identity: %+v", got)
	}
	if got.Periods != 252 || got.FinalEquity != 10480.5 {
		t.Errorf("unexpected record payload: %+v", got)
	}
	if got.Metrics.SharpeRatio != 1.21 {
		t.Errorf("sharpe = %f, want 1.21", got.Metrics.SharpeRatio)
	}
	if lb, ok := got.Params["lookback"].(float64); !ok || lb != 20 {
		t.Errorf("params round-trip broken: %v", got.Params)
	}
}

// NaN 指标应持久化为 NULL 并在读取时还原为 NaN。
func TestSaveRun_NaNMetrics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveRun(ctx, RunRecord{
		Strategy:       "mean_reversion",
		Params:         map[string]interface{}{"lookback": 20},
		DataSource:     "csv",
		InitialCapital: 10000,
		FinalEquity:    10000,
		Periods:        100,
		Metrics: backtest.Metrics{
			TotalReturn:      0,
			AnnualizedReturn: 0,
			SharpeRatio:      math.NaN(),
			MaxDrawdown:      0,
		},
	}); err != nil {
		t.Fatalf("SaveRun with NaN sharpe returned error: %v", err)
	}

	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns returned %d records, want 1", len(runs))
	}
	if !math.IsNaN(runs[0].Metrics.SharpeRatio) {
		t.Errorf("sharpe = %f, want NaN", runs[0].Metrics.SharpeRatio)
	}
}

func TestListRuns_OrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.SaveRun(ctx, RunRecord{
			Strategy:       name,
			Params:         map[string]interface{}{},
			DataSource:     "synthetic",
			InitialCapital: 1000,
			FinalEquity:    1000,
			Periods:        10,
		}); err != nil {
			t.Fatalf("SaveRun returned error: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns returned %d records, want 2", len(runs))
	}
	if runs[0].Strategy != "c" || runs[1].Strategy != "b" {
		t.Errorf("unexpected order: %s, %s", runs[0].Strategy, runs[1].Strategy)
	}
}
