package sweep

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
	"quantlab/internal/series"
	"quantlab/internal/strategy"
)

// Point 为参数网格中的一个组合。
type Point struct {
	Lookback  int
	Threshold float64
}

// Outcome 为单个参数组合的回测结果。
type Outcome struct {
	Point       Point
	FinalEquity float64
	Metrics     backtest.Metrics
}

// Run 对 lookback × threshold 网格并行执行回测。
//
// 回测与指标计算均为纯函数，各参数组合之间互不共享可变状态，
// 因此可以安全并发；结果按网格顺序写入固定位置，输出顺序与并发度无关。
func Run(ctx context.Context, prices *series.PriceSeries, cfg config.SweepConfig, bt config.BacktestConfig, logger *zap.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	points := make([]Point, 0, len(cfg.Lookbacks)*len(cfg.Thresholds))
	for _, lookback := range cfg.Lookbacks {
		for _, threshold := range cfg.Thresholds {
			points = append(points, Point{Lookback: lookback, Threshold: threshold})
		}
	}

	outcomes := make([]Outcome, len(points))

	group, groupCtx := errgroup.WithContext(ctx)
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	group.SetLimit(concurrency)

	for i, point := range points {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			gen, err := strategy.New(cfg.Strategy, strategy.Params{
				Lookback:  point.Lookback,
				Threshold: point.Threshold,
			})
			if err != nil {
				return err
			}

			signals, err := gen.Generate(prices)
			if err != nil {
				return err
			}

			result, err := backtest.Run(prices, signals, bt.InitialCapital)
			if err != nil {
				return err
			}

			outcomes[i] = Outcome{
				Point:       point,
				FinalEquity: result.FinalEquity(),
				Metrics: backtest.ComputeMetrics(result, backtest.MetricsOptions{
					RiskFreeRate:   bt.RiskFreeRate,
					PeriodsPerYear: bt.PeriodsPerYear,
				}),
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	logger.Info("参数扫描完成",
		zap.String("strategy", cfg.Strategy),
		zap.Int("combinations", len(outcomes)),
	)
	return outcomes, nil
}
