package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
	"quantlab/internal/dataset"
	"quantlab/internal/report"
	"quantlab/internal/series"
	"quantlab/internal/store"
	"quantlab/internal/strategy"
	"quantlab/internal/sweep"
)

// App 聚合核心依赖并驱动完整研究流水线：
// 数据 → 信号 → 回测 → 指标 → 报告/持久化。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 执行一轮完整研究流程。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("研究流水线启动",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("data_source", a.cfg.Data.Source),
		zap.Strings("strategies", a.cfg.Strategies.Enabled),
	)

	prices, err := a.loadPrices(ctx)
	if err != nil {
		return fmt.Errorf("加载价格数据失败: %w", err)
	}
	a.logger.Info("价格数据就绪", zap.Int("periods", prices.Len()))

	entries := make([]report.Entry, 0, len(a.cfg.Strategies.Enabled))
	for _, name := range a.cfg.Strategies.Enabled {
		entry, err := a.runStrategy(ctx, name, prices)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	table := report.Render(entries)
	fmt.Print(table)
	a.maybeNarrate(ctx, entries)

	if a.cfg.Sweep.Enabled {
		if err := a.runSweep(ctx, prices); err != nil {
			return err
		}
	}

	a.logger.Info("研究流水线完成", zap.Int("strategies", len(entries)))
	return nil
}

func (a *App) loadPrices(ctx context.Context) (*series.PriceSeries, error) {
	switch strings.ToLower(a.cfg.Data.Source) {
	case "synthetic":
		return dataset.GenerateSynthetic(a.cfg.Data.Synthetic)
	case "csv":
		return dataset.LoadCSV(a.cfg.Data.CSVPath)
	case "exchange":
		source := dataset.NewExchangeSource(a.cfg.Data.Exchange, a.logger)
		return source.FetchPrices(ctx)
	default:
		return nil, fmt.Errorf("%w: 未知数据源 %q", series.ErrInvalidInput, a.cfg.Data.Source)
	}
}

func (a *App) runStrategy(ctx context.Context, name string, prices *series.PriceSeries) (report.Entry, error) {
	params, persisted := a.strategyParams(name)

	gen, err := strategy.New(name, params)
	if err != nil {
		return report.Entry{}, err
	}

	signals, err := gen.Generate(prices)
	if err != nil {
		return report.Entry{}, fmt.Errorf("策略 %s 生成信号失败: %w", name, err)
	}

	if f := a.cfg.Strategies.VolatilityFilter; f.Enabled {
		signals = strategy.ApplyVolatilityFilter(signals, prices, f.Lookback, f.ThresholdStd)
	}

	result, err := backtest.Run(prices, signals, a.cfg.Backtest.InitialCapital)
	if err != nil {
		return report.Entry{}, fmt.Errorf("策略 %s 回测失败: %w", name, err)
	}

	metrics := backtest.ComputeMetrics(result, backtest.MetricsOptions{
		RiskFreeRate:   a.cfg.Backtest.RiskFreeRate,
		PeriodsPerYear: a.cfg.Backtest.PeriodsPerYear,
	})

	a.logger.Info("策略回测完成",
		zap.String("strategy", gen.Name()),
		zap.Float64("final_equity", result.FinalEquity()),
		zap.Float64("total_return", metrics.TotalReturn),
		zap.Float64("max_drawdown", metrics.MaxDrawdown),
	)

	if a.store != nil {
		if _, err := a.store.SaveRun(ctx, store.RunRecord{
			Strategy:       gen.Name(),
			Params:         persisted,
			DataSource:     a.cfg.Data.Source,
			InitialCapital: result.InitialCapital,
			FinalEquity:    result.FinalEquity(),
			Periods:        len(result.Records),
			Metrics:        metrics,
		}); err != nil {
			a.logger.Warn("持久化回测记录失败", zap.Error(err))
		}
	}

	return report.Entry{
		Strategy:       gen.Name(),
		InitialCapital: result.InitialCapital,
		FinalEquity:    result.FinalEquity(),
		Metrics:        metrics,
	}, nil
}

func (a *App) strategyParams(name string) (strategy.Params, map[string]interface{}) {
	sc := a.cfg.Strategies
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "momentum":
		return strategy.Params{
				Lookback:  sc.Momentum.Lookback,
				Threshold: sc.Momentum.Threshold,
			}, map[string]interface{}{
				"lookback":  sc.Momentum.Lookback,
				"threshold": sc.Momentum.Threshold,
			}
	case "crossover", "ma_crossover":
		return strategy.Params{
				ShortWindow: sc.Crossover.ShortWindow,
				LongWindow:  sc.Crossover.LongWindow,
			}, map[string]interface{}{
				"short_window": sc.Crossover.ShortWindow,
				"long_window":  sc.Crossover.LongWindow,
			}
	case "breakout":
		return strategy.Params{
				Lookback: sc.Breakout.Lookback,
			}, map[string]interface{}{
				"lookback": sc.Breakout.Lookback,
			}
	default:
		return strategy.Params{
				Lookback:  sc.MeanReversion.Lookback,
				Threshold: sc.MeanReversion.EntryThreshold,
			}, map[string]interface{}{
				"lookback":        sc.MeanReversion.Lookback,
				"entry_threshold": sc.MeanReversion.EntryThreshold,
			}
	}
}

func (a *App) maybeNarrate(ctx context.Context, entries []report.Entry) {
	if a.cfg.OpenAI.APIKey == "" {
		return
	}

	narrator, err := report.NewNarrator(a.cfg.OpenAI, a.logger)
	if err != nil {
		a.logger.Warn("初始化报告解读失败", zap.Error(err))
		return
	}

	summary, err := narrator.Summarize(ctx, entries)
	if err != nil {
		a.logger.Warn("生成报告解读失败", zap.Error(err))
		return
	}
	fmt.Println(summary)
}

func (a *App) runSweep(ctx context.Context, prices *series.PriceSeries) error {
	outcomes, err := sweep.Run(ctx, prices, a.cfg.Sweep, a.cfg.Backtest, a.logger)
	if err != nil {
		return fmt.Errorf("参数扫描失败: %w", err)
	}

	for _, o := range outcomes {
		if a.store == nil {
			break
		}
		if _, err := a.store.SaveRun(ctx, store.RunRecord{
			Strategy: a.cfg.Sweep.Strategy,
			Params: map[string]interface{}{
				"lookback":  o.Point.Lookback,
				"threshold": o.Point.Threshold,
				"sweep":     true,
			},
			DataSource:     a.cfg.Data.Source,
			InitialCapital: a.cfg.Backtest.InitialCapital,
			FinalEquity:    o.FinalEquity,
			Periods:        prices.Len(),
			Metrics:        o.Metrics,
		}); err != nil {
			a.logger.Warn("持久化扫描记录失败", zap.Error(err))
		}
	}

	if len(outcomes) == 0 {
		return nil
	}

	best := outcomes[0]
	for _, o := range outcomes[1:] {
		if o.FinalEquity > best.FinalEquity {
			best = o
		}
	}
	a.logger.Info("参数扫描最优组合",
		zap.String("strategy", a.cfg.Sweep.Strategy),
		zap.Int("lookback", best.Point.Lookback),
		zap.Float64("threshold", best.Point.Threshold),
		zap.Float64("final_equity", best.FinalEquity),
	)
	return nil
}
