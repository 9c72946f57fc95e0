package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"quantlab/internal/config"
	"quantlab/internal/series"
)

// ExchangeSource 从交易所拉取历史K线收盘价作为价格序列，带重试机制。
type ExchangeSource struct {
	cfg      config.ExchangeConfig
	logger   *zap.Logger
	exchange *ccxt.Binanceusdm

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewExchangeSource 构造交易所数据源。
func NewExchangeSource(cfg config.ExchangeConfig, logger *zap.Logger) *ExchangeSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
			"defaultType":             "future",
		},
	}
	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.APISecret != "" {
		userConfig["secret"] = cfg.APISecret
	}

	ex := ccxt.NewBinanceusdm(userConfig)
	if cfg.UseSandbox {
		ex.SetSandboxMode(true)
	}

	return &ExchangeSource{
		cfg:      cfg,
		logger:   logger,
		exchange: ex,
	}
}

// FetchPrices 拉取配置周期的K线并转换为价格序列。
func (s *ExchangeSource) FetchPrices(ctx context.Context) (*series.PriceSeries, error) {
	timeframe := s.cfg.Timeframe
	if timeframe == "" {
		timeframe = "1d"
	}
	limit := int64(s.cfg.Limit)
	if limit < 2 {
		limit = 252
	}

	var raw []ccxt.OHLCV
	err := s.callWithRetry(ctx, fmt.Sprintf("fetch_ohlcv_%s", timeframe), func() error {
		if err := s.ensureMarketsLoaded(ctx); err != nil {
			return err
		}

		result, err := s.exchange.FetchOHLCV(
			s.cfg.Market,
			ccxt.WithFetchOHLCVTimeframe(timeframe),
			ccxt.WithFetchOHLCVLimit(limit),
		)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	prices := &series.PriceSeries{
		Timestamps: make([]time.Time, 0, len(raw)),
		Prices:     make([]float64, 0, len(raw)),
	}
	for _, item := range raw {
		prices.Timestamps = append(prices.Timestamps, time.UnixMilli(item.Timestamp).UTC())
		prices.Prices = append(prices.Prices, item.Close)
	}

	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("交易所K线数据不可用: %w", err)
	}

	s.logger.Debug("行情拉取完成",
		zap.String("market", s.cfg.Market),
		zap.String("timeframe", timeframe),
		zap.Int("periods", prices.Len()),
	)
	return prices, nil
}

func (s *ExchangeSource) ensureMarketsLoaded(ctx context.Context) error {
	if s.marketsLoaded {
		return nil
	}

	s.marketsMu.Lock()
	defer s.marketsMu.Unlock()

	if s.marketsLoaded {
		return nil
	}

	if err := s.callWithRetry(ctx, "load_markets", func() error {
		_, err := s.exchange.LoadMarkets()
		return err
	}); err != nil {
		return err
	}

	s.marketsLoaded = true
	return nil
}

func (s *ExchangeSource) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	delay := s.cfg.Retry.MinDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxDelay := s.cfg.Retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		if !isRetryable(err) || attempt >= s.cfg.Retry.MaxAttempts {
			s.logger.Error("交易所调用失败",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return err
		}

		wait := delay
		if wait > maxDelay {
			wait = maxDelay
		}
		s.logger.Warn("交易所调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return true
		}
	}
	return false
}
