// Package barsource provides the external bar feed the discovery runner
// consumes (spec §6): get_klines_paginated over 15-minute candles, paced to
// respect the upstream rate limit. Grounded on the teacher's
// internal/data/store.go (sample-data fallback, directory layout) and on
// polybot's internal/adapters/polymarket/client.go (rate.Limiter-paced HTTP
// client with retries).
package barsource

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	granularity15m   = "15m"
	pageSize         = 1000
	pagePause        = 100 * time.Millisecond
	requestTimeout   = 30 * time.Second
	barIntervalMs    = 15 * 60 * 1000
)

// Source returns bars for a symbol over [startMs, endMs), ordered by
// open_time, paginated internally at <=1000 bars per page.
type Source interface {
	GetKlinesPaginated(ctx context.Context, symbol string, startMs, endMs int64) ([]types.Bar, error)
}

// HTTPSource fetches bars from an external candle API, pacing requests with
// an explicit rate.Limiter and pausing between pages per spec §6.
type HTTPSource struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTPSource builds a rate-limited client against baseURL. requestsPerSec
// bounds the sustained request rate; burst allows a short spike.
func NewHTTPSource(baseURL string, requestsPerSec float64, burst int, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), burst),
		logger:  logger,
	}
}

type klineResponse struct {
	OpenTime  int64  `json:"openTime"`
	CloseTime int64  `json:"closeTime"`
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
	Volume    string `json:"volume"`
}

// GetKlinesPaginated pages through the upstream API at <=1000 bars per page,
// pausing 100ms between pages to respect the external rate limit.
func (s *HTTPSource) GetKlinesPaginated(ctx context.Context, symbol string, startMs, endMs int64) ([]types.Bar, error) {
	var bars []types.Bar
	cursor := startMs

	for cursor < endMs {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("barsource: rate limiter: %w", err)
		}

		page, err := s.fetchPage(ctx, symbol, cursor, endMs)
		if err != nil {
			return nil, fmt.Errorf("barsource: fetch %s: %w", symbol, err)
		}
		if len(page) == 0 {
			break
		}
		bars = append(bars, page...)
		cursor = page[len(page)-1].CloseTime + 1

		if len(page) < pageSize {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pagePause):
		}
	}

	return bars, nil
}

func (s *HTTPSource) fetchPage(ctx context.Context, symbol string, startMs, endMs int64) ([]types.Bar, error) {
	url := fmt.Sprintf("%s/klines?symbol=%s&interval=%s&startTime=%d&endTime=%d&limit=%d",
		s.baseURL, symbol, granularity15m, startMs, endMs, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	bars := make([]types.Bar, 0, len(raw))
	for _, k := range raw {
		bar, err := parseKline(k)
		if err != nil {
			s.logger.Warn("dropping malformed kline", zap.Error(err), zap.String("symbol", symbol))
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseKline(k klineResponse) (types.Bar, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return types.Bar{}, err
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return types.Bar{}, err
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return types.Bar{}, err
	}
	close, err := decimal.NewFromString(k.Close)
	if err != nil {
		return types.Bar{}, err
	}
	volume, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return types.Bar{}, err
	}
	return types.Bar{
		OpenTime:  k.OpenTime,
		CloseTime: k.CloseTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}

// SampleSource synthesises deterministic-looking bars for local development
// and tests when no live feed is configured, mirroring the teacher's
// generateSampleData fallback in internal/data/store.go.
type SampleSource struct {
	Seed int64
}

// GetKlinesPaginated generates a random walk of 15-minute bars covering
// [startMs, endMs).
func (s SampleSource) GetKlinesPaginated(ctx context.Context, symbol string, startMs, endMs int64) ([]types.Bar, error) {
	rng := rand.New(rand.NewSource(s.Seed))
	price := decimal.NewFromInt(100)

	var bars []types.Bar
	for t := startMs; t < endMs; t += barIntervalMs {
		move := decimal.NewFromFloat((rng.Float64() - 0.5) * 2)
		open := price
		close := open.Add(move)
		if close.IsNegative() {
			close = decimal.NewFromFloat(0.01)
		}
		high := decimal.Max(open, close).Add(decimal.NewFromFloat(rng.Float64()))
		low := decimal.Min(open, close).Sub(decimal.NewFromFloat(rng.Float64()))
		if low.IsNegative() {
			low = decimal.NewFromFloat(0.01)
		}
		volume := decimal.NewFromFloat(100 + rng.Float64()*900)

		bars = append(bars, types.Bar{
			OpenTime:  t,
			CloseTime: t + barIntervalMs - 1,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
		price = close
	}
	return bars, nil
}
