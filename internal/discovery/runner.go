// Package discovery implements the discovery runner (spec §4.8): it drives
// the parameter-space generators, the evaluator/arbitrage engines, the dedup
// cache, and the scorer through a single-shot or continuous scan, publishing
// progress through a shared progress.State. The overall generate-evaluate-rank
// cycle follows the teacher's event-driven backtesting engine shape.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atlas-desktop/discover/internal/barsource"
	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/internal/metrics"
	"github.com/atlas-desktop/discover/internal/persistence"
	"github.com/atlas-desktop/discover/internal/progress"
	"github.com/atlas-desktop/discover/pkg/types"
)

// Runner owns every dependency one discovery run needs and is safe to reuse
// across successive single-shot calls; it must not be used for two
// concurrent runs (spec §5: one discovery task per run).
type Runner struct {
	bars    barsource.Source
	store   *persistence.Store
	metrics *metrics.Registry
	logger  *zap.Logger

	initialCapital  decimal.Decimal
	basePositionPct decimal.Decimal
	feesConfig      fees.Config

	progress *progress.State
}

// Config bundles the fixed numeric inputs shared by every candidate
// evaluation in a run.
type Config struct {
	InitialCapital  decimal.Decimal
	BasePositionPct decimal.Decimal
	Fees            fees.Config
}

// NewRunner builds a Runner. The caller owns store's lifecycle (Close it
// after the runner is done).
func NewRunner(bars barsource.Source, store *persistence.Store, reg *metrics.Registry, logger *zap.Logger, cfg Config) *Runner {
	return &Runner{
		bars:            bars,
		store:           store,
		metrics:         reg,
		logger:          logger,
		initialCapital:  cfg.InitialCapital,
		basePositionPct: cfg.BasePositionPct,
		feesConfig:      cfg.Fees,
	}
}

// Progress returns the shared progress state for the run most recently
// started by RunSingleShot or RunContinuous.
func (r *Runner) Progress() *progress.State {
	return r.progress
}

// fetchBars pulls bars for every requested symbol over the last `days` days
// concurrently (one goroutine per symbol, grouped by errgroup), dropping
// (with a warning) any symbol whose fetch fails, per spec §4.8 step 1 / §7
// FetchFailure. Returns bars keyed by symbol and the symbols that
// succeeded, filtered back into request order so callers preserve spec §5's
// ordering guarantee despite the concurrent fetch.
func (r *Runner) fetchBars(ctx context.Context, symbols []string, days int) (map[string][]types.Bar, []string) {
	endMs := time.Now().UnixMilli()
	startMs := endMs - int64(days)*24*60*60*1000

	fetched := make([][]types.Bar, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			bars, err := r.bars.GetKlinesPaginated(gctx, symbol, startMs, endMs)
			if err != nil || len(bars) == 0 {
				r.logger.Warn("bar fetch failed, dropping symbol", zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			fetched[i] = bars
			return nil
		})
	}
	_ = g.Wait()

	barsBySymbol := make(map[string][]types.Bar, len(symbols))
	var succeeded []string
	for i, symbol := range symbols {
		if len(fetched[i]) == 0 {
			continue
		}
		barsBySymbol[symbol] = fetched[i]
		succeeded = append(succeeded, symbol)
	}
	return barsBySymbol, succeeded
}

// sliceBarsForDays returns the trailing window of bars covering the most
// recent `days` days, assuming types.BarsPerDay bars/day at 15m granularity.
func sliceBarsForDays(bars []types.Bar, days int) []types.Bar {
	want := days * types.BarsPerDay
	if want >= len(bars) {
		return bars
	}
	return bars[len(bars)-want:]
}

// updateBestSoFar recomputes and publishes the top-N view by composite
// score, called at every YieldInterval boundary per spec §4.8 step 4.
func (r *Runner) updateBestSoFar(results []types.DiscoveryResult, topN int) {
	ranked := topNByScore(results, topN)
	r.progress.UpdateBestSoFar(ranked)
}

// topNByScore returns a stable-sorted copy of results truncated to n,
// without the scoring package's dedup (used for in-flight best-so-far
// views; final dedup/rank happens once at Finalize).
func topNByScore(results []types.DiscoveryResult, n int) []types.DiscoveryResult {
	cp := make([]types.DiscoveryResult, len(results))
	copy(cp, results)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].CompositeScore.GreaterThan(cp[j].CompositeScore)
	})
	if n > 0 && n < len(cp) {
		cp = cp[:n]
	}
	return cp
}

var errAllFetchesFailed = fmt.Errorf("discovery: fetch failed for every requested symbol")
