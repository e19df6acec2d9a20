package discovery

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/discover/internal/arbitrage"
	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/internal/evaluator"
	"github.com/atlas-desktop/discover/internal/persistence"
	"github.com/atlas-desktop/discover/internal/scoring"
	"github.com/atlas-desktop/discover/internal/signal"
	"github.com/atlas-desktop/discover/pkg/types"
)

// evaluateCandidate checks the dedup cache for (d, symbol, days, sizing);
// on a hit it reconstructs the stored DiscoveryResult, on a miss it runs the
// appropriate evaluator, scores the result, and persists it. The bool return
// is true on a cache hit (spec §4.8 step 3).
func (r *Runner) evaluateCandidate(ctx context.Context, d types.Descriptor, symbol string, days int, sizing types.SizingMode, bars []types.Bar, runID, phase string) (types.DiscoveryResult, bool, error) {
	if err := descriptor.Validate(d); err != nil {
		return types.DiscoveryResult{}, false, err
	}

	hash, err := descriptor.Key(d, symbol, days, sizing)
	if err != nil {
		return types.DiscoveryResult{}, false, err
	}

	if rec, ok, err := r.store.GetByHash(ctx, hash); err == nil && ok {
		result, err := rec.ToResult()
		if err == nil {
			r.metrics.CacheHits.Inc()
			r.metrics.CandidatesSkipped.Inc()
			return result, true, nil
		}
		r.logger.Warn("cached record failed to decode, re-evaluating", zap.Error(err), zap.String("hash", hash))
	}
	r.metrics.CacheMisses.Inc()

	name := descriptor.Name(d)
	r.progress.SetCurrentCandidate(name, symbol)

	metrics, err := r.runEvaluator(d, sizing, bars)
	if err != nil {
		return types.DiscoveryResult{}, false, err
	}
	r.metrics.CandidatesEvaluated.Inc()

	// The evaluator already deducts entry/exit fees from equity as it runs,
	// so metrics.TotalPnL is net for indicator strategies; the arbitrage
	// engine reports gross locked profit instead, so it still needs the
	// fee subtraction here.
	netPnL := metrics.TotalPnL
	if d.Kind == types.FamilyArbitrage {
		netPnL = metrics.TotalPnL.Sub(metrics.TotalFees)
	}
	score := scoring.Score(r.initialCapital, netPnL, metrics)

	result := types.DiscoveryResult{
		Descriptor:     d,
		StrategyName:   name,
		Symbol:         symbol,
		Days:           days,
		SizingMode:     sizing,
		CompositeScore: score,
		Metrics:        metrics,
		DiscoveryRunID: runID,
		Phase:          phase,
		CreatedAt:      time.Now().Unix(),
	}

	rec, err := persistence.FromResult(hash, result)
	if err != nil {
		r.logger.Warn("build persistence record failed", zap.Error(err), zap.String("hash", hash))
		return result, false, nil
	}
	if _, err := r.store.Save(ctx, rec); err != nil {
		r.logger.Warn("persist candidate failed", zap.Error(err), zap.String("hash", hash))
	}

	return result, false, nil
}

// runEvaluator dispatches to the arbitrage engine or the bar-by-bar
// evaluator depending on the descriptor's family.
func (r *Runner) runEvaluator(d types.Descriptor, sizing types.SizingMode, bars []types.Bar) (types.MetricsRecord, error) {
	if d.Kind == types.FamilyArbitrage {
		cfg := arbitrage.Config{
			SizePerSide:      r.initialCapital.Mul(r.basePositionPct).Div(decimal.NewFromInt(100)),
			MaxPairCost:      decimal.NewFromFloat(d.Arbitrage.MaxPairCost),
			BidOffset:        decimal.NewFromFloat(d.Arbitrage.BidOffset),
			SpreadMultiplier: decimal.NewFromFloat(d.Arbitrage.SpreadMultiplier),
			Fees:             r.feesConfig,
		}
		return arbitrage.Run(bars, cfg).ToMetrics(), nil
	}

	gen, err := signal.Build(d)
	if err != nil {
		return types.MetricsRecord{}, err
	}
	evalCfg := evaluator.Config{
		InitialCapital:  r.initialCapital,
		BasePositionPct: r.basePositionPct,
		SizingMode:      sizing,
		Fees:            r.feesConfig,
	}
	return evaluator.Run(gen, bars, evalCfg).Metrics, nil
}
