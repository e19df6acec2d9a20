// Package scoring implements the composite ranking function (spec §4.5)
// that turns a DiscoveryResult's raw metrics into a single comparable score,
// plus the stable-sort/dedup/rank pipeline used to publish a leaderboard.
package scoring

import (
	"sort"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

const disqualifiedScore = -9999

var (
	wr70  = decimal.NewFromInt(70)
	wr55  = decimal.NewFromInt(55)
	wr50  = decimal.NewFromInt(50)
	one   = decimal.NewFromInt(1)
	zero  = decimal.Zero
)

// Score computes the composite score for one result per spec §4.5.
func Score(initialCapital decimal.Decimal, netPnL decimal.Decimal, m types.MetricsRecord) decimal.Decimal {
	if m.TotalTrades < 5 {
		return decimal.NewFromInt(disqualifiedScore)
	}

	score := netPnL
	score = score.Add(winRateBonus(m.WinRate))
	score = score.Add(m.Sharpe.Mul(decimal.NewFromInt(100)))
	score = score.Sub(m.MaxDrawdownPct.Mul(decimal.NewFromInt(3)))
	score = score.Add(pfBonus(m.ProfitFactor))
	score = score.Add(explosiveBonus(netPnL, initialCapital))
	score = score.Add(m.StrategyConfidence.Mul(decimal.NewFromInt(3)))
	score = score.Add(sortinoBonus(m.Sortino))
	score = score.Sub(streakPenalty(m.MaxConsecutiveLosses))

	return score
}

func winRateBonus(wr decimal.Decimal) decimal.Decimal {
	delta := wr.Sub(wr50)
	switch {
	case wr.GreaterThanOrEqual(wr70):
		return delta.Mul(decimal.NewFromInt(3))
	case wr.GreaterThanOrEqual(wr55):
		return delta.Mul(decimal.NewFromInt(2))
	default:
		return delta
	}
}

func pfBonus(pf decimal.Decimal) decimal.Decimal {
	delta := pf.Sub(one)
	if pf.GreaterThan(one) {
		return delta.Mul(decimal.NewFromInt(50))
	}
	return delta.Mul(decimal.NewFromInt(100))
}

func explosiveBonus(netPnL, initialCapital decimal.Decimal) decimal.Decimal {
	threshold := initialCapital.Mul(decimal.NewFromFloat(0.20))
	if netPnL.GreaterThan(threshold) {
		return decimal.NewFromInt(200)
	}
	return zero
}

func sortinoBonus(sortino decimal.Decimal) decimal.Decimal {
	capped := sortino
	five := decimal.NewFromInt(5)
	if capped.GreaterThan(five) {
		capped = five
	}
	return capped.Mul(decimal.NewFromInt(50))
}

func streakPenalty(maxConsecutiveLosses int) decimal.Decimal {
	switch {
	case maxConsecutiveLosses > 10:
		return decimal.NewFromInt(100)
	case maxConsecutiveLosses > 7:
		return decimal.NewFromInt(50)
	default:
		return zero
	}
}

// Rank sorts results descending by CompositeScore (stable sort), deduplicates
// on (strategy_name, symbol, total_trades) keeping the first (highest-scoring)
// occurrence, and assigns 1-based Rank in place.
func Rank(results []types.DiscoveryResult) []types.DiscoveryResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompositeScore.GreaterThan(results[j].CompositeScore)
	})

	type dedupKey struct {
		strategyName string
		symbol       string
		totalTrades  int
	}
	seen := make(map[dedupKey]bool, len(results))
	deduped := make([]types.DiscoveryResult, 0, len(results))

	for _, r := range results {
		key := dedupKey{r.StrategyName, r.Symbol, r.Metrics.TotalTrades}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}

	for i := range deduped {
		deduped[i].Rank = i + 1
	}

	return deduped
}
