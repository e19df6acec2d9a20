package scoring

import (
	"testing"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

func TestDisqualifiesUnderFiveTrades(t *testing.T) {
	m := types.MetricsRecord{TotalTrades: 4, WinRate: decimal.NewFromInt(80)}
	score := Score(decimal.NewFromInt(10000), decimal.NewFromInt(500), m)
	if !score.Equal(decimal.NewFromInt(disqualifiedScore)) {
		t.Fatalf("expected disqualified score, got %s", score)
	}
}

func TestExplosiveBonusThreshold(t *testing.T) {
	initial := decimal.NewFromInt(10000)
	m := types.MetricsRecord{
		TotalTrades:    10,
		WinRate:        decimal.NewFromInt(50),
		ProfitFactor:   decimal.NewFromInt(1),
		MaxDrawdownPct: decimal.Zero,
	}
	below := Score(initial, decimal.NewFromInt(2000), m)
	above := Score(initial, decimal.NewFromInt(2001), m)
	if above.Sub(below).LessThan(decimal.NewFromInt(199)) {
		t.Fatalf("expected explosive bonus step of ~200, got delta %s", above.Sub(below))
	}
}

func TestStreakPenaltyTiers(t *testing.T) {
	base := types.MetricsRecord{TotalTrades: 10, WinRate: decimal.NewFromInt(50), ProfitFactor: decimal.NewFromInt(1)}

	noPenalty := base
	noPenalty.MaxConsecutiveLosses = 5
	mild := base
	mild.MaxConsecutiveLosses = 8
	severe := base
	severe.MaxConsecutiveLosses = 11

	initial := decimal.NewFromInt(10000)
	sNo := Score(initial, decimal.Zero, noPenalty)
	sMild := Score(initial, decimal.Zero, mild)
	sSevere := Score(initial, decimal.Zero, severe)

	if !sNo.Sub(sMild).Equal(decimal.NewFromInt(50)) {
		t.Fatalf("mild streak penalty should be 50, got delta %s", sNo.Sub(sMild))
	}
	if !sNo.Sub(sSevere).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("severe streak penalty should be 100, got delta %s", sNo.Sub(sSevere))
	}
}

func TestRankDeduplicatesAndAssignsSequentialRank(t *testing.T) {
	mk := func(name, symbol string, trades int, score int64) types.DiscoveryResult {
		return types.DiscoveryResult{
			StrategyName:   name,
			Symbol:         symbol,
			Metrics:        types.MetricsRecord{TotalTrades: trades},
			CompositeScore: decimal.NewFromInt(score),
		}
	}

	results := []types.DiscoveryResult{
		mk("rsi", "BTC", 10, 50),
		mk("rsi", "BTC", 10, 90), // duplicate key, higher score, should win
		mk("macd", "ETH", 8, 70),
	}

	ranked := Rank(results)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results after dedup, got %d", len(ranked))
	}
	if !ranked[0].CompositeScore.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected highest-scoring duplicate to survive, got %s", ranked[0].CompositeScore)
	}
	if ranked[0].Rank != 1 || ranked[1].Rank != 2 {
		t.Fatalf("expected sequential ranks 1,2, got %d,%d", ranked[0].Rank, ranked[1].Rank)
	}
}
