package arbitrage

import (
	"testing"

	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

func flatBar(price float64) types.Bar {
	p := decimal.NewFromFloat(price)
	return types.Bar{
		Open:   p,
		High:   p,
		Low:    p,
		Close:  p,
		Volume: decimal.NewFromInt(1000),
	}
}

func movingBars(opens, closes []float64) []types.Bar {
	bars := make([]types.Bar, len(opens))
	for i := range opens {
		o := decimal.NewFromFloat(opens[i])
		c := decimal.NewFromFloat(closes[i])
		hi := o
		lo := c
		if c.GreaterThan(o) {
			hi, lo = c, o
		}
		bars[i] = types.Bar{Open: o, High: hi.Add(decimal.NewFromFloat(0.5)), Low: lo.Sub(decimal.NewFromFloat(0.5)), Close: c, Volume: decimal.NewFromInt(1000)}
	}
	return bars
}

func defaultArbCfg() Config {
	return Config{
		SizePerSide:      decimal.NewFromInt(100),
		MaxPairCost:      decimal.NewFromFloat(0.98),
		BidOffset:        decimal.Zero,
		SpreadMultiplier: decimal.NewFromFloat(1.5),
		Fees:             fees.DefaultConfig(),
	}
}

func TestEmptyKlines(t *testing.T) {
	result := Run(nil, defaultArbCfg())
	if len(result.Windows) != 0 {
		t.Fatal("expected no windows on empty input")
	}
	if !result.TotalLockedProfit.IsZero() {
		t.Fatal("expected zero locked profit on empty input")
	}
}

func TestSingleFlatCandle(t *testing.T) {
	bars := []types.Bar{flatBar(100)}
	result := Run(bars, defaultArbCfg())
	if len(result.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(result.Windows))
	}
	w := result.Windows[0]
	if !w.PairCost.Equal(decimal.NewFromFloat(0.98)) {
		t.Fatalf("flat candle pair_cost should be 0.98 (minimum 0.02 spread), got %s", w.PairCost)
	}
	if w.Traded {
		t.Fatal("flat candle with pair_cost=0.98 should not trade under max_pair_cost=0.98")
	}
}

func TestPairCostAlwaysBelowOne(t *testing.T) {
	opens := []float64{100, 100, 100, 100, 100}
	closes := []float64{110, 90, 105, 95, 100}
	bars := movingBars(opens, closes)
	result := Run(bars, defaultArbCfg())
	for i, w := range result.Windows {
		if !w.PairCost.LessThan(decimal.NewFromInt(1)) {
			t.Fatalf("window %d pair_cost not below 1: %s", i, w.PairCost)
		}
		sum := w.YesFill.Add(w.NoFill)
		if !sum.Equal(w.PairCost) {
			t.Fatalf("window %d pair_cost mismatch", i)
		}
	}
}

func TestHighMaxPairCostTradesMore(t *testing.T) {
	opens := make([]float64, 10)
	closes := make([]float64, 10)
	for i := range opens {
		opens[i] = 100
		closes[i] = 100 + float64(i%3)
	}
	bars := movingBars(opens, closes)

	loose := defaultArbCfg()
	loose.MaxPairCost = decimal.NewFromFloat(0.999)
	resultLoose := Run(bars, loose)

	tight := defaultArbCfg()
	tight.MaxPairCost = decimal.NewFromFloat(0.80)
	resultTight := Run(bars, tight)

	if resultLoose.tradedWindows() < resultTight.tradedWindows() {
		t.Fatalf("looser max_pair_cost should trade at least as often: loose=%d tight=%d",
			resultLoose.tradedWindows(), resultTight.tradedWindows())
	}
}

func TestLowMaxPairCostNeverTrades(t *testing.T) {
	opens := []float64{100, 100, 100}
	closes := []float64{105, 95, 100}
	bars := movingBars(opens, closes)
	cfg := defaultArbCfg()
	cfg.MaxPairCost = decimal.NewFromFloat(0.01)
	result := Run(bars, cfg)
	if result.tradedWindows() != 0 {
		t.Fatal("near-zero max_pair_cost should never trade")
	}
}

func TestProfitCurveMonotonicNonDecreasingWhenAlwaysProfitable(t *testing.T) {
	opens := make([]float64, 20)
	closes := make([]float64, 20)
	for i := range opens {
		opens[i] = 100
		closes[i] = 100
	}
	cfg := defaultArbCfg()
	cfg.MaxPairCost = decimal.NewFromFloat(0.999)
	bars := movingBars(opens, closes)
	result := Run(bars, cfg)
	for i := 1; i < len(result.ProfitCurve); i++ {
		if result.ProfitCurve[i].LessThan(result.ProfitCurve[i-1]) {
			t.Fatalf("profit curve decreased at index %d: %s -> %s", i, result.ProfitCurve[i-1], result.ProfitCurve[i])
		}
	}
}

func TestAggregateStatsConsistency(t *testing.T) {
	opens := []float64{100, 102, 98, 101, 99, 100, 103, 97}
	closes := []float64{102, 98, 101, 99, 100, 103, 97, 100}
	bars := movingBars(opens, closes)
	result := Run(bars, defaultArbCfg())

	traded := result.tradedWindows()
	expectedHitRate := decimal.NewFromInt(int64(traded)).Div(decimal.NewFromInt(int64(len(bars)))).Mul(decimal.NewFromInt(100))
	if !result.HitRate.Equal(expectedHitRate) {
		t.Fatalf("hit_rate = %s, want %s", result.HitRate, expectedHitRate)
	}

	if traded > 0 {
		if result.WorstPairCost.LessThan(result.BestPairCost) {
			t.Fatalf("worst_pair_cost %s < best_pair_cost %s", result.WorstPairCost, result.BestPairCost)
		}
	}

	m := result.ToMetrics()
	if m.TotalTrades != traded {
		t.Fatalf("ToMetrics total_trades = %d, want %d", m.TotalTrades, traded)
	}
}
