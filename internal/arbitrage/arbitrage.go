// Package arbitrage implements the paired-outcome market simulator (spec
// §4.4), grounded on original_source/crates/engine/src/gabagool.rs.
package arbitrage

import (
	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

var (
	half      = decimal.NewFromFloat(0.5)
	five      = decimal.NewFromInt(5)
	deviationCap = decimal.NewFromFloat(0.40)
	spreadLo  = decimal.NewFromFloat(0.02)
	spreadHi  = decimal.NewFromFloat(0.10)
	fillLo    = decimal.NewFromFloat(0.05)
	fillHi    = decimal.NewFromFloat(0.95)
)

// Config parameterises one arbitrage evaluation.
type Config struct {
	SizePerSide      decimal.Decimal
	MaxPairCost      decimal.Decimal
	BidOffset        decimal.Decimal
	SpreadMultiplier decimal.Decimal
	Fees             fees.Config
}

// WindowResult is the per-bar synthetic market outcome.
type WindowResult struct {
	YesFill      decimal.Decimal
	NoFill       decimal.Decimal
	PairCost     decimal.Decimal
	Traded       bool
	LockedProfit decimal.Decimal
	Spread       decimal.Decimal
}

// Result is the full arbitrage backtest output.
type Result struct {
	Windows           []WindowResult
	TotalLockedProfit decimal.Decimal
	TotalFees         decimal.Decimal
	HitRate           decimal.Decimal
	AvgPairCost       decimal.Decimal
	AvgLockedProfit   decimal.Decimal
	BestPairCost      decimal.Decimal
	WorstPairCost     decimal.Decimal
	AvgSpread         decimal.Decimal
	ProfitCurve       []decimal.Decimal
}

// evaluateWindow derives a synthetic YES/NO fill pair from one OHLCV bar and
// decides whether the pair would have been traded, per the exact formulas in
// original_source/crates/engine/src/gabagool.rs.
func evaluateWindow(bar types.Bar, cfg Config) WindowResult {
	if bar.Open.IsZero() {
		return WindowResult{}
	}

	move := bar.Close.Sub(bar.Open).Div(bar.Open)
	vol := bar.High.Sub(bar.Low).Div(bar.Open)

	deviation := utils.ClampDecimal(move.Mul(five), deviationCap.Neg(), deviationCap)
	yesMid := half.Add(deviation)
	noMid := decimal.NewFromInt(1).Sub(yesMid)

	spread := utils.ClampDecimal(vol.Mul(cfg.SpreadMultiplier), spreadLo, spreadHi)
	halfSpread := spread.Div(decimal.NewFromInt(2))

	yesFill := utils.ClampDecimal(yesMid.Sub(halfSpread).Sub(cfg.BidOffset), fillLo, fillHi)
	noFill := utils.ClampDecimal(noMid.Sub(halfSpread).Sub(cfg.BidOffset), fillLo, fillHi)

	pairCost := yesFill.Add(noFill)
	traded := pairCost.LessThan(cfg.MaxPairCost)

	lockedProfit := decimal.Zero
	if traded {
		lockedProfit = cfg.SizePerSide.Mul(decimal.NewFromInt(1).Sub(pairCost))
	}

	return WindowResult{
		YesFill:      yesFill,
		NoFill:       noFill,
		PairCost:     pairCost,
		Traded:       traded,
		LockedProfit: lockedProfit,
		Spread:       spread,
	}
}

// Run replays bars through the arbitrage simulator and aggregates stats.
func Run(bars []types.Bar, cfg Config) Result {
	var result Result
	if len(bars) == 0 {
		return result
	}

	result.Windows = make([]WindowResult, len(bars))
	var sumPairCost, sumLockedProfit, sumSpread decimal.Decimal
	tradedCount := 0
	cumulative := decimal.Zero

	for i, bar := range bars {
		w := evaluateWindow(bar, cfg)
		result.Windows[i] = w
		sumPairCost = sumPairCost.Add(w.PairCost)
		sumSpread = sumSpread.Add(w.Spread)

		if w.Traded {
			tradedCount++
			sumLockedProfit = sumLockedProfit.Add(w.LockedProfit)

			entryFee := fees.Calculate(cfg.Fees, cfg.SizePerSide, w.YesFill)
			exitFee := fees.Calculate(cfg.Fees, cfg.SizePerSide, w.NoFill)
			result.TotalFees = result.TotalFees.Add(entryFee).Add(exitFee)

			if result.BestPairCost.IsZero() || w.PairCost.LessThan(result.BestPairCost) {
				result.BestPairCost = w.PairCost
			}
			if w.PairCost.GreaterThan(result.WorstPairCost) {
				result.WorstPairCost = w.PairCost
			}

			cumulative = cumulative.Add(w.LockedProfit)
		}
		result.ProfitCurve = append(result.ProfitCurve, cumulative)
	}

	n := decimal.NewFromInt(int64(len(bars)))
	result.TotalLockedProfit = sumLockedProfit
	result.HitRate = decimal.NewFromInt(int64(tradedCount)).Div(n).Mul(decimal.NewFromInt(100))
	result.AvgPairCost = sumPairCost.Div(n)
	result.AvgSpread = sumSpread.Div(n)
	if tradedCount > 0 {
		result.AvgLockedProfit = sumLockedProfit.Div(decimal.NewFromInt(int64(tradedCount)))
	}

	return result
}

// ToMetrics adapts the arbitrage result into the common MetricsRecord shape
// per spec §4.4: composite_score is left 0 (filled in by the scorer),
// net_pnl = locked - fees, gross_pnl = locked, profit_factor = locked/fees
// capped, indicator-only fields are 0.
func (r Result) ToMetrics() types.MetricsRecord {
	m := types.MetricsRecord{
		TotalPnL:        r.TotalLockedProfit,
		TotalFees:       r.TotalFees,
		TotalTrades:     r.tradedWindows(),
		HitRate:         r.HitRate,
		AvgLockedProfit: r.AvgLockedProfit,
	}
	if m.TotalTrades > 0 {
		m.WinningTrades = m.TotalTrades
		m.WinRate = decimal.NewFromInt(100)
	}
	if r.TotalFees.GreaterThan(decimal.Zero) {
		pf := r.TotalLockedProfit.Div(r.TotalFees)
		if pf.GreaterThan(decimal.NewFromFloat(999.99)) {
			pf = decimal.NewFromFloat(999.99)
		}
		m.ProfitFactor = pf
	} else if r.TotalLockedProfit.GreaterThan(decimal.Zero) {
		m.ProfitFactor = decimal.NewFromFloat(999.99)
	}
	return m
}

func (r Result) tradedWindows() int {
	count := 0
	for _, w := range r.Windows {
		if w.Traded {
			count++
		}
	}
	return count
}
