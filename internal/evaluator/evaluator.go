// Package evaluator implements the bar-by-bar backtest evaluator (spec
// §4.3): it replays a signal generator against bars, sizes positions under
// one of three sizing modes, prices Polymarket-style fees, and produces a
// MetricsRecord. Grounded on internal/backtester/engine.go's event loop and
// original_source/crates/engine/src/engine.rs's metric formulas.
package evaluator

import (
	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/internal/signal"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// Config holds the inputs to one evaluation, per spec §4.3.
type Config struct {
	InitialCapital  decimal.Decimal
	BasePositionPct decimal.Decimal
	SizingMode      types.SizingMode
	Fees            fees.Config
}

// kellyWindow tracks the running wins/losses means used by Kelly sizing.
type kellyWindow struct {
	wins, total        int
	avgWin, avgLoss     decimal.Decimal
	winCount, lossCount int
}

// record updates the running means using avg' = (avg*(n-1)+x)/n on each
// side's own counter — the single formula both sides use, per SPEC_FULL's
// Open Question resolution.
func (k *kellyWindow) record(pnlPct decimal.Decimal) {
	k.total++
	if pnlPct.GreaterThan(decimal.Zero) {
		k.wins++
		k.winCount++
		n := decimal.NewFromInt(int64(k.winCount))
		k.avgWin = k.avgWin.Mul(n.Sub(decimal.NewFromInt(1))).Add(pnlPct).Div(n)
	} else {
		k.lossCount++
		n := decimal.NewFromInt(int64(k.lossCount))
		k.avgLoss = k.avgLoss.Mul(n.Sub(decimal.NewFromInt(1))).Add(pnlPct.Abs()).Div(n)
	}
}

// sizePct computes the position size as a percentage of equity for one entry.
func (k *kellyWindow) sizePct(base, confidence decimal.Decimal, mode types.SizingMode) decimal.Decimal {
	switch mode {
	case types.SizingKelly:
		if k.total >= 10 && k.avgLoss.GreaterThan(decimal.Zero) {
			p := decimal.NewFromInt(int64(k.wins)).Div(decimal.NewFromInt(int64(k.total)))
			b := k.avgWin.Div(k.avgLoss)
			kelly := p.Mul(b).Sub(decimal.NewFromInt(1).Sub(p)).Div(b).Mul(decimal.NewFromInt(100))
			return utils.ClampDecimal(kelly, decimal.Zero, decimal.NewFromInt(25))
		}
		return base
	case types.SizingConfidenceWeighted:
		return base.Mul(confidence)
	default:
		return base
	}
}

// Result is the raw per-candidate output: trades, equity curve samples, and
// the derived MetricsRecord.
type Result struct {
	Trades  []types.Trade
	Equity  []decimal.Decimal
	Metrics types.MetricsRecord
}

// Run replays bars through gen, sizing and fee-pricing positions per cfg,
// then computes strategy confidence via quartile replay.
func Run(gen signal.Generator, bars []types.Bar, cfg Config) Result {
	result := RunNoConfidence(gen, bars, cfg)
	result.Metrics.StrategyConfidence = strategyConfidence(gen, bars, cfg, result.Metrics)
	return result
}

// RunNoConfidence replays bars through gen without computing strategy
// confidence; used by Run and by strategyConfidence's quartile replay to
// avoid unbounded recursion.
func RunNoConfidence(gen signal.Generator, bars []types.Bar, cfg Config) Result {
	if len(bars) == 0 {
		return Result{Metrics: types.MetricsRecord{}}
	}

	equity := cfg.InitialCapital
	peakEquity := equity
	maxDrawdownPct := decimal.Zero

	var open *types.Position
	var trades []types.Trade
	var equityCurve []decimal.Decimal
	kelly := &kellyWindow{}
	totalFees := decimal.Zero

	baseline := bars[0].Close

	for _, bar := range bars {
		sig, conf := gen.OnBar(bar)
		p := fees.ProbabilityFromClose(bar.Close, baseline)

		switch sig {
		case types.SignalBuy:
			if open == nil {
				sizePct := kelly.sizePct(cfg.BasePositionPct, conf, cfg.SizingMode)
				if sizePct.GreaterThan(decimal.Zero) && !bar.Close.IsZero() {
					positionValue := equity.Mul(sizePct).Div(decimal.NewFromInt(100))
					size := positionValue.Div(bar.Close)
					entryFee := fees.Calculate(cfg.Fees, size, p)
					totalFees = totalFees.Add(entryFee)
					equity = equity.Sub(entryFee)
					open = &types.Position{EntryTime: bar.OpenTime, EntryPrice: bar.Close, Size: size}
				}
			}
		case types.SignalSell:
			if open != nil {
				trade := closePosition(*open, bar, p, cfg.Fees, &totalFees, &equity)
				trades = append(trades, trade)
				kelly.record(trade.PnLPct)
				open = nil
			}
		}

		unrealized := decimal.Zero
		if open != nil {
			unrealized = bar.Close.Sub(open.EntryPrice).Mul(open.Size)
		}
		current := equity.Add(unrealized)
		equityCurve = append(equityCurve, current)

		if current.GreaterThan(peakEquity) {
			peakEquity = current
		}
		drawdown := peakEquity.Sub(current)
		if drawdown.GreaterThan(decimal.Zero) && peakEquity.GreaterThan(decimal.Zero) {
			pct := drawdown.Div(peakEquity).Mul(decimal.NewFromInt(100))
			if pct.GreaterThan(maxDrawdownPct) {
				maxDrawdownPct = pct
			}
		}
	}

	if open != nil {
		last := bars[len(bars)-1]
		p := fees.ProbabilityFromClose(last.Close, baseline)
		trade := closePosition(*open, last, p, cfg.Fees, &totalFees, &equity)
		trades = append(trades, trade)
		kelly.record(trade.PnLPct)
	}

	metrics := computeMetrics(trades, equity, cfg.InitialCapital, totalFees, maxDrawdownPct, len(bars))

	return Result{Trades: trades, Equity: equityCurve, Metrics: metrics}
}

func closePosition(pos types.Position, bar types.Bar, p decimal.Decimal, feeCfg fees.Config, totalFees, equity *decimal.Decimal) types.Trade {
	pnl := bar.Close.Sub(pos.EntryPrice).Mul(pos.Size)
	exitFee := fees.Calculate(feeCfg, pos.Size, p)
	*totalFees = totalFees.Add(exitFee)
	*equity = equity.Add(pnl).Sub(exitFee)

	var pnlPct decimal.Decimal
	if pos.EntryPrice.GreaterThan(decimal.Zero) {
		pnlPct = bar.Close.Sub(pos.EntryPrice).Div(pos.EntryPrice).Mul(decimal.NewFromInt(100))
	}

	return types.Trade{
		EntryTime:  pos.EntryTime,
		ExitTime:   bar.OpenTime,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  bar.Close,
		Size:       pos.Size,
		PnL:        pnl,
		PnLPct:     pnlPct,
	}
}
