package evaluator

import (
	"math"

	"github.com/atlas-desktop/discover/internal/signal"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

var profitFactorCap = decimal.NewFromFloat(999.99)

func computeMetrics(trades []types.Trade, finalEquity, initialCapital, totalFees, maxDrawdownPct decimal.Decimal, barCount int) types.MetricsRecord {
	m := types.MetricsRecord{
		TotalPnL:      finalEquity.Sub(initialCapital),
		TotalFees:     totalFees,
		TotalTrades:   len(trades),
		MaxDrawdownPct: maxDrawdownPct,
	}

	if len(trades) == 0 {
		return m
	}

	var grossProfits, grossLosses, totalVolume decimal.Decimal
	var winSum, lossSum decimal.Decimal
	var consecLosses, maxConsecLosses int
	pnlPcts := make([]float64, 0, len(trades))

	for _, t := range trades {
		totalVolume = totalVolume.Add(t.Size.Mul(t.EntryPrice))
		if t.PnL.GreaterThan(decimal.Zero) {
			m.WinningTrades++
			grossProfits = grossProfits.Add(t.PnL)
			winSum = winSum.Add(t.PnL)
			consecLosses = 0
		} else {
			m.LosingTrades++
			grossLosses = grossLosses.Add(t.PnL.Abs())
			lossSum = lossSum.Add(t.PnL.Abs())
			if t.PnL.LessThan(decimal.Zero) {
				consecLosses++
				if consecLosses > maxConsecLosses {
					maxConsecLosses = consecLosses
				}
			} else {
				consecLosses = 0
			}
		}
		pf, _ := t.PnLPct.Float64()
		pnlPcts = append(pnlPcts, pf)
	}

	m.TotalVolume = totalVolume
	m.MaxConsecutiveLosses = maxConsecLosses
	m.WinRate = decimal.NewFromInt(int64(m.WinningTrades)).Div(decimal.NewFromInt(int64(m.TotalTrades))).Mul(decimal.NewFromInt(100))
	m.AvgTradePnL = m.TotalPnL.Div(decimal.NewFromInt(int64(m.TotalTrades)))

	if m.WinningTrades > 0 {
		m.AvgWinPnL = winSum.Div(decimal.NewFromInt(int64(m.WinningTrades)))
	}
	if m.LosingTrades > 0 {
		m.AvgLossPnL = lossSum.Div(decimal.NewFromInt(int64(m.LosingTrades)))
	}

	switch {
	case grossLosses.GreaterThan(decimal.Zero):
		m.ProfitFactor = grossProfits.Div(grossLosses)
	case grossProfits.GreaterThan(decimal.Zero):
		m.ProfitFactor = profitFactorCap
	default:
		m.ProfitFactor = decimal.Zero
	}
	if m.ProfitFactor.GreaterThan(profitFactorCap) {
		m.ProfitFactor = profitFactorCap
	}

	sharpe := sampleSharpe(pnlPcts)
	m.Sharpe = decimal.NewFromFloat(round2(sharpe))
	m.Sortino = decimal.NewFromFloat(round2(sortino(pnlPcts)))

	periodDays := math.Max(float64(barCount)/types.BarsPerDay, 1e-9)
	totalPnlF, _ := m.TotalPnL.Float64()
	initialF, _ := initialCapital.Float64()
	if initialF > 0 {
		growth := 1 + totalPnlF/initialF
		annualized := (math.Pow(growth, 365/periodDays) - 1) * 100
		annualized = utils.ClampFloat(annualized, -999.99, 99999.99)
		m.AnnualizedReturnPct = decimal.NewFromFloat(round2(annualized))
	}
	m.AnnualizedSharpe = decimal.NewFromFloat(round2(sharpe * math.Sqrt(365/periodDays)))

	return m
}

// sampleSharpe is mean/stddev over per-trade pnl_pct, sample stddev (n-1),
// epsilon 1e-10. Zero for n<2 or stddev below epsilon.
func sampleSharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := utils.MeanFloat64(returns)
	stddev := utils.SampleStdDevFloat64(returns)
	if stddev < 1e-10 {
		return 0
	}
	return mean / stddev
}

// sortino is mean/rms(negative returns only); 10*mean capped at 99 when
// there are no negative returns and mean is positive, otherwise behaves
// like Sharpe against the downside deviation.
func sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := utils.MeanFloat64(returns)

	var sumSq float64
	var negCount int
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			negCount++
		}
	}

	if negCount == 0 {
		if mean > 0 {
			return math.Min(mean*10, 99)
		}
		return 0
	}

	downside := math.Sqrt(sumSq / float64(negCount))
	if downside < 1e-10 {
		return 0
	}
	return mean / downside
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// strategyConfidence splits bars into 4 contiguous quartiles and re-runs the
// evaluator on each with fresh generator state, per spec §4.3. Zero unless
// total_pnl > 0, win_rate > 50, and bars >= 200.
func strategyConfidence(gen signal.Generator, bars []types.Bar, cfg Config, overall types.MetricsRecord) decimal.Decimal {
	if len(bars) < 200 {
		return decimal.Zero
	}
	if !overall.TotalPnL.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	if !overall.WinRate.GreaterThan(decimal.NewFromInt(50)) {
		return decimal.Zero
	}

	quarterSize := len(bars) / 4
	if quarterSize == 0 {
		return decimal.Zero
	}

	var winRates []float64
	profitableQuartiles := 0
	for q := 0; q < 4; q++ {
		start := q * quarterSize
		end := start + quarterSize
		if q == 3 {
			end = len(bars)
		}
		gen.Reset()
		sub := RunNoConfidence(gen, bars[start:end], cfg)
		if sub.Metrics.TotalPnL.GreaterThan(decimal.Zero) {
			profitableQuartiles++
		}
		wr, _ := sub.Metrics.WinRate.Float64()
		winRates = append(winRates, wr)
	}
	gen.Reset()

	profitabilityScore := float64(profitableQuartiles) / 4 * 50
	stddevWR := utils.SampleStdDevFloat64(winRates)
	consistencyScore := (1 - math.Min(stddevWR/20, 1)) * 30

	minWR := winRates[0]
	for _, wr := range winRates[1:] {
		if wr < minWR {
			minWR = wr
		}
	}
	minWrScore := 0.0
	if minWR > 50 {
		minWrScore = math.Min((minWR-50)/30, 1) * 20
	}

	total := profitabilityScore + consistencyScore + minWrScore
	total = utils.ClampFloat(total, 0, 100)
	return decimal.NewFromFloat(round2(total))
}
