package paramspace

import (
	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/pkg/types"
)

// periodDeltas, thresholdDeltas, and multiplierDeltas are the small numeric
// perturbation steps spec §4.2 names for the refinement grid: ±1-2 on
// periods, ±2.5 on threshold percentages, ±0.25 on multipliers.
var (
	periodDeltas     = []int{-2, -1, 1, 2}
	thresholdDeltas  = []float64{-2.5, 2.5}
	multiplierDeltas = []float64{-0.25, 0.25}
)

// RefinementGrid generates small numeric perturbations of a winning
// descriptor, re-checking family constraints and dropping any variant that
// violates them. For composites it also tries the other two combine modes
// and per-sub parameter mutations. Produces roughly 20-30 variants.
func RefinementGrid(winner types.Descriptor) []types.Descriptor {
	switch winner.Kind {
	case types.FamilyDynamicCombo:
		return refineCombo(winner)
	case types.FamilyArbitrage:
		return refineArbitrage(winner)
	default:
		return refineSlotDescriptors(descriptor.ToSlot(winner))
	}
}

// refineSlotDescriptors perturbs one single-indicator slot's numeric fields
// and returns every variant that survives ValidateSlot.
func refineSlotDescriptors(slot types.IndicatorSlot) []types.Descriptor {
	var out []types.Descriptor
	for _, variant := range perturbSlot(slot) {
		if descriptor.ValidateSlot(variant) == nil {
			out = append(out, descriptor.FromSlot(variant))
		}
	}
	return out
}

// perturbSlot returns the family-specific set of single-field perturbations
// of one slot; the caller is responsible for validating each variant.
func perturbSlot(s types.IndicatorSlot) []types.IndicatorSlot {
	var out []types.IndicatorSlot
	switch s.Indicator {
	case types.FamilyRSI:
		p := *s.RSI
		for _, d := range periodDeltas {
			out = append(out, withRSI(s, types.RSIParams{Period: p.Period + d, Overbought: p.Overbought, Oversold: p.Oversold}))
		}
		for _, d := range thresholdDeltas {
			out = append(out, withRSI(s, types.RSIParams{Period: p.Period, Overbought: p.Overbought + d, Oversold: p.Oversold}))
			out = append(out, withRSI(s, types.RSIParams{Period: p.Period, Overbought: p.Overbought, Oversold: p.Oversold + d}))
		}
	case types.FamilyBollinger:
		p := *s.Bollinger
		for _, d := range periodDeltas {
			out = append(out, withBollinger(s, types.BollingerParams{Period: p.Period + d, K: p.K}))
		}
		for _, d := range multiplierDeltas {
			out = append(out, withBollinger(s, types.BollingerParams{Period: p.Period, K: p.K + d}))
		}
	case types.FamilyMACD:
		p := *s.MACD
		for _, d := range periodDeltas {
			out = append(out, withMACD(s, types.MACDParams{Fast: p.Fast + d, Slow: p.Slow, Signal: p.Signal}))
			out = append(out, withMACD(s, types.MACDParams{Fast: p.Fast, Slow: p.Slow + d, Signal: p.Signal}))
		}
	case types.FamilyEMACrossover:
		p := *s.EMACross
		for _, d := range periodDeltas {
			out = append(out, withEMACross(s, types.EMACrossParams{Fast: p.Fast + d, Slow: p.Slow}))
			out = append(out, withEMACross(s, types.EMACrossParams{Fast: p.Fast, Slow: p.Slow + d}))
		}
	case types.FamilyStochastic:
		p := *s.Stochastic
		for _, d := range periodDeltas {
			out = append(out, withStochastic(s, types.StochasticParams{Period: p.Period + d, Overbought: p.Overbought, Oversold: p.Oversold}))
		}
		for _, d := range thresholdDeltas {
			out = append(out, withStochastic(s, types.StochasticParams{Period: p.Period, Overbought: p.Overbought + d, Oversold: p.Oversold}))
			out = append(out, withStochastic(s, types.StochasticParams{Period: p.Period, Overbought: p.Overbought, Oversold: p.Oversold + d}))
		}
	case types.FamilyATRReversion:
		p := *s.ATR
		for _, d := range periodDeltas {
			out = append(out, withATR(s, types.ATRReversionParams{ATRPeriod: p.ATRPeriod + d, SMAPeriod: p.SMAPeriod, K: p.K}))
			out = append(out, withATR(s, types.ATRReversionParams{ATRPeriod: p.ATRPeriod, SMAPeriod: p.SMAPeriod + d, K: p.K}))
		}
		for _, d := range multiplierDeltas {
			out = append(out, withATR(s, types.ATRReversionParams{ATRPeriod: p.ATRPeriod, SMAPeriod: p.SMAPeriod, K: p.K + d}))
		}
	case types.FamilyVWAP:
		p := *s.VWAP
		for _, d := range periodDeltas {
			out = append(out, withVWAP(s, types.VWAPParams{Period: p.Period + d}))
		}
	case types.FamilyOBV:
		p := *s.OBV
		for _, d := range periodDeltas {
			out = append(out, withOBV(s, types.OBVParams{SMAPeriod: p.SMAPeriod + d}))
		}
	case types.FamilyWilliamsR:
		p := *s.WilliamsR
		for _, d := range periodDeltas {
			out = append(out, withWilliamsR(s, types.WilliamsRParams{Period: p.Period + d, Overbought: p.Overbought, Oversold: p.Oversold}))
		}
		for _, d := range thresholdDeltas {
			out = append(out, withWilliamsR(s, types.WilliamsRParams{Period: p.Period, Overbought: p.Overbought + d, Oversold: p.Oversold}))
			out = append(out, withWilliamsR(s, types.WilliamsRParams{Period: p.Period, Overbought: p.Overbought, Oversold: p.Oversold + d}))
		}
	case types.FamilyADX:
		p := *s.ADX
		for _, d := range periodDeltas {
			out = append(out, withADX(s, types.ADXParams{Period: p.Period + d, Threshold: p.Threshold}))
		}
		for _, d := range thresholdDeltas {
			out = append(out, withADX(s, types.ADXParams{Period: p.Period, Threshold: p.Threshold + d}))
		}
	}
	return out
}

func withRSI(s types.IndicatorSlot, p types.RSIParams) types.IndicatorSlot        { s.RSI = &p; return s }
func withBollinger(s types.IndicatorSlot, p types.BollingerParams) types.IndicatorSlot { s.Bollinger = &p; return s }
func withMACD(s types.IndicatorSlot, p types.MACDParams) types.IndicatorSlot      { s.MACD = &p; return s }
func withEMACross(s types.IndicatorSlot, p types.EMACrossParams) types.IndicatorSlot { s.EMACross = &p; return s }
func withStochastic(s types.IndicatorSlot, p types.StochasticParams) types.IndicatorSlot {
	s.Stochastic = &p
	return s
}
func withATR(s types.IndicatorSlot, p types.ATRReversionParams) types.IndicatorSlot { s.ATR = &p; return s }
func withVWAP(s types.IndicatorSlot, p types.VWAPParams) types.IndicatorSlot        { s.VWAP = &p; return s }
func withOBV(s types.IndicatorSlot, p types.OBVParams) types.IndicatorSlot          { s.OBV = &p; return s }
func withWilliamsR(s types.IndicatorSlot, p types.WilliamsRParams) types.IndicatorSlot {
	s.WilliamsR = &p
	return s
}
func withADX(s types.IndicatorSlot, p types.ADXParams) types.IndicatorSlot { s.ADX = &p; return s }

// refineCombo tries the other two combine modes plus, for each sub-slot, the
// numeric perturbations of that slot alone (holding siblings fixed).
func refineCombo(winner types.Descriptor) []types.Descriptor {
	combo := winner.Combo
	var out []types.Descriptor

	for _, mode := range types.AllCombineModes() {
		if mode == combo.CombineMode {
			continue
		}
		variant := cloneCombo(*combo)
		variant.CombineMode = mode
		if descriptor.ValidateCombo(variant) == nil {
			out = append(out, types.Descriptor{Kind: types.FamilyDynamicCombo, Combo: &variant})
		}
	}

	for slotIdx, slot := range combo.Params {
		for _, perturbed := range perturbSlot(slot) {
			if descriptor.ValidateSlot(perturbed) != nil {
				continue
			}
			variant := cloneCombo(*combo)
			variant.Params[slotIdx] = perturbed
			if descriptor.ValidateCombo(variant) == nil {
				out = append(out, types.Descriptor{Kind: types.FamilyDynamicCombo, Combo: &variant})
			}
		}
	}

	return out
}

func cloneCombo(c types.ComboParams) types.ComboParams {
	indicators := make([]types.Family, len(c.Indicators))
	copy(indicators, c.Indicators)
	params := make([]types.IndicatorSlot, len(c.Params))
	copy(params, c.Params)
	return types.ComboParams{Indicators: indicators, Params: params, CombineMode: c.CombineMode}
}

// refineArbitrage perturbs the arbitrage descriptor's three numeric knobs.
func refineArbitrage(winner types.Descriptor) []types.Descriptor {
	a := *winner.Arbitrage
	var out []types.Descriptor
	for _, d := range multiplierDeltas {
		candidates := []types.ArbitrageParams{
			{MaxPairCost: a.MaxPairCost + d*0.04, BidOffset: a.BidOffset, SpreadMultiplier: a.SpreadMultiplier},
			{MaxPairCost: a.MaxPairCost, BidOffset: a.BidOffset + d*0.04, SpreadMultiplier: a.SpreadMultiplier},
			{MaxPairCost: a.MaxPairCost, BidOffset: a.BidOffset, SpreadMultiplier: a.SpreadMultiplier + d},
		}
		for _, c := range candidates {
			if descriptor.ValidateArbitrage(c) == nil {
				cc := c
				out = append(out, types.Descriptor{Kind: types.FamilyArbitrage, Arbitrage: &cc})
			}
		}
	}
	return out
}
