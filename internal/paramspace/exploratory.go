package paramspace

import (
	"math/rand"

	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/pkg/types"
)

// ExploratoryCycle builds the work-set for one continuous-mode cycle per
// spec §4.2: cycle 0 is the Phase-1 grid; cycles 1-2 broaden coverage with
// fixed rules; cycle >= 3 is delegated to the caller (MLGuided).
func ExploratoryCycle(cycle int, rng *rand.Rand) []types.Descriptor {
	switch cycle {
	case 0:
		return Phase1Grid()
	case 1:
		return cycle1Grid()
	case 2:
		return cycle2Grid(rng)
	default:
		return nil
	}
}

func cycle1Grid() []types.Descriptor {
	base := descriptor.BaseIndicators()
	var out []types.Descriptor

	for _, indices := range choose(len(base), 4) {
		out = append(out, buildCombo(indices, descriptor.ProfileDefault, types.CombineUnanimous))
		out = append(out, buildCombo(indices, descriptor.ProfileDefault, types.CombinePrimaryConfirmed))
		out = append(out, buildCombo(indices, descriptor.ProfileAggressive, types.CombineMajority))
	}

	maxPairCosts, bidOffsets, spreadMultipliers := fineArbitrageSweepValues()
	for _, mpc := range maxPairCosts {
		for _, bo := range bidOffsets {
			for _, sm := range spreadMultipliers {
				out = append(out, types.Descriptor{
					Kind: types.FamilyArbitrage,
					Arbitrage: &types.ArbitrageParams{MaxPairCost: mpc, BidOffset: bo, SpreadMultiplier: sm},
				})
			}
		}
	}

	return out
}

func cycle2Grid(rng *rand.Rand) []types.Descriptor {
	base := descriptor.BaseIndicators()
	var out []types.Descriptor

	for _, indices := range choose(len(base), 2) {
		for _, modes := range [][2]descriptor.Profile{
			{descriptor.ProfileAggressive, descriptor.ProfileConservative},
			{descriptor.ProfileConservative, descriptor.ProfileAggressive},
		} {
			for _, mode := range types.AllCombineModes() {
				out = append(out, buildMixedProfilePair(base, indices, modes[0], modes[1], mode))
			}
		}
	}

	for i := 0; i < 200; i++ {
		if d := randomCombo(rng); d != nil {
			out = append(out, *d)
		}
	}

	maxPairCosts, bidOffsets, spreadMultipliers := extendedArbitrageSweepValues()
	for _, mpc := range maxPairCosts {
		for _, bo := range bidOffsets {
			for _, sm := range spreadMultipliers {
				out = append(out, types.Descriptor{
					Kind: types.FamilyArbitrage,
					Arbitrage: &types.ArbitrageParams{MaxPairCost: mpc, BidOffset: bo, SpreadMultiplier: sm},
				})
			}
		}
	}

	return out
}

func buildMixedProfilePair(base []types.Family, indices []int, profileA, profileB descriptor.Profile, mode types.CombineMode) types.Descriptor {
	indicators := []types.Family{base[indices[0]], base[indices[1]]}
	params := []types.IndicatorSlot{
		descriptor.SlotFor(indicators[0], profileA),
		descriptor.SlotFor(indicators[1], profileB),
	}
	return types.Descriptor{
		Kind: types.FamilyDynamicCombo,
		Combo: &types.ComboParams{Indicators: indicators, Params: params, CombineMode: mode},
	}
}

// randomCombo draws a uniformly random 2-4 indicator combo with uniformly
// random parameters within each family's bounds, returning nil if the
// resulting descriptor fails validation (constraint-violating draws are
// dropped rather than retried, per spec §7's InvalidDescriptor policy).
func randomCombo(rng *rand.Rand) *types.Descriptor {
	base := descriptor.BaseIndicators()
	n := 2 + rng.Intn(3) // 2..4
	perm := rng.Perm(len(base))[:n]

	indicators := make([]types.Family, n)
	params := make([]types.IndicatorSlot, n)
	for i, idx := range perm {
		indicators[i] = base[idx]
		params[i] = randomSlot(base[idx], rng)
	}
	modes := types.AllCombineModes()
	mode := modes[rng.Intn(len(modes))]

	combo := types.ComboParams{Indicators: indicators, Params: params, CombineMode: mode}
	if descriptor.ValidateCombo(combo) != nil {
		return nil
	}
	return &types.Descriptor{Kind: types.FamilyDynamicCombo, Combo: &combo}
}

// randomSlot draws uniformly random numeric parameters for one family,
// within the bounds the profiles table already uses as its default range.
func randomSlot(ind types.Family, rng *rand.Rand) types.IndicatorSlot {
	randInt := func(lo, hi int) int { return lo + rng.Intn(hi-lo+1) }
	randFloat := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	switch ind {
	case types.FamilyRSI:
		p := types.RSIParams{Period: randInt(5, 30), Overbought: randFloat(60, 85), Oversold: randFloat(10, 40)}
		return types.IndicatorSlot{Indicator: ind, RSI: &p}
	case types.FamilyBollinger:
		p := types.BollingerParams{Period: randInt(10, 40), K: randFloat(1.0, 3.0)}
		return types.IndicatorSlot{Indicator: ind, Bollinger: &p}
	case types.FamilyMACD:
		fast := randInt(5, 20)
		p := types.MACDParams{Fast: fast, Slow: fast + randInt(5, 25), Signal: randInt(3, 15)}
		return types.IndicatorSlot{Indicator: ind, MACD: &p}
	case types.FamilyEMACrossover:
		fast := randInt(3, 20)
		p := types.EMACrossParams{Fast: fast, Slow: fast + randInt(5, 40)}
		return types.IndicatorSlot{Indicator: ind, EMACross: &p}
	case types.FamilyStochastic:
		p := types.StochasticParams{Period: randInt(5, 30), Overbought: randFloat(70, 90), Oversold: randFloat(10, 30)}
		return types.IndicatorSlot{Indicator: ind, Stochastic: &p}
	case types.FamilyATRReversion:
		p := types.ATRReversionParams{ATRPeriod: randInt(5, 30), SMAPeriod: randInt(10, 40), K: randFloat(0.5, 3.0)}
		return types.IndicatorSlot{Indicator: ind, ATR: &p}
	case types.FamilyVWAP:
		p := types.VWAPParams{Period: randInt(5, 50)}
		return types.IndicatorSlot{Indicator: ind, VWAP: &p}
	case types.FamilyOBV:
		p := types.OBVParams{SMAPeriod: randInt(5, 40)}
		return types.IndicatorSlot{Indicator: ind, OBV: &p}
	case types.FamilyWilliamsR:
		p := types.WilliamsRParams{Period: randInt(5, 30), Overbought: randFloat(-30, -5), Oversold: randFloat(-95, -65)}
		return types.IndicatorSlot{Indicator: ind, WilliamsR: &p}
	case types.FamilyADX:
		p := types.ADXParams{Period: randInt(5, 30), Threshold: randFloat(15, 40)}
		return types.IndicatorSlot{Indicator: ind, ADX: &p}
	}
	return types.IndicatorSlot{Indicator: ind}
}

// fineArbitrageSweepValues is a denser version of the Phase-1 arbitrage
// sweep, used in cycle 1.
func fineArbitrageSweepValues() (maxPairCost, bidOffset, spreadMultiplier []float64) {
	return []float64{0.85, 0.90, 0.93, 0.95, 0.97, 0.98, 0.995, 0.999},
		[]float64{0.0, 0.005, 0.01, 0.015, 0.02, 0.03},
		[]float64{0.75, 1.0, 1.25, 1.5, 1.75, 2.0}
}

// extendedArbitrageSweepValues widens the sweep's range beyond Phase-1's
// bounds, used in cycle 2.
func extendedArbitrageSweepValues() (maxPairCost, bidOffset, spreadMultiplier []float64) {
	return []float64{0.70, 0.80, 0.90, 0.95, 0.98, 0.999},
		[]float64{0.0, 0.01, 0.02, 0.03, 0.05},
		[]float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0}
}
