package paramspace

import (
	"math/rand"
	"sort"

	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
)

// MLGuidedBudget is min(300 + 50*(cycle-3), 1000), per spec §4.2.
func MLGuidedBudget(cycle int) int {
	budget := 300 + 50*(cycle-3)
	if budget > 1000 {
		budget = 1000
	}
	if budget < 0 {
		budget = 0
	}
	return budget
}

// MLGuided produces the evolutionary grid for cycle >= 3: 60% exploitation
// (perturb the top-30 prior results), 20% crossover (recombine pairs of
// same-family parents), 20% exploration (uniformly random descriptors).
func MLGuided(cycle int, topResults []types.DiscoveryResult, rng *rand.Rand) []types.Descriptor {
	budget := MLGuidedBudget(cycle)
	if budget == 0 {
		return nil
	}

	exploitN := budget * 60 / 100
	crossoverN := budget * 20 / 100
	explorationN := budget - exploitN - crossoverN

	parents := topN(topResults, 30)

	var out []types.Descriptor
	out = append(out, exploitation(parents, exploitN, rng)...)
	out = append(out, crossover(parents, crossoverN, rng)...)
	out = append(out, exploration(explorationN, rng)...)
	return out
}

func topN(results []types.DiscoveryResult, n int) []types.DiscoveryResult {
	sorted := make([]types.DiscoveryResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompositeScore.GreaterThan(sorted[j].CompositeScore)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// exploitation perturbs each of parents' numeric parameters by a uniform
// factor in [0.85, 1.15], clamping to family bounds and re-checking
// constraints; a child that fails validation is dropped.
func exploitation(parents []types.DiscoveryResult, count int, rng *rand.Rand) []types.Descriptor {
	if len(parents) == 0 || count <= 0 {
		return nil
	}
	var out []types.Descriptor
	for i := 0; i < count; i++ {
		parent := parents[i%len(parents)].Descriptor
		if child := mutateDescriptor(parent, rng); child != nil {
			out = append(out, *child)
		}
	}
	return out
}

func mutationFactor(rng *rand.Rand) float64 {
	return 0.85 + rng.Float64()*0.30
}

// mutateDescriptor scales every numeric field by an independent mutation
// factor, clamps to family bounds, and validates; returns nil on failure.
func mutateDescriptor(d types.Descriptor, rng *rand.Rand) *types.Descriptor {
	switch d.Kind {
	case types.FamilyDynamicCombo:
		combo := cloneCombo(*d.Combo)
		for i, slot := range combo.Params {
			combo.Params[i] = mutateSlot(slot, rng)
		}
		if descriptor.ValidateCombo(combo) != nil {
			return nil
		}
		return &types.Descriptor{Kind: types.FamilyDynamicCombo, Combo: &combo}
	case types.FamilyArbitrage:
		a := *d.Arbitrage
		a.MaxPairCost = utils.ClampFloat(a.MaxPairCost*mutationFactor(rng), 0.01, 2.0)
		a.BidOffset = utils.ClampFloat(a.BidOffset*mutationFactor(rng), 0, 0.5)
		a.SpreadMultiplier = utils.ClampFloat(a.SpreadMultiplier*mutationFactor(rng), 0.01, 5.0)
		if descriptor.ValidateArbitrage(a) != nil {
			return nil
		}
		return &types.Descriptor{Kind: types.FamilyArbitrage, Arbitrage: &a}
	default:
		slot := mutateSlot(descriptor.ToSlot(d), rng)
		if descriptor.ValidateSlot(slot) != nil {
			return nil
		}
		result := descriptor.FromSlot(slot)
		return &result
	}
}

// mutateSlot scales one indicator's numeric fields and clamps to family
// bounds; it does not validate — the caller does that after assembly.
func mutateSlot(s types.IndicatorSlot, rng *rand.Rand) types.IndicatorSlot {
	scaleInt := func(v int) int {
		return int(utils.ClampFloat(float64(v)*mutationFactor(rng), 2, 100))
	}
	scaleFloat := func(v, lo, hi float64) float64 {
		return utils.ClampFloat(v*mutationFactor(rng), lo, hi)
	}

	switch s.Indicator {
	case types.FamilyRSI:
		p := *s.RSI
		s.RSI = &types.RSIParams{Period: scaleInt(p.Period), Overbought: scaleFloat(p.Overbought, 50, 95), Oversold: scaleFloat(p.Oversold, 5, 49)}
	case types.FamilyBollinger:
		p := *s.Bollinger
		s.Bollinger = &types.BollingerParams{Period: scaleInt(p.Period), K: scaleFloat(p.K, 0.5, 4.0)}
	case types.FamilyMACD:
		p := *s.MACD
		s.MACD = &types.MACDParams{Fast: scaleInt(p.Fast), Slow: scaleInt(p.Slow), Signal: scaleInt(p.Signal)}
	case types.FamilyEMACrossover:
		p := *s.EMACross
		s.EMACross = &types.EMACrossParams{Fast: scaleInt(p.Fast), Slow: scaleInt(p.Slow)}
	case types.FamilyStochastic:
		p := *s.Stochastic
		s.Stochastic = &types.StochasticParams{Period: scaleInt(p.Period), Overbought: scaleFloat(p.Overbought, 50, 95), Oversold: scaleFloat(p.Oversold, 5, 49)}
	case types.FamilyATRReversion:
		p := *s.ATR
		s.ATR = &types.ATRReversionParams{ATRPeriod: scaleInt(p.ATRPeriod), SMAPeriod: scaleInt(p.SMAPeriod), K: scaleFloat(p.K, 0.25, 4.0)}
	case types.FamilyVWAP:
		p := *s.VWAP
		s.VWAP = &types.VWAPParams{Period: scaleInt(p.Period)}
	case types.FamilyOBV:
		p := *s.OBV
		s.OBV = &types.OBVParams{SMAPeriod: scaleInt(p.SMAPeriod)}
	case types.FamilyWilliamsR:
		p := *s.WilliamsR
		s.WilliamsR = &types.WilliamsRParams{Period: scaleInt(p.Period), Overbought: scaleFloat(p.Overbought, -30, -5), Oversold: scaleFloat(p.Oversold, -95, -65)}
	case types.FamilyADX:
		p := *s.ADX
		s.ADX = &types.ADXParams{Period: scaleInt(p.Period), Threshold: scaleFloat(p.Threshold, 5, 60)}
	}
	return s
}

// crossover recombines pairs of same-family parents, independently choosing
// each parameter from one parent or the other; DynamicCombo parents must
// share an identical indicator set. Differing families fall back to a
// mutation of the higher-scoring parent.
func crossover(parents []types.DiscoveryResult, count int, rng *rand.Rand) []types.Descriptor {
	if len(parents) < 2 || count <= 0 {
		return nil
	}
	var out []types.Descriptor
	for i := 0; i < count; i++ {
		a := parents[rng.Intn(len(parents))]
		b := parents[rng.Intn(len(parents))]
		if child := crossDescriptors(a, b, rng); child != nil {
			out = append(out, *child)
		}
	}
	return out
}

func crossDescriptors(a, b types.DiscoveryResult, rng *rand.Rand) *types.Descriptor {
	if a.Descriptor.Kind != b.Descriptor.Kind {
		better := a
		if b.CompositeScore.GreaterThan(a.CompositeScore) {
			better = b
		}
		return mutateDescriptor(better.Descriptor, rng)
	}

	switch a.Descriptor.Kind {
	case types.FamilyDynamicCombo:
		return crossCombos(a.Descriptor, b.Descriptor, rng)
	case types.FamilyArbitrage:
		pick := func(x, y float64) float64 {
			if rng.Intn(2) == 0 {
				return x
			}
			return y
		}
		av, bv := *a.Descriptor.Arbitrage, *b.Descriptor.Arbitrage
		child := types.ArbitrageParams{
			MaxPairCost:      pick(av.MaxPairCost, bv.MaxPairCost),
			BidOffset:        pick(av.BidOffset, bv.BidOffset),
			SpreadMultiplier: pick(av.SpreadMultiplier, bv.SpreadMultiplier),
		}
		if descriptor.ValidateArbitrage(child) != nil {
			return nil
		}
		return &types.Descriptor{Kind: types.FamilyArbitrage, Arbitrage: &child}
	default:
		slotA := descriptor.ToSlot(a.Descriptor)
		slotB := descriptor.ToSlot(b.Descriptor)
		child := crossSlot(slotA, slotB, rng)
		if descriptor.ValidateSlot(child) != nil {
			return nil
		}
		result := descriptor.FromSlot(child)
		return &result
	}
}

// crossCombos requires identical indicator sets (same family and order);
// each slot's params and the overall combine mode are chosen from one
// parent or the other. Returns nil if the indicator sets differ.
func crossCombos(a, b types.Descriptor, rng *rand.Rand) *types.Descriptor {
	comboA, comboB := a.Combo, b.Combo
	if len(comboA.Indicators) != len(comboB.Indicators) {
		return nil
	}
	for i, ind := range comboA.Indicators {
		if comboB.Indicators[i] != ind {
			return nil
		}
	}

	params := make([]types.IndicatorSlot, len(comboA.Params))
	for i := range params {
		if rng.Intn(2) == 0 {
			params[i] = comboA.Params[i]
		} else {
			params[i] = comboB.Params[i]
		}
	}
	mode := comboA.CombineMode
	if rng.Intn(2) == 1 {
		mode = comboB.CombineMode
	}

	child := types.ComboParams{Indicators: comboA.Indicators, Params: params, CombineMode: mode}
	if descriptor.ValidateCombo(child) != nil {
		return nil
	}
	return &types.Descriptor{Kind: types.FamilyDynamicCombo, Combo: &child}
}

func crossSlot(a, b types.IndicatorSlot, rng *rand.Rand) types.IndicatorSlot {
	pick := func(x, y int) int {
		if rng.Intn(2) == 0 {
			return x
		}
		return y
	}
	pickF := func(x, y float64) float64 {
		if rng.Intn(2) == 0 {
			return x
		}
		return y
	}

	switch a.Indicator {
	case types.FamilyRSI:
		return types.IndicatorSlot{Indicator: a.Indicator, RSI: &types.RSIParams{
			Period: pick(a.RSI.Period, b.RSI.Period), Overbought: pickF(a.RSI.Overbought, b.RSI.Overbought), Oversold: pickF(a.RSI.Oversold, b.RSI.Oversold),
		}}
	case types.FamilyBollinger:
		return types.IndicatorSlot{Indicator: a.Indicator, Bollinger: &types.BollingerParams{
			Period: pick(a.Bollinger.Period, b.Bollinger.Period), K: pickF(a.Bollinger.K, b.Bollinger.K),
		}}
	case types.FamilyMACD:
		return types.IndicatorSlot{Indicator: a.Indicator, MACD: &types.MACDParams{
			Fast: pick(a.MACD.Fast, b.MACD.Fast), Slow: pick(a.MACD.Slow, b.MACD.Slow), Signal: pick(a.MACD.Signal, b.MACD.Signal),
		}}
	case types.FamilyEMACrossover:
		return types.IndicatorSlot{Indicator: a.Indicator, EMACross: &types.EMACrossParams{
			Fast: pick(a.EMACross.Fast, b.EMACross.Fast), Slow: pick(a.EMACross.Slow, b.EMACross.Slow),
		}}
	case types.FamilyStochastic:
		return types.IndicatorSlot{Indicator: a.Indicator, Stochastic: &types.StochasticParams{
			Period: pick(a.Stochastic.Period, b.Stochastic.Period), Overbought: pickF(a.Stochastic.Overbought, b.Stochastic.Overbought), Oversold: pickF(a.Stochastic.Oversold, b.Stochastic.Oversold),
		}}
	case types.FamilyATRReversion:
		return types.IndicatorSlot{Indicator: a.Indicator, ATR: &types.ATRReversionParams{
			ATRPeriod: pick(a.ATR.ATRPeriod, b.ATR.ATRPeriod), SMAPeriod: pick(a.ATR.SMAPeriod, b.ATR.SMAPeriod), K: pickF(a.ATR.K, b.ATR.K),
		}}
	case types.FamilyVWAP:
		return types.IndicatorSlot{Indicator: a.Indicator, VWAP: &types.VWAPParams{Period: pick(a.VWAP.Period, b.VWAP.Period)}}
	case types.FamilyOBV:
		return types.IndicatorSlot{Indicator: a.Indicator, OBV: &types.OBVParams{SMAPeriod: pick(a.OBV.SMAPeriod, b.OBV.SMAPeriod)}}
	case types.FamilyWilliamsR:
		return types.IndicatorSlot{Indicator: a.Indicator, WilliamsR: &types.WilliamsRParams{
			Period: pick(a.WilliamsR.Period, b.WilliamsR.Period), Overbought: pickF(a.WilliamsR.Overbought, b.WilliamsR.Overbought), Oversold: pickF(a.WilliamsR.Oversold, b.WilliamsR.Oversold),
		}}
	case types.FamilyADX:
		return types.IndicatorSlot{Indicator: a.Indicator, ADX: &types.ADXParams{
			Period: pick(a.ADX.Period, b.ADX.Period), Threshold: pickF(a.ADX.Threshold, b.ADX.Threshold),
		}}
	}
	return a
}

// exploration draws purely random descriptors: 95% DynamicCombo (2-4
// indicators, uniformly random params), 5% random arbitrage tuples.
func exploration(count int, rng *rand.Rand) []types.Descriptor {
	var out []types.Descriptor
	for i := 0; i < count; i++ {
		if rng.Float64() < 0.05 {
			out = append(out, types.Descriptor{
				Kind: types.FamilyArbitrage,
				Arbitrage: &types.ArbitrageParams{
					MaxPairCost:      0.80 + rng.Float64()*0.19,
					BidOffset:        rng.Float64() * 0.04,
					SpreadMultiplier: 0.5 + rng.Float64()*2.5,
				},
			})
			continue
		}
		if d := randomCombo(rng); d != nil {
			out = append(out, *d)
		}
	}
	return out
}
