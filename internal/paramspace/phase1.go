package paramspace

import (
	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/pkg/types"
)

// buildCombo assembles a DynamicCombo descriptor from a set of indicator
// indices into descriptor.BaseIndicators(), one profile applied uniformly
// across every sub-slot, and a combine mode.
func buildCombo(indices []int, profile descriptor.Profile, mode types.CombineMode) types.Descriptor {
	base := descriptor.BaseIndicators()
	indicators := make([]types.Family, len(indices))
	params := make([]types.IndicatorSlot, len(indices))
	for i, idx := range indices {
		ind := base[idx]
		indicators[i] = ind
		params[i] = descriptor.SlotFor(ind, profile)
	}
	return types.Descriptor{
		Kind: types.FamilyDynamicCombo,
		Combo: &types.ComboParams{
			Indicators:  indicators,
			Params:      params,
			CombineMode: mode,
		},
	}
}

// Phase1Grid builds the ~1 700-descriptor broad-scan grid per spec §4.2:
// all 2- and 3-combinations of the 10 base indicators across all 3 profiles
// and all 3 combine modes, all 4-combinations under the default profile and
// Majority only, and the 4x4x3 arbitrage sweep.
func Phase1Grid() []types.Descriptor {
	base := descriptor.BaseIndicators()
	var out []types.Descriptor

	for _, size := range []int{2, 3} {
		for _, indices := range choose(len(base), size) {
			for _, profile := range descriptor.AllProfiles() {
				for _, mode := range types.AllCombineModes() {
					out = append(out, buildCombo(indices, profile, mode))
				}
			}
		}
	}

	for _, indices := range choose(len(base), 4) {
		out = append(out, buildCombo(indices, descriptor.ProfileDefault, types.CombineMajority))
	}

	maxPairCosts, bidOffsets, spreadMultipliers := descriptor.ArbitrageSweepValues()
	for _, mpc := range maxPairCosts {
		for _, bo := range bidOffsets {
			for _, sm := range spreadMultipliers {
				out = append(out, types.Descriptor{
					Kind: types.FamilyArbitrage,
					Arbitrage: &types.ArbitrageParams{
						MaxPairCost:      mpc,
						BidOffset:        bo,
						SpreadMultiplier: sm,
					},
				})
			}
		}
	}

	return out
}
