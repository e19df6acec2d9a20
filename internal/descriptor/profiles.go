package descriptor

import (
	"github.com/mitchellh/mapstructure"

	"github.com/atlas-desktop/discover/pkg/config"
	"github.com/atlas-desktop/discover/pkg/types"
)

// overrides holds optional numeric overrides loaded from a profile YAML
// file, applied on top of the built-in per-family presets in SlotFor.
var overrides config.ProfileOverrides

// SetProfileOverrides installs numeric overrides loaded by
// config.LoadProfileOverrides. Passing nil reverts to the built-in presets.
func SetProfileOverrides(o config.ProfileOverrides) {
	overrides = o
}

// applyOverrides merges any configured field overrides onto a preset slot
// in place, leaving fields absent from the override map untouched.
func applyOverrides(indicator types.Family, profile Profile, dst any) {
	fields := overrides.For(string(indicator), string(profile))
	if len(fields) == 0 {
		return
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return
	}
	_ = decoder.Decode(fields)
}

// Profile names one of the three numeric parameter presets used by the
// Phase-1 grid and the refinement grid.
type Profile string

const (
	ProfileDefault      Profile = "default"
	ProfileAggressive   Profile = "aggressive"
	ProfileConservative Profile = "conservative"
)

// AllProfiles lists every profile in a stable order.
func AllProfiles() []Profile {
	return []Profile{ProfileDefault, ProfileAggressive, ProfileConservative}
}

// BaseIndicators lists the 10 base indicator families the grid combines.
func BaseIndicators() []types.Family {
	return []types.Family{
		types.FamilyRSI,
		types.FamilyBollinger,
		types.FamilyMACD,
		types.FamilyEMACrossover,
		types.FamilyStochastic,
		types.FamilyATRReversion,
		types.FamilyVWAP,
		types.FamilyOBV,
		types.FamilyWilliamsR,
		types.FamilyADX,
	}
}

// SlotFor returns the parameterised IndicatorSlot for one base indicator
// under one profile. Aggressive profiles use tighter thresholds/shorter
// periods (more signals); conservative profiles use wider thresholds/longer
// periods (fewer, higher-conviction signals).
func SlotFor(ind types.Family, profile Profile) types.IndicatorSlot {
	switch ind {
	case types.FamilyRSI:
		p := map[Profile]types.RSIParams{
			ProfileDefault:      {Period: 14, Overbought: 70, Oversold: 30},
			ProfileAggressive:   {Period: 9, Overbought: 65, Oversold: 35},
			ProfileConservative: {Period: 21, Overbought: 80, Oversold: 20},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, RSI: &p}
	case types.FamilyBollinger:
		p := map[Profile]types.BollingerParams{
			ProfileDefault:      {Period: 20, K: 2.0},
			ProfileAggressive:   {Period: 14, K: 1.5},
			ProfileConservative: {Period: 30, K: 2.5},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, Bollinger: &p}
	case types.FamilyMACD:
		p := map[Profile]types.MACDParams{
			ProfileDefault:      {Fast: 12, Slow: 26, Signal: 9},
			ProfileAggressive:   {Fast: 8, Slow: 17, Signal: 6},
			ProfileConservative: {Fast: 19, Slow: 39, Signal: 12},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, MACD: &p}
	case types.FamilyEMACrossover:
		p := map[Profile]types.EMACrossParams{
			ProfileDefault:      {Fast: 9, Slow: 21},
			ProfileAggressive:   {Fast: 5, Slow: 13},
			ProfileConservative: {Fast: 20, Slow: 50},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, EMACross: &p}
	case types.FamilyStochastic:
		p := map[Profile]types.StochasticParams{
			ProfileDefault:      {Period: 14, Overbought: 80, Oversold: 20},
			ProfileAggressive:   {Period: 9, Overbought: 75, Oversold: 25},
			ProfileConservative: {Period: 21, Overbought: 85, Oversold: 15},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, Stochastic: &p}
	case types.FamilyATRReversion:
		p := map[Profile]types.ATRReversionParams{
			ProfileDefault:      {ATRPeriod: 14, SMAPeriod: 20, K: 1.5},
			ProfileAggressive:   {ATRPeriod: 9, SMAPeriod: 14, K: 1.0},
			ProfileConservative: {ATRPeriod: 21, SMAPeriod: 30, K: 2.0},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, ATR: &p}
	case types.FamilyVWAP:
		p := map[Profile]types.VWAPParams{
			ProfileDefault:      {Period: 20},
			ProfileAggressive:   {Period: 10},
			ProfileConservative: {Period: 40},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, VWAP: &p}
	case types.FamilyOBV:
		p := map[Profile]types.OBVParams{
			ProfileDefault:      {SMAPeriod: 20},
			ProfileAggressive:   {SMAPeriod: 10},
			ProfileConservative: {SMAPeriod: 30},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, OBV: &p}
	case types.FamilyWilliamsR:
		p := map[Profile]types.WilliamsRParams{
			ProfileDefault:      {Period: 14, Overbought: -20, Oversold: -80},
			ProfileAggressive:   {Period: 9, Overbought: -10, Oversold: -70},
			ProfileConservative: {Period: 21, Overbought: -25, Oversold: -90},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, WilliamsR: &p}
	case types.FamilyADX:
		p := map[Profile]types.ADXParams{
			ProfileDefault:      {Period: 14, Threshold: 25},
			ProfileAggressive:   {Period: 9, Threshold: 20},
			ProfileConservative: {Period: 21, Threshold: 30},
		}[profile]
		applyOverrides(ind, profile, &p)
		return types.IndicatorSlot{Indicator: ind, ADX: &p}
	}
	return types.IndicatorSlot{}
}

// ArbitrageSweepValues enumerates the 4x4x3 numeric tuples for the Phase-1
// arbitrage sweep (§4.2): 48 combinations.
func ArbitrageSweepValues() (maxPairCost, bidOffset, spreadMultiplier []float64) {
	return []float64{0.90, 0.95, 0.98, 0.999},
		[]float64{0.0, 0.01, 0.02, 0.03},
		[]float64{1.0, 1.5, 2.0}
}
