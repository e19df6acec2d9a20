package descriptor

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
)

// ErrInvalid wraps a construction-time family-constraint violation. Per the
// error taxonomy, a generator drops a descriptor that fails this check
// rather than evaluating it.
type ErrInvalid struct {
	Reason string
}

func (e *ErrInvalid) Error() string { return "invalid descriptor: " + e.Reason }

// ValidateSlot checks a single indicator's family constraints.
func ValidateSlot(s types.IndicatorSlot) error {
	switch s.Indicator {
	case types.FamilyRSI:
		if s.RSI == nil {
			return &ErrInvalid{"rsi: missing params"}
		}
		if s.RSI.Oversold >= s.RSI.Overbought {
			return &ErrInvalid{"rsi: oversold must be < overbought"}
		}
		if s.RSI.Period < 2 {
			return &ErrInvalid{"rsi: period must be >= 2"}
		}
	case types.FamilyBollinger:
		if s.Bollinger == nil {
			return &ErrInvalid{"bollinger: missing params"}
		}
		if s.Bollinger.Period < 2 || s.Bollinger.K <= 0 {
			return &ErrInvalid{"bollinger: period >= 2 and k > 0 required"}
		}
	case types.FamilyMACD:
		if s.MACD == nil {
			return &ErrInvalid{"macd: missing params"}
		}
		if s.MACD.Fast >= s.MACD.Slow {
			return &ErrInvalid{"macd: fast must be < slow"}
		}
		if s.MACD.Signal < 1 {
			return &ErrInvalid{"macd: signal must be >= 1"}
		}
	case types.FamilyEMACrossover:
		if s.EMACross == nil {
			return &ErrInvalid{"ema_crossover: missing params"}
		}
		if s.EMACross.Fast >= s.EMACross.Slow {
			return &ErrInvalid{"ema_crossover: fast must be < slow"}
		}
	case types.FamilyStochastic:
		if s.Stochastic == nil {
			return &ErrInvalid{"stochastic: missing params"}
		}
		if s.Stochastic.Oversold >= s.Stochastic.Overbought {
			return &ErrInvalid{"stochastic: oversold must be < overbought"}
		}
	case types.FamilyATRReversion:
		if s.ATR == nil {
			return &ErrInvalid{"atr_mean_reversion: missing params"}
		}
		if s.ATR.K <= 0 || s.ATR.ATRPeriod < 2 || s.ATR.SMAPeriod < 2 {
			return &ErrInvalid{"atr_mean_reversion: k > 0 and periods >= 2 required"}
		}
	case types.FamilyVWAP:
		if s.VWAP == nil || s.VWAP.Period < 2 {
			return &ErrInvalid{"vwap: period >= 2 required"}
		}
	case types.FamilyOBV:
		if s.OBV == nil || s.OBV.SMAPeriod < 2 {
			return &ErrInvalid{"obv: sma_period >= 2 required"}
		}
	case types.FamilyWilliamsR:
		if s.WilliamsR == nil {
			return &ErrInvalid{"williams_r: missing params"}
		}
		if s.WilliamsR.Overbought < -30 || s.WilliamsR.Overbought > -5 {
			return &ErrInvalid{"williams_r: overbought must be in [-30, -5]"}
		}
		if s.WilliamsR.Oversold < -95 || s.WilliamsR.Oversold > -65 {
			return &ErrInvalid{"williams_r: oversold must be in [-95, -65]"}
		}
	case types.FamilyADX:
		if s.ADX == nil || s.ADX.Period < 2 || s.ADX.Threshold <= 0 {
			return &ErrInvalid{"adx: period >= 2 and threshold > 0 required"}
		}
	default:
		return &ErrInvalid{fmt.Sprintf("unknown indicator family %q", s.Indicator)}
	}
	return nil
}

// ValidateCombo checks a DynamicCombo's structural and per-slot constraints.
func ValidateCombo(c types.ComboParams) error {
	if len(c.Indicators) < 2 || len(c.Indicators) > 4 {
		return &ErrInvalid{"combo: must have 2-4 indicators"}
	}
	if len(c.Indicators) != len(c.Params) {
		return &ErrInvalid{"combo: indicators and params length mismatch"}
	}
	seen := make(map[types.Family]bool, len(c.Indicators))
	for _, ind := range c.Indicators {
		if seen[ind] {
			return &ErrInvalid{"combo: duplicate indicator " + string(ind)}
		}
		seen[ind] = true
	}
	for i, slot := range c.Params {
		if slot.Indicator != c.Indicators[i] {
			return &ErrInvalid{"combo: params[i].indicator must match indicators[i]"}
		}
		if err := ValidateSlot(slot); err != nil {
			return err
		}
	}
	switch c.CombineMode {
	case types.CombineUnanimous, types.CombineMajority, types.CombinePrimaryConfirmed:
	default:
		return &ErrInvalid{"combo: unknown combine mode"}
	}
	return nil
}

// ValidateArbitrage checks the arbitrage descriptor's numeric bounds.
func ValidateArbitrage(a types.ArbitrageParams) error {
	if a.MaxPairCost <= 0 || a.MaxPairCost > 2 {
		return &ErrInvalid{"arbitrage: max_pair_cost must be in (0, 2]"}
	}
	if a.BidOffset < 0 || a.BidOffset > 0.5 {
		return &ErrInvalid{"arbitrage: bid_offset must be in [0, 0.5]"}
	}
	if a.SpreadMultiplier <= 0 {
		return &ErrInvalid{"arbitrage: spread_multiplier must be > 0"}
	}
	return nil
}

// Validate checks a full descriptor against its family's constraints.
func Validate(d types.Descriptor) error {
	switch d.Kind {
	case types.FamilyDynamicCombo:
		if d.Combo == nil {
			return &ErrInvalid{"dynamic_combo: missing params"}
		}
		return ValidateCombo(*d.Combo)
	case types.FamilyArbitrage:
		if d.Arbitrage == nil {
			return &ErrInvalid{"arbitrage: missing params"}
		}
		return ValidateArbitrage(*d.Arbitrage)
	default:
		slot := types.IndicatorSlot{
			Indicator:  d.Kind,
			RSI:        d.RSI,
			Bollinger:  d.Bollinger,
			MACD:       d.MACD,
			EMACross:   d.EMACross,
			Stochastic: d.Stochastic,
			ATR:        d.ATR,
			VWAP:       d.VWAP,
			OBV:        d.OBV,
			WilliamsR:  d.WilliamsR,
			ADX:        d.ADX,
		}
		return ValidateSlot(slot)
	}
}

// FromSlot builds a single-indicator Descriptor from an IndicatorSlot.
func FromSlot(s types.IndicatorSlot) types.Descriptor {
	return types.Descriptor{
		Kind:       s.Indicator,
		RSI:        s.RSI,
		Bollinger:  s.Bollinger,
		MACD:       s.MACD,
		EMACross:   s.EMACross,
		Stochastic: s.Stochastic,
		ATR:        s.ATR,
		VWAP:       s.VWAP,
		OBV:        s.OBV,
		WilliamsR:  s.WilliamsR,
		ADX:        s.ADX,
	}
}

// ToSlot extracts an IndicatorSlot view from a single-indicator Descriptor.
// For a combo or arbitrage descriptor the returned slot carries no params;
// callers must check Kind.
func ToSlot(d types.Descriptor) types.IndicatorSlot {
	return types.IndicatorSlot{
		Indicator:  d.Kind,
		RSI:        d.RSI,
		Bollinger:  d.Bollinger,
		MACD:       d.MACD,
		EMACross:   d.EMACross,
		Stochastic: d.Stochastic,
		ATR:        d.ATR,
		VWAP:       d.VWAP,
		OBV:        d.OBV,
		WilliamsR:  d.WilliamsR,
		ADX:        d.ADX,
	}
}
