package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
)

// FromSlot builds a fresh single-indicator generator from a tagged slot.
func FromSlot(s types.IndicatorSlot) (Generator, error) {
	switch s.Indicator {
	case types.FamilyRSI:
		if s.RSI == nil {
			return nil, fmt.Errorf("signal: rsi slot missing params")
		}
		return NewRSI(*s.RSI), nil
	case types.FamilyBollinger:
		if s.Bollinger == nil {
			return nil, fmt.Errorf("signal: bollinger slot missing params")
		}
		return NewBollinger(*s.Bollinger), nil
	case types.FamilyMACD:
		if s.MACD == nil {
			return nil, fmt.Errorf("signal: macd slot missing params")
		}
		return NewMACD(*s.MACD), nil
	case types.FamilyEMACrossover:
		if s.EMACross == nil {
			return nil, fmt.Errorf("signal: ema_crossover slot missing params")
		}
		return NewEMACrossover(*s.EMACross), nil
	case types.FamilyStochastic:
		if s.Stochastic == nil {
			return nil, fmt.Errorf("signal: stochastic slot missing params")
		}
		return NewStochastic(*s.Stochastic), nil
	case types.FamilyATRReversion:
		if s.ATR == nil {
			return nil, fmt.Errorf("signal: atr_mean_reversion slot missing params")
		}
		return NewATRReversion(*s.ATR), nil
	case types.FamilyVWAP:
		if s.VWAP == nil {
			return nil, fmt.Errorf("signal: vwap slot missing params")
		}
		return NewVWAP(*s.VWAP), nil
	case types.FamilyOBV:
		if s.OBV == nil {
			return nil, fmt.Errorf("signal: obv slot missing params")
		}
		return NewOBV(*s.OBV), nil
	case types.FamilyWilliamsR:
		if s.WilliamsR == nil {
			return nil, fmt.Errorf("signal: williams_r slot missing params")
		}
		return NewWilliamsR(*s.WilliamsR), nil
	case types.FamilyADX:
		if s.ADX == nil {
			return nil, fmt.Errorf("signal: adx slot missing params")
		}
		return NewADX(*s.ADX), nil
	default:
		return nil, fmt.Errorf("signal: unsupported indicator family %q", s.Indicator)
	}
}

// Build constructs a fresh generator (or composite of generators) from a
// strategy descriptor. Arbitrage descriptors are not handled here; they are
// consumed directly by the arbitrage evaluator.
func Build(d types.Descriptor) (Generator, error) {
	switch d.Kind {
	case types.FamilyDynamicCombo:
		if d.Combo == nil {
			return nil, fmt.Errorf("signal: dynamic_combo missing params")
		}
		subs := make([]Generator, 0, len(d.Combo.Params))
		for _, slot := range d.Combo.Params {
			g, err := FromSlot(slot)
			if err != nil {
				return nil, err
			}
			subs = append(subs, g)
		}
		return NewComposite(subs, d.Combo.CombineMode), nil
	case types.FamilyArbitrage:
		return nil, fmt.Errorf("signal: arbitrage descriptors are evaluated by the arbitrage engine, not a generator")
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
		return FromSlot(slot)
	}
}
