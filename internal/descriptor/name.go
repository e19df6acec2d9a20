package descriptor

import (
	"fmt"
	"strings"

	"github.com/atlas-desktop/discover/pkg/types"
)

// Name builds a human-readable strategy name for persistence and reporting,
// e.g. "RSI(14,70,30)", "Combo[RSI+MACD]:unanimous", or
// "Arbitrage(mpc=0.950,bo=0.010,sm=1.500)".
func Name(d types.Descriptor) string {
	switch d.Kind {
	case types.FamilyDynamicCombo:
		return comboName(*d.Combo)
	case types.FamilyArbitrage:
		a := d.Arbitrage
		return fmt.Sprintf("Arbitrage(mpc=%.3f,bo=%.3f,sm=%.3f)", a.MaxPairCost, a.BidOffset, a.SpreadMultiplier)
	default:
		return slotName(ToSlot(d))
	}
}

func comboName(c types.ComboParams) string {
	parts := make([]string, len(c.Indicators))
	for i, ind := range c.Indicators {
		parts[i] = familyLabel(ind)
	}
	return fmt.Sprintf("Combo[%s]:%s", strings.Join(parts, "+"), c.CombineMode)
}

func slotName(s types.IndicatorSlot) string {
	switch s.Indicator {
	case types.FamilyRSI:
		p := s.RSI
		return fmt.Sprintf("RSI(%d,%.0f,%.0f)", p.Period, p.Overbought, p.Oversold)
	case types.FamilyBollinger:
		p := s.Bollinger
		return fmt.Sprintf("Bollinger(%d,%.2f)", p.Period, p.K)
	case types.FamilyMACD:
		p := s.MACD
		return fmt.Sprintf("MACD(%d,%d,%d)", p.Fast, p.Slow, p.Signal)
	case types.FamilyEMACrossover:
		p := s.EMACross
		return fmt.Sprintf("EMACross(%d,%d)", p.Fast, p.Slow)
	case types.FamilyStochastic:
		p := s.Stochastic
		return fmt.Sprintf("Stochastic(%d,%.0f,%.0f)", p.Period, p.Overbought, p.Oversold)
	case types.FamilyATRReversion:
		p := s.ATR
		return fmt.Sprintf("ATRReversion(%d,%d,%.2f)", p.ATRPeriod, p.SMAPeriod, p.K)
	case types.FamilyVWAP:
		p := s.VWAP
		return fmt.Sprintf("VWAP(%d)", p.Period)
	case types.FamilyOBV:
		p := s.OBV
		return fmt.Sprintf("OBV(%d)", p.SMAPeriod)
	case types.FamilyWilliamsR:
		p := s.WilliamsR
		return fmt.Sprintf("WilliamsR(%d,%.0f,%.0f)", p.Period, p.Overbought, p.Oversold)
	case types.FamilyADX:
		p := s.ADX
		return fmt.Sprintf("ADX(%d,%.0f)", p.Period, p.Threshold)
	}
	return string(s.Indicator)
}

func familyLabel(ind types.Family) string {
	switch ind {
	case types.FamilyRSI:
		return "RSI"
	case types.FamilyBollinger:
		return "Bollinger"
	case types.FamilyMACD:
		return "MACD"
	case types.FamilyEMACrossover:
		return "EMACross"
	case types.FamilyStochastic:
		return "Stochastic"
	case types.FamilyATRReversion:
		return "ATRReversion"
	case types.FamilyVWAP:
		return "VWAP"
	case types.FamilyOBV:
		return "OBV"
	case types.FamilyWilliamsR:
		return "WilliamsR"
	case types.FamilyADX:
		return "ADX"
	}
	return string(ind)
}
