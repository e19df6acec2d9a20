package types

import (
	"encoding/json"
	"fmt"
)

// Family names a strategy variant. Serialised as the JSON "type" tag.
type Family string

const (
	FamilyRSI           Family = "rsi"
	FamilyBollinger     Family = "bollinger"
	FamilyMACD          Family = "macd"
	FamilyEMACrossover  Family = "ema_crossover"
	FamilyStochastic    Family = "stochastic"
	FamilyATRReversion  Family = "atr_mean_reversion"
	FamilyVWAP          Family = "vwap"
	FamilyOBV           Family = "obv"
	FamilyWilliamsR     Family = "williams_r"
	FamilyADX           Family = "adx"
	FamilyDynamicCombo  Family = "dynamic_combo"
	FamilyArbitrage     Family = "arbitrage"
)

// CombineMode is how a DynamicCombo reconciles its sub-generators.
type CombineMode string

const (
	CombineUnanimous       CombineMode = "unanimous"
	CombineMajority        CombineMode = "majority"
	CombinePrimaryConfirmed CombineMode = "primary_confirmed"
)

// AllCombineModes lists every combine mode in a stable order.
func AllCombineModes() []CombineMode {
	return []CombineMode{CombineUnanimous, CombineMajority, CombinePrimaryConfirmed}
}

// RSIParams parameterises the RSI generator.
type RSIParams struct {
	Period     int     `json:"period"`
	Overbought float64 `json:"overbought"`
	Oversold   float64 `json:"oversold"`
}

// BollingerParams parameterises the Bollinger band generator.
type BollingerParams struct {
	Period int     `json:"period"`
	K      float64 `json:"k"`
}

// MACDParams parameterises the MACD generator.
type MACDParams struct {
	Fast   int `json:"fast"`
	Slow   int `json:"slow"`
	Signal int `json:"signal"`
}

// EMACrossParams parameterises the EMA crossover generator.
type EMACrossParams struct {
	Fast int `json:"fast"`
	Slow int `json:"slow"`
}

// StochasticParams parameterises the stochastic oscillator generator.
type StochasticParams struct {
	Period     int     `json:"period"`
	Overbought float64 `json:"overbought"`
	Oversold   float64 `json:"oversold"`
}

// ATRReversionParams parameterises the ATR mean-reversion generator.
type ATRReversionParams struct {
	ATRPeriod int     `json:"atr_period"`
	SMAPeriod int     `json:"sma_period"`
	K         float64 `json:"k"`
}

// VWAPParams parameterises the VWAP generator.
type VWAPParams struct {
	Period int `json:"period"`
}

// OBVParams parameterises the OBV generator.
type OBVParams struct {
	SMAPeriod int `json:"sma_period"`
}

// WilliamsRParams parameterises the Williams %R generator.
type WilliamsRParams struct {
	Period     int     `json:"period"`
	Overbought float64 `json:"overbought"`
	Oversold   float64 `json:"oversold"`
}

// ADXParams parameterises the ADX/directional-movement generator.
type ADXParams struct {
	Period    int     `json:"period"`
	Threshold float64 `json:"threshold"`
}

// ArbitrageParams parameterises the paired-outcome arbitrage evaluator.
type ArbitrageParams struct {
	MaxPairCost     float64 `json:"max_pair_cost"`
	BidOffset       float64 `json:"bid_offset"`
	SpreadMultiplier float64 `json:"spread_multiplier"`
}

// IndicatorSlot is one sub-generator's tagged parameters inside a DynamicCombo.
// Exactly one of the pointer fields is non-nil, selected by Indicator.
type IndicatorSlot struct {
	Indicator  Family              `json:"indicator"`
	RSI        *RSIParams          `json:"rsi,omitempty"`
	Bollinger  *BollingerParams    `json:"bollinger,omitempty"`
	MACD       *MACDParams         `json:"macd,omitempty"`
	EMACross   *EMACrossParams     `json:"ema_crossover,omitempty"`
	Stochastic *StochasticParams   `json:"stochastic,omitempty"`
	ATR        *ATRReversionParams `json:"atr_mean_reversion,omitempty"`
	VWAP       *VWAPParams         `json:"vwap,omitempty"`
	OBV        *OBVParams          `json:"obv,omitempty"`
	WilliamsR  *WilliamsRParams    `json:"williams_r,omitempty"`
	ADX        *ADXParams          `json:"adx,omitempty"`
}

// ComboParams parameterises a DynamicCombo: an ordered, duplicate-free
// set of 2-4 sub-generators reconciled by CombineMode.
type ComboParams struct {
	Indicators  []Family        `json:"indicators"`
	Params      []IndicatorSlot `json:"params"`
	CombineMode CombineMode     `json:"combine_mode"`
}

// Descriptor is the tagged-variant strategy identity. Exactly one of the
// pointer fields matching Kind is non-nil.
type Descriptor struct {
	Kind       Family `json:"type"`
	RSI        *RSIParams          `json:"rsi,omitempty"`
	Bollinger  *BollingerParams    `json:"bollinger,omitempty"`
	MACD       *MACDParams         `json:"macd,omitempty"`
	EMACross   *EMACrossParams     `json:"ema_crossover,omitempty"`
	Stochastic *StochasticParams   `json:"stochastic,omitempty"`
	ATR        *ATRReversionParams `json:"atr_mean_reversion,omitempty"`
	VWAP       *VWAPParams         `json:"vwap,omitempty"`
	OBV        *OBVParams          `json:"obv,omitempty"`
	WilliamsR  *WilliamsRParams    `json:"williams_r,omitempty"`
	ADX        *ADXParams          `json:"adx,omitempty"`
	Combo      *ComboParams        `json:"dynamic_combo,omitempty"`
	Arbitrage  *ArbitrageParams    `json:"arbitrage,omitempty"`
}

// MarshalJSON renders the descriptor as internally-tagged JSON: "type" plus
// the active family's fields flattened at the top level.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	type alias struct {
		Type string `json:"type"`
	}
	base := map[string]any{"type": string(d.Kind)}

	var payload any
	switch d.Kind {
	case FamilyRSI:
		payload = d.RSI
	case FamilyBollinger:
		payload = d.Bollinger
	case FamilyMACD:
		payload = d.MACD
	case FamilyEMACrossover:
		payload = d.EMACross
	case FamilyStochastic:
		payload = d.Stochastic
	case FamilyATRReversion:
		payload = d.ATR
	case FamilyVWAP:
		payload = d.VWAP
	case FamilyOBV:
		payload = d.OBV
	case FamilyWilliamsR:
		payload = d.WilliamsR
	case FamilyADX:
		payload = d.ADX
	case FamilyDynamicCombo:
		payload = d.Combo
	case FamilyArbitrage:
		payload = d.Arbitrage
	default:
		return nil, fmt.Errorf("descriptor: unknown family %q", d.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		base[k] = v
	}
	_ = alias{}
	return json.Marshal(base)
}

// UnmarshalJSON dispatches on the "type" tag to populate the matching field.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type Family `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	d.Kind = probe.Type
	switch probe.Type {
	case FamilyRSI:
		d.RSI = &RSIParams{}
		return json.Unmarshal(data, d.RSI)
	case FamilyBollinger:
		d.Bollinger = &BollingerParams{}
		return json.Unmarshal(data, d.Bollinger)
	case FamilyMACD:
		d.MACD = &MACDParams{}
		return json.Unmarshal(data, d.MACD)
	case FamilyEMACrossover:
		d.EMACross = &EMACrossParams{}
		return json.Unmarshal(data, d.EMACross)
	case FamilyStochastic:
		d.Stochastic = &StochasticParams{}
		return json.Unmarshal(data, d.Stochastic)
	case FamilyATRReversion:
		d.ATR = &ATRReversionParams{}
		return json.Unmarshal(data, d.ATR)
	case FamilyVWAP:
		d.VWAP = &VWAPParams{}
		return json.Unmarshal(data, d.VWAP)
	case FamilyOBV:
		d.OBV = &OBVParams{}
		return json.Unmarshal(data, d.OBV)
	case FamilyWilliamsR:
		d.WilliamsR = &WilliamsRParams{}
		return json.Unmarshal(data, d.WilliamsR)
	case FamilyADX:
		d.ADX = &ADXParams{}
		return json.Unmarshal(data, d.ADX)
	case FamilyDynamicCombo:
		d.Combo = &ComboParams{}
		return json.Unmarshal(data, d.Combo)
	case FamilyArbitrage:
		d.Arbitrage = &ArbitrageParams{}
		return json.Unmarshal(data, d.Arbitrage)
	default:
		return fmt.Errorf("descriptor: unknown family %q", probe.Type)
	}
}

// Label returns a human-readable strategy name. For single indicators this is
// the family name; for combos it lists sub-indicators and the combine mode.
func (d Descriptor) Label() string {
	if d.Kind != FamilyDynamicCombo {
		return string(d.Kind)
	}
	if d.Combo == nil {
		return string(FamilyDynamicCombo)
	}
	name := "combo"
	for _, ind := range d.Combo.Indicators {
		name += "_" + string(ind)
	}
	return name + "_" + string(d.Combo.CombineMode)
}
