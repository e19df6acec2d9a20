package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// VWAP is a rolling typical-price*volume average over `period` bars.
// Buy if close < VWAP, Sell if close > VWAP.
type VWAP struct {
	period int

	tpv    []decimal.Decimal
	vol    []decimal.Decimal
	sumTPV decimal.Decimal
	sumVol decimal.Decimal
}

func NewVWAP(p types.VWAPParams) *VWAP {
	return &VWAP{period: p.Period}
}

func (v *VWAP) Name() string { return fmt.Sprintf("vwap(%d)", v.period) }

func (v *VWAP) Reset() {
	v.tpv = nil
	v.vol = nil
	v.sumTPV = decimal.Zero
	v.sumVol = decimal.Zero
}

func (v *VWAP) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	typical := bar.High.Add(bar.Low).Add(bar.Close).Div(decimal.NewFromInt(3))
	tpv := typical.Mul(bar.Volume)

	v.tpv = append(v.tpv, tpv)
	v.vol = append(v.vol, bar.Volume)
	v.sumTPV = v.sumTPV.Add(tpv)
	v.sumVol = v.sumVol.Add(bar.Volume)

	if len(v.tpv) > v.period {
		v.sumTPV = v.sumTPV.Sub(v.tpv[0])
		v.sumVol = v.sumVol.Sub(v.vol[0])
		v.tpv = v.tpv[1:]
		v.vol = v.vol[1:]
	}
	if len(v.tpv) < v.period || v.sumVol.IsZero() {
		return types.SignalHold, decimal.Zero
	}

	vwap := v.sumTPV.Div(v.sumVol)
	if vwap.IsZero() {
		return types.SignalHold, decimal.Zero
	}

	switch {
	case bar.Close.LessThan(vwap):
		conf := vwap.Sub(bar.Close).Div(vwap)
		return types.SignalBuy, clampConfidence(conf)
	case bar.Close.GreaterThan(vwap):
		conf := bar.Close.Sub(vwap).Div(vwap)
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
