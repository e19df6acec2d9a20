package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// WilliamsR is the %R oscillator: Buy below the oversold line,
// Sell above the overbought line.
type WilliamsR struct {
	period               int
	overbought, oversold decimal.Decimal

	window []types.Bar
}

func NewWilliamsR(p types.WilliamsRParams) *WilliamsR {
	return &WilliamsR{
		period:     p.Period,
		overbought: decimal.NewFromFloat(p.Overbought),
		oversold:   decimal.NewFromFloat(p.Oversold),
	}
}

func (w *WilliamsR) Name() string {
	return fmt.Sprintf("williams_r(%d,%s,%s)", w.period, w.overbought, w.oversold)
}

func (w *WilliamsR) Reset() { w.window = nil }

func (w *WilliamsR) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	w.window = append(w.window, bar)
	if len(w.window) > w.period {
		w.window = w.window[1:]
	}
	if len(w.window) < w.period {
		return types.SignalHold, decimal.Zero
	}

	high, low := w.window[0].High, w.window[0].Low
	for _, b := range w.window {
		if b.High.GreaterThan(high) {
			high = b.High
		}
		if b.Low.LessThan(low) {
			low = b.Low
		}
	}
	rng := high.Sub(low)
	if rng.IsZero() {
		return types.SignalHold, decimal.Zero
	}

	r := high.Sub(bar.Close).Div(rng).Mul(decimal.NewFromInt(-100))

	switch {
	case r.LessThan(w.oversold):
		conf := w.oversold.Sub(r).Div(decimal.NewFromInt(100).Add(w.oversold).Abs())
		return types.SignalBuy, clampConfidence(conf)
	case r.GreaterThan(w.overbought):
		conf := r.Sub(w.overbought).Div(w.overbought.Abs().Add(decimal.NewFromInt(1)))
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
