package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// Bollinger bands: Buy below the lower band, Sell above the upper band,
// confidence proportional to how far outside the band close has moved,
// relative to the band's own width. Holds while bandwidth <= 0.
type Bollinger struct {
	period int
	k      decimal.Decimal

	window []decimal.Decimal
}

func NewBollinger(p types.BollingerParams) *Bollinger {
	return &Bollinger{period: p.Period, k: decimal.NewFromFloat(p.K)}
}

func (b *Bollinger) Name() string { return fmt.Sprintf("bollinger(%d,%s)", b.period, b.k) }

func (b *Bollinger) Reset() { b.window = nil }

func (b *Bollinger) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	b.window = append(b.window, bar.Close)
	if len(b.window) > b.period {
		b.window = b.window[1:]
	}
	if len(b.window) < b.period {
		return types.SignalHold, decimal.Zero
	}

	n := decimal.NewFromInt(int64(len(b.window)))
	sum := decimal.Zero
	for _, v := range b.window {
		sum = sum.Add(v)
	}
	mean := sum.Div(n)

	variance := decimal.Zero
	for _, v := range b.window {
		d := v.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(n)
	stddev := utils.SqrtDecimal(variance)

	upper := mean.Add(b.k.Mul(stddev))
	lower := mean.Sub(b.k.Mul(stddev))
	bandwidth := upper.Sub(lower)

	if bandwidth.LessThanOrEqual(decimal.Zero) {
		return types.SignalHold, decimal.Zero
	}

	close := bar.Close
	switch {
	case close.LessThan(lower):
		conf := lower.Sub(close).Div(bandwidth)
		return types.SignalBuy, clampConfidence(conf)
	case close.GreaterThan(upper):
		conf := close.Sub(upper).Div(bandwidth)
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
