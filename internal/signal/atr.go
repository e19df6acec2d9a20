package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// ATRReversion fades moves away from a simple moving average once the move
// exceeds k average-true-ranges: Buy if close < SMA - k*ATR, Sell if
// close > SMA + k*ATR.
type ATRReversion struct {
	atrPeriod, smaPeriod int
	k                    decimal.Decimal

	sma *utils.SMA

	prevClose decimal.Decimal
	haveClose bool
	trCount   int
	atr       decimal.Decimal
	warm      bool
}

func NewATRReversion(p types.ATRReversionParams) *ATRReversion {
	return &ATRReversion{
		atrPeriod: p.ATRPeriod, smaPeriod: p.SMAPeriod,
		k:   decimal.NewFromFloat(p.K),
		sma: utils.NewSMA(p.SMAPeriod),
	}
}

func (a *ATRReversion) Name() string {
	return fmt.Sprintf("atr_mean_reversion(%d,%d,%s)", a.atrPeriod, a.smaPeriod, a.k)
}

func (a *ATRReversion) Reset() {
	a.sma = utils.NewSMA(a.smaPeriod)
	a.haveClose = false
	a.trCount = 0
	a.atr = decimal.Zero
	a.warm = false
}

func (a *ATRReversion) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	sma := a.sma.Add(bar.Close)

	if !a.haveClose {
		a.prevClose = bar.Close
		a.haveClose = true
		return types.SignalHold, decimal.Zero
	}

	tr := decimal.Max(bar.High.Sub(bar.Low),
		bar.High.Sub(a.prevClose).Abs(),
		bar.Low.Sub(a.prevClose).Abs())
	a.prevClose = bar.Close
	a.trCount++

	periodDec := decimal.NewFromInt(int64(a.atrPeriod))
	if a.trCount < a.atrPeriod {
		a.atr = a.atr.Add(tr)
		return types.SignalHold, decimal.Zero
	}
	if !a.warm {
		a.atr = a.atr.Add(tr).Div(periodDec)
		a.warm = true
	} else {
		a.atr = a.atr.Mul(periodDec.Sub(decimal.NewFromInt(1))).Add(tr).Div(periodDec)
	}

	if !a.sma.Full() {
		return types.SignalHold, decimal.Zero
	}

	upper := sma.Add(a.k.Mul(a.atr))
	lower := sma.Sub(a.k.Mul(a.atr))

	if a.atr.IsZero() {
		return types.SignalHold, decimal.Zero
	}

	switch {
	case bar.Close.LessThan(lower):
		conf := lower.Sub(bar.Close).Div(a.atr)
		return types.SignalBuy, clampConfidence(conf)
	case bar.Close.GreaterThan(upper):
		conf := bar.Close.Sub(upper).Div(a.atr)
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
