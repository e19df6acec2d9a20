package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// OBV accumulates signed volume and compares it against its own SMA: a rise
// of OBV above its average is Buy, a fall below is Sell. Confidence is the
// normalised distance between OBV and its average.
type OBV struct {
	smaPeriod int

	sma       *utils.SMA
	obv       decimal.Decimal
	prevClose decimal.Decimal
	haveClose bool
}

func NewOBV(p types.OBVParams) *OBV {
	return &OBV{smaPeriod: p.SMAPeriod, sma: utils.NewSMA(p.SMAPeriod)}
}

func (o *OBV) Name() string { return fmt.Sprintf("obv(%d)", o.smaPeriod) }

func (o *OBV) Reset() {
	o.sma = utils.NewSMA(o.smaPeriod)
	o.obv = decimal.Zero
	o.haveClose = false
}

func (o *OBV) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	if !o.haveClose {
		o.prevClose = bar.Close
		o.haveClose = true
		o.sma.Add(o.obv)
		return types.SignalHold, decimal.Zero
	}

	switch {
	case bar.Close.GreaterThan(o.prevClose):
		o.obv = o.obv.Add(bar.Volume)
	case bar.Close.LessThan(o.prevClose):
		o.obv = o.obv.Sub(bar.Volume)
	}
	o.prevClose = bar.Close

	avg := o.sma.Add(o.obv)
	if !o.sma.Full() {
		return types.SignalHold, decimal.Zero
	}

	diff := o.obv.Sub(avg)
	scale := avg.Abs().Add(decimal.NewFromInt(1))
	conf := diff.Abs().Div(scale)

	switch {
	case diff.GreaterThan(decimal.Zero):
		return types.SignalBuy, clampConfidence(conf)
	case diff.LessThan(decimal.Zero):
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
