package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// ADX implements Wilder's average directional index. It holds while ADX is
// below threshold; once trending, Buy if +DI > -DI, Sell if -DI > +DI.
// Confidence is ADX/100.
type ADX struct {
	period    int
	threshold decimal.Decimal

	havePrev          bool
	prevHigh, prevLow, prevClose decimal.Decimal

	trSum, plusDMSum, minusDMSum decimal.Decimal
	smoothedTR, smoothedPlusDM, smoothedMinusDM decimal.Decimal
	trCount int

	dxSum   decimal.Decimal
	dxCount int
	adx     decimal.Decimal
	adxWarm bool
}

func NewADX(p types.ADXParams) *ADX {
	return &ADX{period: p.Period, threshold: decimal.NewFromFloat(p.Threshold)}
}

func (a *ADX) Name() string { return fmt.Sprintf("adx(%d,%s)", a.period, a.threshold) }

func (a *ADX) Reset() {
	*a = ADX{period: a.period, threshold: a.threshold}
}

func (a *ADX) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	if !a.havePrev {
		a.prevHigh, a.prevLow, a.prevClose = bar.High, bar.Low, bar.Close
		a.havePrev = true
		return types.SignalHold, decimal.Zero
	}

	upMove := bar.High.Sub(a.prevHigh)
	downMove := a.prevLow.Sub(bar.Low)

	var plusDM, minusDM decimal.Decimal
	if upMove.GreaterThan(decimal.Zero) && upMove.GreaterThan(downMove) {
		plusDM = upMove
	}
	if downMove.GreaterThan(decimal.Zero) && downMove.GreaterThan(upMove) {
		minusDM = downMove
	}

	tr := decimal.Max(bar.High.Sub(bar.Low),
		bar.High.Sub(a.prevClose).Abs(),
		bar.Low.Sub(a.prevClose).Abs())

	a.prevHigh, a.prevLow, a.prevClose = bar.High, bar.Low, bar.Close
	a.trCount++

	periodDec := decimal.NewFromInt(int64(a.period))
	if a.trCount <= a.period {
		a.trSum = a.trSum.Add(tr)
		a.plusDMSum = a.plusDMSum.Add(plusDM)
		a.minusDMSum = a.minusDMSum.Add(minusDM)
		if a.trCount < a.period {
			return types.SignalHold, decimal.Zero
		}
		a.smoothedTR = a.trSum
		a.smoothedPlusDM = a.plusDMSum
		a.smoothedMinusDM = a.minusDMSum
	} else {
		a.smoothedTR = a.smoothedTR.Sub(a.smoothedTR.Div(periodDec)).Add(tr)
		a.smoothedPlusDM = a.smoothedPlusDM.Sub(a.smoothedPlusDM.Div(periodDec)).Add(plusDM)
		a.smoothedMinusDM = a.smoothedMinusDM.Sub(a.smoothedMinusDM.Div(periodDec)).Add(minusDM)
	}

	if a.smoothedTR.IsZero() {
		return types.SignalHold, decimal.Zero
	}

	plusDI := a.smoothedPlusDM.Div(a.smoothedTR).Mul(decimal.NewFromInt(100))
	minusDI := a.smoothedMinusDM.Div(a.smoothedTR).Mul(decimal.NewFromInt(100))

	diSum := plusDI.Add(minusDI)
	var dx decimal.Decimal
	if !diSum.IsZero() {
		dx = plusDI.Sub(minusDI).Abs().Div(diSum).Mul(decimal.NewFromInt(100))
	}

	if !a.adxWarm {
		a.dxSum = a.dxSum.Add(dx)
		a.dxCount++
		if a.dxCount < a.period {
			return types.SignalHold, decimal.Zero
		}
		a.adx = a.dxSum.Div(periodDec)
		a.adxWarm = true
	} else {
		a.adx = a.adx.Mul(periodDec.Sub(decimal.NewFromInt(1))).Add(dx).Div(periodDec)
	}

	if a.adx.LessThan(a.threshold) {
		return types.SignalHold, decimal.Zero
	}

	conf := clampConfidence(a.adx.Div(decimal.NewFromInt(100)))
	switch {
	case plusDI.GreaterThan(minusDI):
		return types.SignalBuy, conf
	case minusDI.GreaterThan(plusDI):
		return types.SignalSell, conf
	default:
		return types.SignalHold, decimal.Zero
	}
}
