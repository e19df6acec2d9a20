package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// RSI is the relative-strength-index generator: Buy when RSI < oversold,
// Sell when RSI > overbought, Wilder-smoothed after a simple warmup average.
type RSI struct {
	period     int
	overbought decimal.Decimal
	oversold   decimal.Decimal

	prevClose decimal.Decimal
	haveClose bool
	gains     []decimal.Decimal
	losses    []decimal.Decimal
	avgGain   decimal.Decimal
	avgLoss   decimal.Decimal
	warm      bool
}

// NewRSI constructs an RSI generator from its descriptor params.
func NewRSI(p types.RSIParams) *RSI {
	return &RSI{
		period:     p.Period,
		overbought: decimal.NewFromFloat(p.Overbought),
		oversold:   decimal.NewFromFloat(p.Oversold),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("rsi(%d,%s,%s)", r.period, r.overbought, r.oversold) }

func (r *RSI) Reset() {
	r.haveClose = false
	r.gains = nil
	r.losses = nil
	r.avgGain = decimal.Zero
	r.avgLoss = decimal.Zero
	r.warm = false
}

func (r *RSI) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	if !r.haveClose {
		r.prevClose = bar.Close
		r.haveClose = true
		return types.SignalHold, decimal.Zero
	}

	change := bar.Close.Sub(r.prevClose)
	r.prevClose = bar.Close

	var gain, loss decimal.Decimal
	if change.GreaterThan(decimal.Zero) {
		gain = change
	} else {
		loss = change.Abs()
	}
	r.gains = append(r.gains, gain)
	r.losses = append(r.losses, loss)

	if len(r.gains) < r.period {
		return types.SignalHold, decimal.Zero
	}

	periodDec := decimal.NewFromInt(int64(r.period))
	if !r.warm {
		sumGain, sumLoss := decimal.Zero, decimal.Zero
		for i := 0; i < r.period; i++ {
			sumGain = sumGain.Add(r.gains[i])
			sumLoss = sumLoss.Add(r.losses[i])
		}
		r.avgGain = sumGain.Div(periodDec)
		r.avgLoss = sumLoss.Div(periodDec)
		r.warm = true
	} else {
		r.avgGain = r.avgGain.Mul(periodDec.Sub(decimal.NewFromInt(1))).Add(gain).Div(periodDec)
		r.avgLoss = r.avgLoss.Mul(periodDec.Sub(decimal.NewFromInt(1))).Add(loss).Div(periodDec)
	}

	var rsi decimal.Decimal
	if r.avgLoss.IsZero() {
		rsi = decimal.NewFromInt(100)
	} else {
		rs := r.avgGain.Div(r.avgLoss)
		rsi = decimal.NewFromInt(100).Sub(decimal.NewFromInt(100).Div(decimal.NewFromInt(1).Add(rs)))
	}

	switch {
	case rsi.LessThan(r.oversold):
		conf := r.oversold.Sub(rsi).Div(r.oversold)
		return types.SignalBuy, clampConfidence(conf)
	case rsi.GreaterThan(r.overbought):
		conf := rsi.Sub(r.overbought).Div(decimal.NewFromInt(100).Sub(r.overbought))
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
