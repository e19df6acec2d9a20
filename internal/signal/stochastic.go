package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// Stochastic tracks %K over `period` and a 3-sample SMA of %K as %D. Buy
// when %K crosses above %D while %K is in the oversold zone; Sell mirrors
// in the overbought zone.
type Stochastic struct {
	period               int
	overbought, oversold decimal.Decimal

	window   []decimal.Decimal
	dSMA     *utils.SMA
	prevK    decimal.Decimal
	prevD    decimal.Decimal
	haveState bool
}

func NewStochastic(p types.StochasticParams) *Stochastic {
	return &Stochastic{
		period:     p.Period,
		overbought: decimal.NewFromFloat(p.Overbought),
		oversold:   decimal.NewFromFloat(p.Oversold),
		dSMA:       utils.NewSMA(3),
	}
}

func (s *Stochastic) Name() string {
	return fmt.Sprintf("stochastic(%d,%s,%s)", s.period, s.overbought, s.oversold)
}

func (s *Stochastic) Reset() {
	s.window = nil
	s.dSMA = utils.NewSMA(3)
	s.haveState = false
}

func (s *Stochastic) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	s.window = append(s.window, bar.Close)
	if len(s.window) > s.period {
		s.window = s.window[1:]
	}
	if len(s.window) < s.period {
		return types.SignalHold, decimal.Zero
	}

	low, high := s.window[0], s.window[0]
	for _, v := range s.window {
		if v.LessThan(low) {
			low = v
		}
		if v.GreaterThan(high) {
			high = v
		}
	}
	rng := high.Sub(low)

	var k decimal.Decimal
	if rng.IsZero() {
		k = decimal.NewFromInt(50)
	} else {
		k = bar.Close.Sub(low).Div(rng).Mul(decimal.NewFromInt(100))
	}
	d := s.dSMA.Add(k)

	if !s.haveState {
		s.prevK, s.prevD = k, d
		s.haveState = true
		return types.SignalHold, decimal.Zero
	}

	crossUp := s.prevK.LessThanOrEqual(s.prevD) && k.GreaterThan(d)
	crossDown := s.prevK.GreaterThanOrEqual(s.prevD) && k.LessThan(d)
	s.prevK, s.prevD = k, d

	switch {
	case crossUp && k.LessThan(s.oversold):
		conf := s.oversold.Sub(k).Div(s.oversold)
		return types.SignalBuy, clampConfidence(conf)
	case crossDown && k.GreaterThan(s.overbought):
		conf := k.Sub(s.overbought).Div(decimal.NewFromInt(100).Sub(s.overbought))
		return types.SignalSell, clampConfidence(conf)
	default:
		return types.SignalHold, decimal.Zero
	}
}
