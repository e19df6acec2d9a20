package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// EMACrossover signals on the bar where the fast EMA crosses the slow EMA,
// after warmup of `slow` bars; confidence scales with |fast-slow|/slow.
type EMACrossover struct {
	fast, slow int

	fastEMA, slowEMA *utils.EMA
	bars             int
	wasAbove         bool
	haveState        bool
}

func NewEMACrossover(p types.EMACrossParams) *EMACrossover {
	return &EMACrossover{fast: p.Fast, slow: p.Slow, fastEMA: utils.NewEMA(p.Fast), slowEMA: utils.NewEMA(p.Slow)}
}

func (e *EMACrossover) Name() string { return fmt.Sprintf("ema_crossover(%d,%d)", e.fast, e.slow) }

func (e *EMACrossover) Reset() {
	e.fastEMA = utils.NewEMA(e.fast)
	e.slowEMA = utils.NewEMA(e.slow)
	e.bars = 0
	e.haveState = false
}

func (e *EMACrossover) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	e.bars++
	fast := e.fastEMA.Add(bar.Close)
	slow := e.slowEMA.Add(bar.Close)

	if e.bars < e.slow {
		return types.SignalHold, decimal.Zero
	}

	isAbove := fast.GreaterThan(slow)
	if !e.haveState {
		e.wasAbove = isAbove
		e.haveState = true
		return types.SignalHold, decimal.Zero
	}

	var sig types.Signal
	switch {
	case !e.wasAbove && isAbove:
		sig = types.SignalBuy
	case e.wasAbove && !isAbove:
		sig = types.SignalSell
	default:
		e.wasAbove = isAbove
		return types.SignalHold, decimal.Zero
	}
	e.wasAbove = isAbove

	if slow.IsZero() {
		return sig, minConfidence
	}
	conf := fast.Sub(slow).Abs().Div(slow).Mul(decimal.NewFromInt(100))
	return sig, clampConfidence(conf)
}
