package signal

import (
	"fmt"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/atlas-desktop/discover/pkg/utils"
	"github.com/shopspring/decimal"
)

// MACD fires on a histogram sign change after the slow EMA has warmed up;
// confidence scales with |histogram|/close.
type MACD struct {
	fast, slow, signalPeriod int

	fastEMA, slowEMA *utils.EMA
	signalEMA        *utils.EMA
	bars             int
	prevHist         decimal.Decimal
	haveHist         bool
}

func NewMACD(p types.MACDParams) *MACD {
	return &MACD{
		fast: p.Fast, slow: p.Slow, signalPeriod: p.Signal,
		fastEMA: utils.NewEMA(p.Fast), slowEMA: utils.NewEMA(p.Slow), signalEMA: utils.NewEMA(p.Signal),
	}
}

func (m *MACD) Name() string { return fmt.Sprintf("macd(%d,%d,%d)", m.fast, m.slow, m.signalPeriod) }

func (m *MACD) Reset() {
	m.fastEMA = utils.NewEMA(m.fast)
	m.slowEMA = utils.NewEMA(m.slow)
	m.signalEMA = utils.NewEMA(m.signalPeriod)
	m.bars = 0
	m.haveHist = false
}

func (m *MACD) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	m.bars++
	fast := m.fastEMA.Add(bar.Close)
	slow := m.slowEMA.Add(bar.Close)

	if m.bars < m.slow {
		return types.SignalHold, decimal.Zero
	}

	macdLine := fast.Sub(slow)
	signalLine := m.signalEMA.Add(macdLine)
	hist := macdLine.Sub(signalLine)

	if !m.haveHist {
		m.prevHist = hist
		m.haveHist = true
		return types.SignalHold, decimal.Zero
	}

	var sig types.Signal
	switch {
	case m.prevHist.LessThanOrEqual(decimal.Zero) && hist.GreaterThan(decimal.Zero):
		sig = types.SignalBuy
	case m.prevHist.GreaterThanOrEqual(decimal.Zero) && hist.LessThan(decimal.Zero):
		sig = types.SignalSell
	default:
		m.prevHist = hist
		return types.SignalHold, decimal.Zero
	}
	m.prevHist = hist

	if bar.Close.IsZero() {
		return sig, minConfidence
	}
	conf := hist.Abs().Div(bar.Close).Mul(decimal.NewFromInt(1000))
	return sig, clampConfidence(conf)
}
