package signal

import (
	"strings"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// Composite reconciles an ordered list of sub-generators under one of the
// three combine modes. Reset propagates to every sub.
type Composite struct {
	subs []Generator
	mode types.CombineMode
}

// NewComposite builds a composite over the given sub-generators.
func NewComposite(subs []Generator, mode types.CombineMode) *Composite {
	return &Composite{subs: subs, mode: mode}
}

func (c *Composite) Name() string {
	names := make([]string, len(c.subs))
	for i, s := range c.subs {
		names[i] = s.Name()
	}
	return "composite(" + strings.Join(names, "+") + "," + string(c.mode) + ")"
}

func (c *Composite) Reset() {
	for _, s := range c.subs {
		s.Reset()
	}
}

func (c *Composite) OnBar(bar types.Bar) (types.Signal, decimal.Decimal) {
	sigs := make([]types.Signal, len(c.subs))
	confs := make([]decimal.Decimal, len(c.subs))
	for i, s := range c.subs {
		sigs[i], confs[i] = s.OnBar(bar)
	}

	switch c.mode {
	case types.CombineUnanimous:
		return c.unanimous(sigs, confs)
	case types.CombineMajority:
		return c.majority(sigs, confs)
	case types.CombinePrimaryConfirmed:
		return c.primaryConfirmed(sigs, confs)
	default:
		return types.SignalHold, decimal.Zero
	}
}

func (c *Composite) unanimous(sigs []types.Signal, confs []decimal.Decimal) (types.Signal, decimal.Decimal) {
	for _, s := range []types.Signal{types.SignalBuy, types.SignalSell} {
		all := true
		for _, sig := range sigs {
			if sig != s {
				all = false
				break
			}
		}
		if all {
			return s, meanConfidence(confs)
		}
	}
	return types.SignalHold, decimal.Zero
}

func (c *Composite) majority(sigs []types.Signal, confs []decimal.Decimal) (types.Signal, decimal.Decimal) {
	need := (len(sigs) + 1) / 2
	for _, s := range []types.Signal{types.SignalBuy, types.SignalSell} {
		var agreeing []decimal.Decimal
		for i, sig := range sigs {
			if sig == s {
				agreeing = append(agreeing, confs[i])
			}
		}
		if len(agreeing) >= need {
			return s, meanConfidence(agreeing)
		}
	}
	return types.SignalHold, decimal.Zero
}

func (c *Composite) primaryConfirmed(sigs []types.Signal, confs []decimal.Decimal) (types.Signal, decimal.Decimal) {
	if len(sigs) == 0 {
		return types.SignalHold, decimal.Zero
	}
	primary := sigs[0]
	if primary == types.SignalHold {
		return types.SignalHold, decimal.Zero
	}
	for i := 1; i < len(sigs); i++ {
		if sigs[i] == primary || sigs[i] == types.SignalHold {
			return primary, confs[0]
		}
	}
	return types.SignalHold, decimal.Zero
}

func meanConfidence(confs []decimal.Decimal) decimal.Decimal {
	if len(confs) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, c := range confs {
		sum = sum.Add(c)
	}
	return sum.Div(decimal.NewFromInt(int64(len(confs))))
}
