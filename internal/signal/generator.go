// Package signal implements the streaming indicator runners described in
// spec §4.1: stateful generators that consume bars in order and emit a
// signal plus a confidence, and the composite generator that reconciles
// several of them under a combine mode.
package signal

import (
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// Generator is the common contract every indicator runner and the
// composite generator implement.
type Generator interface {
	// OnBar consumes one bar in order and returns a signal with a
	// confidence clamped to [0.3, 1.0] for Buy/Sell, or 0 for Hold.
	OnBar(bar types.Bar) (types.Signal, decimal.Decimal)
	// Reset returns the generator to its freshly-constructed state.
	Reset()
	// Name is a diagnostic label, not used for hashing.
	Name() string
}

var (
	minConfidence = decimal.NewFromFloat(0.3)
	maxConfidence = decimal.NewFromFloat(1.0)
)

// clampConfidence enforces the [0.3, 1.0] contract for non-Hold signals.
func clampConfidence(c decimal.Decimal) decimal.Decimal {
	if c.LessThan(minConfidence) {
		return minConfidence
	}
	if c.GreaterThan(maxConfidence) {
		return maxConfidence
	}
	return c
}
