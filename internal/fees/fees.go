// Package fees implements the Polymarket-style taker fee model described in
// spec §4.6, grounded on original_source/crates/engine/src/fees.rs.
package fees

import "github.com/shopspring/decimal"

// Config parameterises the taker fee curve: fee = shares * rate * (p*(1-p))^exponent.
type Config struct {
	Rate     decimal.Decimal
	Exponent int
}

// DefaultConfig is the standard Polymarket taker fee: rate 0.25, exponent 2.
func DefaultConfig() Config {
	return Config{Rate: decimal.NewFromFloat(0.25), Exponent: 2}
}

var (
	zero     = decimal.Zero
	one      = decimal.NewFromInt(1)
	minFee   = decimal.NewFromFloat(0.0001)
	floorExp = int32(4)
)

// Calculate returns the taker fee for `shares` at probability `p`, floored
// to 4 decimal places and zeroed below 0.0001 or outside (0,1). The result
// is symmetric: Calculate(shares, p) == Calculate(shares, 1-p).
func Calculate(cfg Config, shares, p decimal.Decimal) decimal.Decimal {
	if p.LessThanOrEqual(zero) || p.GreaterThanOrEqual(one) {
		return zero
	}

	base := p.Mul(one.Sub(p))
	powered := base
	for i := 1; i < cfg.Exponent; i++ {
		powered = powered.Mul(base)
	}

	fee := shares.Mul(cfg.Rate).Mul(powered)
	fee = fee.Truncate(floorExp)

	if fee.LessThan(minFee) {
		return zero
	}
	return fee
}

// ProbabilityFromClose maps a close price to a probability via the
// baseline-anchored shift contract: p = clamp(0.5 + 0.05*((close-baseline)/baseline)*100, 0.05, 0.95).
func ProbabilityFromClose(close, baseline decimal.Decimal) decimal.Decimal {
	if baseline.IsZero() {
		return decimal.NewFromFloat(0.5)
	}
	shift := close.Sub(baseline).Div(baseline).Mul(decimal.NewFromFloat(0.05)).Mul(decimal.NewFromInt(100))
	p := decimal.NewFromFloat(0.5).Add(shift)
	return clamp(p, decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.95))
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
