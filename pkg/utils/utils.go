// Package utils provides shared numeric helpers used across the discovery pipeline.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// GenerateID generates a unique ID with optional prefix.
func GenerateID(prefix string) string {
	b := make([]byte, 16)
	rand.Read(b)
	id := hex.EncodeToString(b)
	if prefix != "" {
		return fmt.Sprintf("%s_%s", prefix, id)
	}
	return id
}

// MinDecimal returns the minimum of two decimals.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxDecimal returns the maximum of two decimals.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampDecimal clamps value into [min, max].
func ClampDecimal(value, min, max decimal.Decimal) decimal.Decimal {
	if value.LessThan(min) {
		return min
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}

// ClampFloat clamps value into [min, max].
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// FormatDuration renders a duration the way the CLI progress output does.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return d.Round(time.Second).String()
	}
	return d.Round(time.Second).String()
}

// EMA is a streaming exponential moving average.
type EMA struct {
	multiplier decimal.Decimal
	current    decimal.Decimal
	count      int
}

// NewEMA creates a new EMA calculator for the given period.
func NewEMA(period int) *EMA {
	mult := decimal.NewFromFloat(2.0 / float64(period+1))
	return &EMA{multiplier: mult}
}

// Add feeds one value and returns the updated EMA.
func (e *EMA) Add(value decimal.Decimal) decimal.Decimal {
	e.count++
	if e.count == 1 {
		e.current = value
		return e.current
	}
	e.current = value.Sub(e.current).Mul(e.multiplier).Add(e.current)
	return e.current
}

// Current returns the last computed EMA value.
func (e *EMA) Current() decimal.Decimal {
	return e.current
}

// Count returns how many values have been fed in.
func (e *EMA) Count() int {
	return e.count
}

// SMA is a streaming simple moving average over a fixed window.
type SMA struct {
	period int
	values []decimal.Decimal
	sum    decimal.Decimal
}

// NewSMA creates a new SMA calculator for the given period.
func NewSMA(period int) *SMA {
	return &SMA{period: period, values: make([]decimal.Decimal, 0, period)}
}

// Add feeds one value and returns the updated SMA.
func (s *SMA) Add(value decimal.Decimal) decimal.Decimal {
	s.values = append(s.values, value)
	s.sum = s.sum.Add(value)
	if len(s.values) > s.period {
		s.sum = s.sum.Sub(s.values[0])
		s.values = s.values[1:]
	}
	return s.Current()
}

// Current returns the SMA over however many values have been seen so far.
func (s *SMA) Current() decimal.Decimal {
	if len(s.values) == 0 {
		return decimal.Zero
	}
	return s.sum.Div(decimal.NewFromInt(int64(len(s.values))))
}

// Full reports whether the window has reached its configured period.
func (s *SMA) Full() bool {
	return len(s.values) >= s.period
}

// SqrtDecimal computes the square root of a non-negative decimal via
// Newton's method, fixed-point throughout.
func SqrtDecimal(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() || d.IsNegative() {
		return decimal.Zero
	}
	x := d
	for i := 0; i < 20; i++ {
		x = x.Add(d.Div(x)).Div(decimal.NewFromInt(2))
	}
	return x
}

// MeanFloat64 returns the arithmetic mean of a float slice, 0 for an empty slice.
func MeanFloat64(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDevFloat64 returns the sample standard deviation (n-1) of a float slice.
func SampleStdDevFloat64(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := MeanFloat64(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
