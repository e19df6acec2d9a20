package fees

import (
	"testing"

	"github.com/shopspring/decimal"
)

func calc(shares, p float64) decimal.Decimal {
	return Calculate(DefaultConfig(), decimal.NewFromFloat(shares), decimal.NewFromFloat(p))
}

func TestFeeAtHalf(t *testing.T) {
	got := calc(100, 0.50)
	want := decimal.NewFromFloat(1.5625)
	if !got.Equal(want) {
		t.Fatalf("fee(100, 0.50) = %s, want %s", got, want)
	}
}

func TestFeeLowProbability(t *testing.T) {
	got := calc(100, 0.05)
	want := decimal.NewFromFloat(0.0564)
	if !got.Equal(want) {
		t.Fatalf("fee(100, 0.05) = %s, want %s", got, want)
	}
}

func TestFeeHighProbability(t *testing.T) {
	got := calc(100, 0.90)
	want := decimal.NewFromFloat(0.2025)
	if !got.Equal(want) {
		t.Fatalf("fee(100, 0.90) = %s, want %s", got, want)
	}
}

func TestFeeSymmetry(t *testing.T) {
	a := calc(100, 0.30)
	b := calc(100, 0.70)
	if !a.Equal(b) {
		t.Fatalf("fee(100,0.30)=%s != fee(100,0.70)=%s", a, b)
	}
}

func TestFeeSmallShares(t *testing.T) {
	got := calc(1, 0.50)
	want := decimal.NewFromFloat(0.0156)
	if !got.Equal(want) {
		t.Fatalf("fee(1, 0.50) = %s, want %s", got, want)
	}
}

func TestFeeEdges(t *testing.T) {
	if !calc(100, 0.0).IsZero() {
		t.Fatal("fee at p=0 must be zero")
	}
	if !calc(100, 1.0).IsZero() {
		t.Fatal("fee at p=1 must be zero")
	}
}

func TestFeeSymmetryProperty(t *testing.T) {
	ps := []float64{0.01, 0.1, 0.2, 0.33, 0.45, 0.49}
	for _, p := range ps {
		a := calc(37, p)
		b := calc(37, 1-p)
		if !a.Equal(b) {
			t.Fatalf("fee(37,%v)=%s != fee(37,%v)=%s", p, a, 1-p, b)
		}
	}
}
