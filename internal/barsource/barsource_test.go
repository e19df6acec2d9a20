package barsource_test

import (
	"context"
	"testing"

	"github.com/atlas-desktop/discover/internal/barsource"
)

func TestSampleSourceCoversRequestedRange(t *testing.T) {
	src := barsource.SampleSource{Seed: 1}
	start := int64(0)
	end := int64(15 * 60 * 1000 * 10) // 10 bars

	bars, err := src.GetKlinesPaginated(context.Background(), "BTCUSDT", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 10 {
		t.Fatalf("got %d bars, want 10", len(bars))
	}
	for i, b := range bars {
		if b.OpenTime != start+int64(i)*15*60*1000 {
			t.Fatalf("bar %d open_time = %d, want sequential 15m spacing", i, b.OpenTime)
		}
		if b.High.LessThan(b.Open) || b.High.LessThan(b.Close) {
			t.Fatalf("bar %d high below open/close", i)
		}
		if b.Low.GreaterThan(b.Open) || b.Low.GreaterThan(b.Close) {
			t.Fatalf("bar %d low above open/close", i)
		}
	}
}

func TestSampleSourceIsDeterministicForSameSeed(t *testing.T) {
	ctx := context.Background()
	a, err := barsource.SampleSource{Seed: 7}.GetKlinesPaginated(ctx, "ETHUSDT", 0, 15*60*1000*5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := barsource.SampleSource{Seed: 7}.GetKlinesPaginated(ctx, "ETHUSDT", 0, 15*60*1000*5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Close.Equal(b[i].Close) {
			t.Fatalf("bar %d close differs between same-seed runs", i)
		}
	}
}

func TestSampleSourceEmptyRange(t *testing.T) {
	src := barsource.SampleSource{Seed: 1}
	bars, err := src.GetKlinesPaginated(context.Background(), "BTCUSDT", 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected no bars for empty range, got %d", len(bars))
	}
}
