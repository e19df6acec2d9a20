package metrics_test

import (
	"testing"

	"github.com/atlas-desktop/discover/internal/metrics"
)

func TestCacheHitRatioWithNoSamples(t *testing.T) {
	r := metrics.New()
	if got := r.CacheHitRatio(); got != 0 {
		t.Fatalf("ratio with no samples = %v, want 0", got)
	}
}

func TestCacheHitRatioComputesCorrectly(t *testing.T) {
	r := metrics.New()
	r.CacheHits.Add(3)
	r.CacheMisses.Add(1)
	if got := r.CacheHitRatio(); got != 0.75 {
		t.Fatalf("ratio = %v, want 0.75", got)
	}
}

func TestGatherIncludesRegisteredFamilies(t *testing.T) {
	r := metrics.New()
	r.CandidatesEvaluated.Inc()
	families, err := r.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "discover_candidates_evaluated_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected discover_candidates_evaluated_total in gathered families")
	}
}
