package paramspace

import (
	"math/rand"
	"testing"

	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

func TestPhase1GridSize(t *testing.T) {
	grid := Phase1Grid()
	// 45 pairs * 3 profiles * 3 modes + 120 triples * 3 * 3 + 210 quads + 48 arbitrage.
	want := 45*9 + 120*9 + 210 + 48
	if len(grid) != want {
		t.Fatalf("phase1 grid size = %d, want %d", len(grid), want)
	}
}

func TestPhase1GridDescriptorsValid(t *testing.T) {
	for _, d := range Phase1Grid() {
		if err := descriptor.Validate(d); err != nil {
			t.Fatalf("invalid descriptor in phase1 grid: %v (%+v)", err, d)
		}
	}
}

func TestRefinementGridProducesValidVariants(t *testing.T) {
	winner := types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 14, Overbought: 70, Oversold: 30}}
	variants := RefinementGrid(winner)
	if len(variants) == 0 {
		t.Fatal("expected at least one refinement variant")
	}
	for _, v := range variants {
		if err := descriptor.Validate(v); err != nil {
			t.Fatalf("invalid refinement variant: %v", err)
		}
	}
}

func TestRefinementGridDropsInvalidVariants(t *testing.T) {
	// oversold=69, overbought=70: an oversold+2.5 perturbation would flip the
	// oversold >= overbought constraint and must be dropped, not crash.
	winner := types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 14, Overbought: 70, Oversold: 69}}
	variants := RefinementGrid(winner)
	for _, v := range variants {
		if v.RSI.Oversold >= v.RSI.Overbought {
			t.Fatalf("refinement grid kept an invalid variant: %+v", v.RSI)
		}
	}
}

func TestRefinementGridComboTriesOtherModes(t *testing.T) {
	winner := buildCombo([]int{0, 1}, descriptor.ProfileDefault, types.CombineUnanimous)
	variants := RefinementGrid(winner)

	sawMajority := false
	for _, v := range variants {
		if v.Combo != nil && v.Combo.CombineMode == types.CombineMajority {
			sawMajority = true
		}
	}
	if !sawMajority {
		t.Fatal("expected refinement to try the Majority combine mode")
	}
}

func TestExploratoryCycle0IsPhase1(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c0 := ExploratoryCycle(0, rng)
	p1 := Phase1Grid()
	if len(c0) != len(p1) {
		t.Fatalf("cycle 0 size = %d, want phase1 size %d", len(c0), len(p1))
	}
}

func TestExploratoryCycle3IsEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := ExploratoryCycle(3, rng); got != nil {
		t.Fatalf("cycle 3 should be delegated to MLGuided, got %d descriptors", len(got))
	}
}

func TestMLGuidedBudget(t *testing.T) {
	cases := map[int]int{3: 300, 4: 350, 13: 800, 20: 1000, 100: 1000}
	for cycle, want := range cases {
		if got := MLGuidedBudget(cycle); got != want {
			t.Fatalf("budget(%d) = %d, want %d", cycle, got, want)
		}
	}
}

func TestMLGuidedWithNoParentsReturnsOnlyExploration(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	out := MLGuided(3, nil, rng)
	if len(out) == 0 {
		t.Fatal("expected exploration-only descriptors even with no parents")
	}
	for _, d := range out {
		if err := descriptor.Validate(d); err != nil {
			t.Fatalf("invalid descriptor from exploration: %v", err)
		}
	}
}

func TestMLGuidedWithParentsIsDeterministicForSameSeed(t *testing.T) {
	parents := []types.DiscoveryResult{
		{Descriptor: types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 14, Overbought: 70, Oversold: 30}}, CompositeScore: decimal.NewFromInt(50)},
		{Descriptor: types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 9, Overbought: 65, Oversold: 35}}, CompositeScore: decimal.NewFromInt(40)},
	}
	a := MLGuided(4, parents, rand.New(rand.NewSource(7)))
	b := MLGuided(4, parents, rand.New(rand.NewSource(7)))
	if len(a) != len(b) {
		t.Fatalf("expected deterministic output length for same seed: %d vs %d", len(a), len(b))
	}
}
