package progress_test

import (
	"testing"

	"github.com/atlas-desktop/discover/internal/progress"
	"github.com/atlas-desktop/discover/pkg/types"
)

func TestSnapshotAliasesResultsByStatus(t *testing.T) {
	state := progress.New(1000, false)
	best := []types.DiscoveryResult{{StrategyName: "rsi"}}
	state.UpdateBestSoFar(best)

	snap := state.Snapshot()
	if len(snap.Results) != 1 || snap.Results[0].StrategyName != "rsi" {
		t.Fatalf("expected results to alias best_so_far before completion")
	}

	final := []types.DiscoveryResult{{StrategyName: "macd"}, {StrategyName: "vwap"}}
	state.Finalize(final)
	snap = state.Snapshot()
	if snap.Status != progress.StatusComplete {
		t.Fatalf("expected status=Complete after Finalize")
	}
	if len(snap.Results) != 2 || snap.Results[0].StrategyName != "macd" {
		t.Fatalf("expected results to alias final_results after completion")
	}
}

func TestCountersAreMonotonic(t *testing.T) {
	state := progress.New(0, false)
	state.IncrementCompleted()
	state.IncrementCompleted()
	state.IncrementSkipped()

	snap := state.Snapshot()
	if snap.Completed != 2 {
		t.Fatalf("completed = %d, want 2", snap.Completed)
	}
	if snap.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", snap.Skipped)
	}
	if snap.Completed < snap.Skipped {
		t.Fatalf("completed (%d) must be >= skipped (%d)", snap.Completed, snap.Skipped)
	}
	if snap.TotalTestedAllCycles != 3 {
		t.Fatalf("total_tested_all_cycles = %d, want 3", snap.TotalTestedAllCycles)
	}
}

func TestResetPerCycleCountersLeavesCumulativeCountersAlone(t *testing.T) {
	state := progress.New(0, true)
	state.IncrementCompleted()
	state.IncrementCompleted()
	state.AdvanceCycle()
	state.ResetPerCycleCounters()

	snap := state.Snapshot()
	if snap.TotalNewThisCycle != 0 {
		t.Fatalf("total_new_this_cycle should reset to 0, got %d", snap.TotalNewThisCycle)
	}
	if snap.TotalTestedAllCycles != 2 {
		t.Fatalf("total_tested_all_cycles must not reset, got %d", snap.TotalTestedAllCycles)
	}
	if snap.CurrentCycle != 1 {
		t.Fatalf("current_cycle = %d, want 1", snap.CurrentCycle)
	}
}

func TestCancelIsObservableImmediately(t *testing.T) {
	state := progress.New(0, false)
	if state.Cancelled() {
		t.Fatal("expected not cancelled initially")
	}
	state.Cancel()
	if !state.Cancelled() {
		t.Fatal("expected cancelled after Cancel()")
	}
}
