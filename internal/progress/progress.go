// Package progress implements the shared, lock-protected ProgressState that
// the discovery runner mutates and external pollers observe (spec §3, §5).
package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/atlas-desktop/discover/pkg/types"
)

// Status is the discovery run's coarse lifecycle state.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusFetchingData      Status = "fetching_data"
	StatusPhase1BroadScan   Status = "phase1_broad_scan"
	StatusPhase2Refinement  Status = "phase2_refinement"
	StatusComplete          Status = "complete"
	StatusError             Status = "error"
)

// State is the shared progress snapshot. Every field read or write goes
// through the mutex except Cancelled, which is a standalone atomic so
// cancellation can be polled without contending on the struct lock.
type State struct {
	mu sync.RWMutex

	status               Status
	phaseLabel           string
	currentStrategy       string
	currentSymbol        string
	totalCombinations    int
	completed            int
	skipped              int
	bestSoFar            []types.DiscoveryResult
	finalResults         []types.DiscoveryResult
	errorMessage         string
	startedAt            int64
	currentCycle         int
	totalTestedAllCycles int
	totalNewThisCycle    int
	isContinuous         bool

	cancelled atomic.Bool
}

// New creates a fresh, idle ProgressState stamped with startedAt (caller
// supplies the timestamp since Date.now()-style calls are avoided here).
func New(startedAt int64, continuous bool) *State {
	return &State{
		status:       StatusIdle,
		startedAt:    startedAt,
		isContinuous: continuous,
	}
}

// Snapshot is the read-only view returned to pollers: all ProgressState
// fields plus Results, which aliases FinalResults once Complete and
// BestSoFar otherwise.
type Snapshot struct {
	Status               Status
	PhaseLabel           string
	CurrentStrategy      string
	CurrentSymbol        string
	TotalCombinations    int
	Completed            int
	Skipped              int
	Cancelled            bool
	BestSoFar            []types.DiscoveryResult
	FinalResults         []types.DiscoveryResult
	Results              []types.DiscoveryResult
	ErrorMessage         string
	StartedAt            int64
	CurrentCycle         int
	TotalTestedAllCycles int
	TotalNewThisCycle    int
	IsContinuous         bool
}

// Snapshot takes a consistent read of every field under the shared lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Status:               s.status,
		PhaseLabel:           s.phaseLabel,
		CurrentStrategy:      s.currentStrategy,
		CurrentSymbol:        s.currentSymbol,
		TotalCombinations:    s.totalCombinations,
		Completed:            s.completed,
		Skipped:              s.skipped,
		Cancelled:            s.cancelled.Load(),
		BestSoFar:            s.bestSoFar,
		FinalResults:         s.finalResults,
		ErrorMessage:         s.errorMessage,
		StartedAt:            s.startedAt,
		CurrentCycle:         s.currentCycle,
		TotalTestedAllCycles: s.totalTestedAllCycles,
		TotalNewThisCycle:    s.totalNewThisCycle,
		IsContinuous:         s.isContinuous,
	}
	if snap.Status == StatusComplete {
		snap.Results = snap.FinalResults
	} else {
		snap.Results = snap.BestSoFar
	}
	return snap
}

// SetStatus transitions status (and phase label, when given).
func (s *State) SetStatus(status Status, phaseLabel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	if phaseLabel != "" {
		s.phaseLabel = phaseLabel
	}
}

// SetError records a terminal error and transitions to StatusError.
func (s *State) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.errorMessage = message
}

// SetCurrentCandidate records the strategy/symbol the runner is evaluating.
func (s *State) SetCurrentCandidate(strategyName, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStrategy = strategyName
	s.currentSymbol = symbol
}

// SetTotalCombinations is called once before a cycle's loop begins.
func (s *State) SetTotalCombinations(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalCombinations = total
}

// IncrementCompleted bumps the monotonic completed counter (and the
// never-resetting total-tested-all-cycles counter alongside it).
func (s *State) IncrementCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	s.totalTestedAllCycles++
	s.totalNewThisCycle++
}

// IncrementSkipped bumps the monotonic skipped counter on a cache hit.
func (s *State) IncrementSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped++
	s.totalTestedAllCycles++
}

// ResetPerCycleCounters zeroes the per-cycle counters at the start of a new
// cycle; total_tested_all_cycles and completed/skipped are left untouched
// since they are cumulative across the whole continuous run per spec §4.8.
func (s *State) ResetPerCycleCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalNewThisCycle = 0
}

// AdvanceCycle increments current_cycle; called only after a cycle fully
// completes or is cancelled, per spec §4.8's ordering contract.
func (s *State) AdvanceCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCycle++
}

// UpdateBestSoFar replaces the in-flight top-N view.
func (s *State) UpdateBestSoFar(results []types.DiscoveryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bestSoFar = results
}

// Finalize copies the run's final ranked results and marks status=Complete.
func (s *State) Finalize(results []types.DiscoveryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalResults = results
	s.status = StatusComplete
}

// Cancel flips the cancellation flag; safe to call from any goroutine at any
// time. The runner must observe it within one 50-iteration window.
func (s *State) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (s *State) Cancelled() bool {
	return s.cancelled.Load()
}

// YieldInterval is how many candidates the runner evaluates before yielding
// control so pollers observe fresh progress (spec §5).
const YieldInterval = 50

// YieldDuration is the cooperative sleep the runner performs every
// YieldInterval candidates.
const YieldDuration = time.Millisecond
