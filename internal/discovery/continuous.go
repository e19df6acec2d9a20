package discovery

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/discover/internal/paramspace"
	"github.com/atlas-desktop/discover/internal/progress"
	"github.com/atlas-desktop/discover/internal/scoring"
	"github.com/atlas-desktop/discover/pkg/types"
)

const (
	barRefreshInterval = 6 * time.Hour
	cycleSleep         = 100 * time.Millisecond
)

// RunContinuous implements spec §4.8's continuous mode: an unbounded
// sequence of cycles, each widening coverage via the exploratory generator
// (cycles 0-2) or the ML-guided generator (cycles 3+), until cancelled.
func (r *Runner) RunContinuous(ctx context.Context, req Request) error {
	r.progress = progress.New(time.Now().Unix(), true)
	runID := uuid.NewString()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	r.progress.SetStatus(progress.StatusFetchingData, "fetching bars")
	barsBySymbol, symbols := r.fetchBars(ctx, req.Symbols, maxLadderDays())
	if len(symbols) == 0 {
		r.progress.SetError(errAllFetchesFailed.Error())
		return errAllFetchesFailed
	}
	lastFetch := time.Now()

	var results []types.DiscoveryResult
	var topResults []types.DiscoveryResult

	for cycle := 0; ; cycle++ {
		if time.Since(lastFetch) >= barRefreshInterval {
			refreshed, ok := r.fetchBars(ctx, symbols, maxLadderDays())
			if len(ok) > 0 {
				barsBySymbol = refreshed
				lastFetch = time.Now()
			}
		}

		cycleStart := time.Now()
		r.metrics.CurrentCycle.Set(float64(cycle))

		grid := r.buildCycleGrid(cycle, topResults, rng)
		daysList := cycleDaysList(cycle, req.Days)
		sizingList := cycleSizingList(cycle, req.SizingMode)

		r.progress.ResetPerCycleCounters()
		r.progress.SetTotalCombinations(len(grid) * len(symbols) * len(daysList) * len(sizingList))
		r.progress.SetStatus(progress.StatusPhase1BroadScan, cyclePhaseLabel(cycle))

		n := 0
		cancelled := false
		for _, symbol := range symbols {
			full := barsBySymbol[symbol]
			for _, days := range daysList {
				bars := sliceBarsForDays(full, days)
				for _, sizing := range sizingList {
					for _, d := range grid {
						if r.progress.Cancelled() {
							cancelled = true
							break
						}
						result, hit, err := r.evaluateCandidate(ctx, d, symbol, days, sizing, bars, runID, cyclePhaseLabel(cycle))
						if err != nil {
							r.logger.Warn("candidate evaluation failed, skipping", zap.Error(err))
							continue
						}
						results = append(results, result)
						if hit {
							r.progress.IncrementSkipped()
						} else {
							r.progress.IncrementCompleted()
						}
						n++
						if n%progress.YieldInterval == 0 {
							r.updateBestSoFar(results, req.TopN)
							time.Sleep(progress.YieldDuration)
						}
					}
					if cancelled {
						break
					}
				}
				if cancelled {
					break
				}
			}
			if cancelled {
				break
			}
		}

		if cycle == 0 && !cancelled {
			results = r.runPhase2Refinement(ctx, results, barsBySymbol, req, runID, &cancelled)
		}

		final := scoring.Rank(results)
		topResults = topNByScore(final, mlGuidedParentPoolSize)
		r.updateBestSoFar(results, req.TopN)

		if cancelled || r.progress.Cancelled() {
			if req.TopN > 0 && req.TopN < len(final) {
				final = final[:req.TopN]
			}
			r.progress.Finalize(final)
			return nil
		}

		r.metrics.CycleDuration.Observe(time.Since(cycleStart).Seconds())
		r.progress.AdvanceCycle()
		time.Sleep(cycleSleep)
	}
}

// mlGuidedParentPoolSize bounds how many of the run's best results are
// carried forward as ML-guided parents each cycle.
const mlGuidedParentPoolSize = 50

func (r *Runner) runPhase2Refinement(ctx context.Context, results []types.DiscoveryResult, barsBySymbol map[string][]types.Bar, req Request, runID string, cancelled *bool) []types.DiscoveryResult {
	r.progress.SetStatus(progress.StatusPhase2Refinement, "phase 2: refinement")
	winners := topNByScore(results, topRefinementWinners)
	n := 0
	for _, winner := range winners {
		variants := paramspace.RefinementGrid(winner.Descriptor)
		bars := sliceBarsForDays(barsBySymbol[winner.Symbol], winner.Days)
		for _, d := range variants {
			if r.progress.Cancelled() {
				*cancelled = true
				break
			}
			result, hit, err := r.evaluateCandidate(ctx, d, winner.Symbol, winner.Days, winner.SizingMode, bars, runID, "phase2_refinement")
			if err != nil {
				r.logger.Warn("refinement candidate failed, skipping", zap.Error(err))
				continue
			}
			results = append(results, result)
			if hit {
				r.progress.IncrementSkipped()
			} else {
				r.progress.IncrementCompleted()
			}
			n++
			if n%progress.YieldInterval == 0 {
				r.updateBestSoFar(results, req.TopN)
				time.Sleep(progress.YieldDuration)
			}
		}
		if *cancelled {
			break
		}
	}
	return results
}

// buildCycleGrid chooses the exploratory generator for cycles 0-2 and the
// ML-guided generator from cycle 3 onward.
func (r *Runner) buildCycleGrid(cycle int, topResults []types.DiscoveryResult, rng *rand.Rand) []types.Descriptor {
	if grid := paramspace.ExploratoryCycle(cycle, rng); grid != nil {
		return grid
	}
	return paramspace.MLGuided(cycle, topResults, rng)
}

// cycleDaysList is {request.days} on cycle 0, and the full ladder thereafter.
func cycleDaysList(cycle int, requestDays int) []int {
	if cycle == 0 {
		return []int{requestDays}
	}
	return daysLadder
}

// cycleSizingList is {request.sizing} on cycle 0, and all three sizing
// modes thereafter.
func cycleSizingList(cycle int, requested types.SizingMode) []types.SizingMode {
	if cycle == 0 {
		return []types.SizingMode{requested}
	}
	return types.AllSizingModes()
}

func cyclePhaseLabel(cycle int) string {
	switch {
	case cycle == 0:
		return "cycle_0_phase1_grid"
	case cycle < 3:
		return "exploratory_cycle"
	default:
		return "ml_guided_cycle"
	}
}
