package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/discover/internal/paramspace"
	"github.com/atlas-desktop/discover/internal/progress"
	"github.com/atlas-desktop/discover/internal/scoring"
	"github.com/atlas-desktop/discover/pkg/types"
)

const topRefinementWinners = 20

// RunSingleShot implements spec §4.8's single-shot mode: fetch, Phase-1
// broad scan, Phase-2 refinement on the top winners, then finalize.
func (r *Runner) RunSingleShot(ctx context.Context, req Request) error {
	r.progress = progress.New(time.Now().Unix(), false)
	runID := uuid.NewString()

	r.progress.SetStatus(progress.StatusFetchingData, "fetching bars")
	barsBySymbol, symbols := r.fetchBars(ctx, req.Symbols, req.Days)
	if len(symbols) == 0 {
		r.progress.SetError(errAllFetchesFailed.Error())
		return errAllFetchesFailed
	}

	r.progress.SetStatus(progress.StatusPhase1BroadScan, "phase 1: broad scan")
	grid := paramspace.Phase1Grid()
	r.progress.SetTotalCombinations(len(grid)*len(symbols) + refinementBudget)

	var results []types.DiscoveryResult
	n := 0
	cancelled := false

	for _, symbol := range symbols {
		bars := barsBySymbol[symbol]
		for _, d := range grid {
			if r.progress.Cancelled() {
				cancelled = true
				break
			}
			result, hit, err := r.evaluateCandidate(ctx, d, symbol, req.Days, req.SizingMode, bars, runID, "phase1_broad_scan")
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
		r.progress.SetStatus(progress.StatusIdle, "")
		return nil
	}

	r.progress.SetStatus(progress.StatusPhase2Refinement, "phase 2: refinement")
	winners := topNByScore(results, topRefinementWinners)
	for _, winner := range winners {
		variants := paramspace.RefinementGrid(winner.Descriptor)
		bars := barsBySymbol[winner.Symbol]
		for _, d := range variants {
			if r.progress.Cancelled() {
				cancelled = true
				break
			}
			result, hit, err := r.evaluateCandidate(ctx, d, winner.Symbol, req.Days, req.SizingMode, bars, runID, "phase2_refinement")
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
		if cancelled {
			break
		}
	}

	if cancelled {
		r.progress.SetStatus(progress.StatusIdle, "")
		return nil
	}

	final := scoring.Rank(results)
	if req.TopN > 0 && req.TopN < len(final) {
		final = final[:req.TopN]
	}
	r.progress.Finalize(final)
	return nil
}
