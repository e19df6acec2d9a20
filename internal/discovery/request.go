package discovery

import "github.com/atlas-desktop/discover/pkg/types"

// Request is the top-level input to a discovery run (spec §6).
type Request struct {
	Symbols    []string
	Days       int
	TopN       int
	SizingMode types.SizingMode
	Continuous bool
}

// refinementBudget is the fixed estimate spec §4.8 step 2 names for sizing
// total_combinations before Phase-2 runs: 20 winners x 27 refinement
// variants each, a rough upper bound rather than an exact count.
const refinementBudget = 20 * 27

// daysLadder is the full set of lookback windows continuous mode cycles
// through beyond cycle 0 (spec §4.8).
var daysLadder = []int{30, 60, 90, 180, 365}

// maxLadderDays is the window used for continuous mode's initial fetch.
func maxLadderDays() int {
	max := daysLadder[0]
	for _, d := range daysLadder[1:] {
		if d > max {
			max = d
		}
	}
	return max
}
