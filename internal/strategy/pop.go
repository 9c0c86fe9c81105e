package strategy

import (
	"math"

	"github.com/jcalderon/strikelog/internal/models"
	"github.com/jcalderon/strikelog/internal/util"
)

// popTick rounds POP to one decimal place, matching journal display.
const popTick = 0.1

// POP estimates probability of profit from option delta, in percent.
// A short leg wins when it expires out of the money, so its POP is
// 1 - |delta|; a long leg's is |delta| itself. When a second short delta is
// supplied (iron condor/fly, strangle, straddle) both tail probabilities are
// subtracted. That treats the two tails as independent, which they are not —
// it is a planning approximation, not a rigorous computation.
func POP(deltaPrimary float64, side models.Side, deltaSecondary float64) float64 {
	primary := math.Abs(deltaPrimary)
	if primary > 1 {
		return 0
	}

	var pop float64
	if side == models.SideBuy {
		pop = primary * 100
	} else {
		pop = (1 - primary) * 100
	}

	if secondary := math.Abs(deltaSecondary); secondary > 0 && secondary <= 1 {
		pop = (1 - primary - secondary) * 100
		if pop < 0 {
			pop = 0
		}
	}

	return util.RoundToTick(pop, popTick)
}
