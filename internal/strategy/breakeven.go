// Package strategy derives advisory metrics for a leg group: break-even
// prices, realized P&L, and an approximate probability of profit. All
// computations degrade to zero sentinels on malformed input — callers treat
// a zero result as "unknown", never as a valid figure.
package strategy

import (
	"math"
	"sort"

	"github.com/jcalderon/strikelog/internal/catalog"
	"github.com/jcalderon/strikelog/internal/models"
	"github.com/jcalderon/strikelog/internal/util"
)

// Leg is the slice of a leg record the solver needs.
type Leg struct {
	Side       models.Side
	OptionType models.OptionType
	Strike     float64
}

// priceTick is the increment break-even prices are rounded to.
const priceTick = 0.01

// SolveBreakeven computes one or two break-even prices for a strategy shape
// from its current legs and net premium. The upper price is zero for
// single-break-even shapes. Premium is taken as an absolute value: the
// direction of the strategy, not the sign of the premium, decides which way
// each strike shifts.
//
// Break-evens depend on the chain's cumulative net credit, not just the
// current group's entry premium, so callers re-invoke this whenever a roll
// changes the chain premium.
func SolveBreakeven(name string, legs []Leg, netPremium float64) (lower, upper float64) {
	if len(legs) == 0 {
		return 0, 0
	}
	premium := math.Abs(netPremium)

	switch catalog.Shape(name) {
	case catalog.ShapeIronCondor:
		lower, upper = ironCondorBreakeven(legs, premium)
	case catalog.ShapeIronFly:
		lower, upper = ironFlyBreakeven(legs, premium)
	case catalog.ShapeButterfly:
		lower, upper = butterflyBreakeven(legs, premium)
	case catalog.ShapeStrangle:
		lower, upper = strangleBreakeven(legs, premium)
	case catalog.ShapeStraddle:
		k := legs[0].Strike
		lower, upper = k-premium, k+premium
	case catalog.ShapeCollar:
		lower, upper = collarBreakeven(legs, premium)
	case catalog.ShapeCreditSingle:
		lower = singleBreakeven(legs, premium, models.SideSell)
	case catalog.ShapeDebitSingle:
		lower = singleBreakeven(legs, premium, models.SideBuy)
	case catalog.ShapeApprox:
		lower = singleBreakeven(legs, premium, models.SideSell)
	default:
		return 0, 0
	}

	if lower <= 0 {
		// Missing strike somewhere along the way; report unknown rather
		// than a half-valid pair.
		return 0, 0
	}
	return util.RoundToTick(lower, priceTick), util.RoundToTick(upper, priceTick)
}

// findStrike returns the strike of the first leg matching side and type.
func findStrike(legs []Leg, side models.Side, opt OptionTypeFilter) (float64, bool) {
	for _, leg := range legs {
		if leg.Side != side {
			continue
		}
		if opt.matches(leg.OptionType) {
			return leg.Strike, true
		}
	}
	return 0, false
}

// OptionTypeFilter matches a specific option type, or any when unset.
type OptionTypeFilter struct {
	t   models.OptionType
	any bool
}

func anyType() OptionTypeFilter { return OptionTypeFilter{any: true} }

func ofType(t models.OptionType) OptionTypeFilter { return OptionTypeFilter{t: t} }

func (f OptionTypeFilter) matches(t models.OptionType) bool {
	return f.any || f.t == t
}

func ironCondorBreakeven(legs []Leg, premium float64) (float64, float64) {
	putStrike, okPut := findStrike(legs, models.SideSell, ofType(models.OptionPut))
	callStrike, okCall := findStrike(legs, models.SideSell, ofType(models.OptionCall))
	if okPut && okCall {
		return putStrike - premium, callStrike + premium
	}

	// Sides ambiguous (e.g. imported data with defaulted sides): the short
	// strikes of a condor are the 2nd and 3rd distinct strikes.
	distinct := distinctSortedStrikes(legs)
	if len(distinct) < 4 {
		return 0, 0
	}
	return distinct[1] - premium, distinct[2] + premium
}

func ironFlyBreakeven(legs []Leg, premium float64) (float64, float64) {
	// Short strikes are equal at the money; any short leg gives the body.
	atm, ok := findStrike(legs, models.SideSell, anyType())
	if !ok {
		atm = legs[0].Strike
	}
	return atm - premium, atm + premium
}

func butterflyBreakeven(legs []Leg, premium float64) (float64, float64) {
	distinct := distinctSortedStrikes(legs)
	if len(distinct) < 2 {
		return 0, 0
	}
	return distinct[0] + premium, distinct[len(distinct)-1] - premium
}

func strangleBreakeven(legs []Leg, premium float64) (float64, float64) {
	putStrike, okPut := findAnyStrike(legs, models.OptionPut)
	callStrike, okCall := findAnyStrike(legs, models.OptionCall)
	if !okPut || !okCall {
		return 0, 0
	}
	return putStrike - premium, callStrike + premium
}

func collarBreakeven(legs []Leg, premium float64) (float64, float64) {
	putStrike, okPut := findAnyStrike(legs, models.OptionPut)
	callStrike, okCall := findAnyStrike(legs, models.OptionCall)
	if !okPut || !okCall {
		return 0, 0
	}
	return putStrike + premium, callStrike - premium
}

// singleBreakeven handles single-break-even shapes: the reference leg is the
// short leg for credit shapes, the long leg for debit shapes, with the first
// leg as fallback. Puts break even below the strike, calls above.
func singleBreakeven(legs []Leg, premium float64, refSide models.Side) float64 {
	ref := legs[0]
	if strike, ok := findStrike(legs, refSide, anyType()); ok {
		for _, leg := range legs {
			if leg.Side == refSide && leg.Strike == strike {
				ref = leg
				break
			}
		}
	}
	if ref.Strike <= 0 {
		return 0
	}
	if ref.OptionType == models.OptionPut {
		return ref.Strike - premium
	}
	return ref.Strike + premium
}

func findAnyStrike(legs []Leg, t models.OptionType) (float64, bool) {
	for _, leg := range legs {
		if leg.OptionType == t {
			return leg.Strike, true
		}
	}
	return 0, false
}

func distinctSortedStrikes(legs []Leg) []float64 {
	seen := make(map[float64]bool, len(legs))
	strikes := make([]float64, 0, len(legs))
	for _, leg := range legs {
		if leg.Strike <= 0 || seen[leg.Strike] {
			continue
		}
		seen[leg.Strike] = true
		strikes = append(strikes, leg.Strike)
	}
	sort.Float64s(strikes)
	return strikes
}
