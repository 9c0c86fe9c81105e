// Package catalog statically classifies strategy names: credit vs debit
// direction, canonical leg templates, and the shape tags the break-even
// solver dispatches on.
package catalog

import "github.com/jcalderon/strikelog/internal/models"

// Strategy names as they appear in the journal.
const (
	CSP              = "CSP (Cash Secured Put)"
	CoveredCall      = "CC (Covered Call)"
	Collar           = "Collar"
	PutCreditSpread  = "Put Credit Spread"
	CallCreditSpread = "Call Credit Spread"
	PutDebitSpread   = "Put Debit Spread"
	CallDebitSpread  = "Call Debit Spread"
	IronCondor       = "Iron Condor"
	IronFly          = "Iron Fly"
	Butterfly        = "Butterfly"
	BrokenWingFly    = "Broken Wing Butterfly (BWB)"
	Strangle         = "Strangle"
	Straddle         = "Straddle"
	Calendar         = "Calendar"
	Diagonal         = "Diagonal"
	RatioSpread      = "Ratio Spread"
	Backspread       = "Backspread"
	LongCall         = "Long Call"
	LongPut          = "Long Put"
	Custom           = "Custom / Other"
)

// Strategies lists every known strategy name in display order.
var Strategies = []string{
	CSP, CoveredCall, Collar,
	PutCreditSpread, CallCreditSpread,
	PutDebitSpread, CallDebitSpread,
	IronCondor, IronFly,
	Butterfly, BrokenWingFly,
	Strangle, Straddle,
	Calendar, Diagonal,
	RatioSpread, Backspread,
	LongCall, LongPut,
	Custom,
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	for _, s := range Strategies {
		if s == name {
			return true
		}
	}
	return false
}

// creditStrategies collect net premium at entry; debitStrategies pay it.
// Ambiguous shapes (calendar, diagonal, custom) are in neither set and fall
// back to the side of the first leg.
var creditStrategies = map[string]bool{
	CSP:              true,
	CoveredCall:      true,
	Collar:           true,
	PutCreditSpread:  true,
	CallCreditSpread: true,
	IronCondor:       true,
	IronFly:          true,
	Strangle:         true,
	Straddle:         true,
	RatioSpread:      true,
}

var debitStrategies = map[string]bool{
	PutDebitSpread:  true,
	CallDebitSpread: true,
	Butterfly:       true,
	BrokenWingFly:   true,
	Backspread:      true,
	LongCall:        true,
	LongPut:         true,
}

// Direction resolves whether a strategy is net short (credit, SideSell) or
// net long (debit, SideBuy) premium. Ambiguous strategies resolve to
// fallbackSide, which callers supply from the first leg of the group.
func Direction(name string, fallbackSide models.Side) models.Side {
	switch {
	case creditStrategies[name]:
		return models.SideSell
	case debitStrategies[name]:
		return models.SideBuy
	}
	if fallbackSide.Valid() {
		return fallbackSide
	}
	return models.SideSell
}

// LegSlot is one slot of a canonical leg template.
type LegSlot struct {
	Side       models.Side
	OptionType models.OptionType
}

// legTemplates holds the canonical leg shapes used to pre-populate entry
// forms. Strategies without a template (custom, ratio variants with
// user-chosen leg counts) require legs to be supplied explicitly.
var legTemplates = map[string][]LegSlot{
	CSP:         {{models.SideSell, models.OptionPut}},
	CoveredCall: {{models.SideSell, models.OptionCall}},
	Collar: {
		{models.SideBuy, models.OptionPut},
		{models.SideSell, models.OptionCall},
	},
	PutCreditSpread: {
		{models.SideSell, models.OptionPut},
		{models.SideBuy, models.OptionPut},
	},
	CallCreditSpread: {
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	PutDebitSpread: {
		{models.SideBuy, models.OptionPut},
		{models.SideSell, models.OptionPut},
	},
	CallDebitSpread: {
		{models.SideBuy, models.OptionCall},
		{models.SideSell, models.OptionCall},
	},
	IronCondor: {
		{models.SideSell, models.OptionPut},
		{models.SideBuy, models.OptionPut},
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	IronFly: {
		{models.SideSell, models.OptionPut},
		{models.SideBuy, models.OptionPut},
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	Butterfly: {
		{models.SideBuy, models.OptionCall},
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	BrokenWingFly: {
		{models.SideBuy, models.OptionCall},
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	Strangle: {
		{models.SideSell, models.OptionPut},
		{models.SideSell, models.OptionCall},
	},
	Straddle: {
		{models.SideSell, models.OptionPut},
		{models.SideSell, models.OptionCall},
	},
	Calendar: {
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	Diagonal: {
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	RatioSpread: {
		{models.SideBuy, models.OptionCall},
		{models.SideSell, models.OptionCall},
	},
	Backspread: {
		{models.SideSell, models.OptionCall},
		{models.SideBuy, models.OptionCall},
	},
	LongCall: {{models.SideBuy, models.OptionCall}},
	LongPut:  {{models.SideBuy, models.OptionPut}},
}

// LegTemplate returns the canonical leg slots for a strategy, or nil when
// the leg count and sides must be supplied explicitly.
func LegTemplate(name string) []LegSlot {
	tmpl, ok := legTemplates[name]
	if !ok {
		return nil
	}
	out := make([]LegSlot, len(tmpl))
	copy(out, tmpl)
	return out
}

// ShapeTag identifies the break-even computation a strategy dispatches to.
type ShapeTag int

const (
	// ShapeUnknown yields the zero sentinel break-even.
	ShapeUnknown ShapeTag = iota
	// ShapeIronCondor uses short put and short call strikes.
	ShapeIronCondor
	// ShapeIronFly uses the shared ATM short strike.
	ShapeIronFly
	// ShapeButterfly uses the outer strikes of the three-strike body.
	ShapeButterfly
	// ShapeStrangle uses the put strike and the call strike.
	ShapeStrangle
	// ShapeStraddle uses the single shared strike.
	ShapeStraddle
	// ShapeCollar uses the long put and short call strikes.
	ShapeCollar
	// ShapeCreditSingle uses the short leg's strike.
	ShapeCreditSingle
	// ShapeDebitSingle uses the long leg's strike.
	ShapeDebitSingle
	// ShapeApprox approximates from the short (or first) leg's strike.
	ShapeApprox
)

// Shape maps a strategy name to its break-even shape tag.
func Shape(name string) ShapeTag {
	switch name {
	case IronCondor:
		return ShapeIronCondor
	case IronFly:
		return ShapeIronFly
	case Butterfly, BrokenWingFly:
		return ShapeButterfly
	case Strangle:
		return ShapeStrangle
	case Straddle:
		return ShapeStraddle
	case Collar:
		return ShapeCollar
	case CSP, CoveredCall, PutCreditSpread, CallCreditSpread:
		return ShapeCreditSingle
	case PutDebitSpread, CallDebitSpread, LongCall, LongPut:
		return ShapeDebitSingle
	case Calendar, Diagonal, RatioSpread, Backspread, Custom:
		return ShapeApprox
	default:
		return ShapeUnknown
	}
}

// DualBreakEven reports whether the strategy produces two break-even prices.
func DualBreakEven(name string) bool {
	switch Shape(name) {
	case ShapeIronCondor, ShapeIronFly, ShapeButterfly, ShapeStrangle, ShapeStraddle, ShapeCollar:
		return true
	default:
		return false
	}
}

// DualDeltaPOP reports whether the strategy's POP estimate combines two
// short-leg deltas.
func DualDeltaPOP(name string) bool {
	switch name {
	case IronCondor, IronFly, Strangle, Straddle:
		return true
	default:
		return false
	}
}
