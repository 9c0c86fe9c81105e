package ledger

import (
	"fmt"
	"time"

	"github.com/jcalderon/strikelog/internal/catalog"
	"github.com/jcalderon/strikelog/internal/models"
	"github.com/jcalderon/strikelog/internal/strategy"
)

// LegInput is one user-entered leg of a strategy being opened or rolled.
type LegInput struct {
	Side       models.Side
	OptionType models.OptionType
	Strike     float64
	Delta      float64
}

// OpenParams describes a new strategy instance. Premium and reserved
// capital are group-wide: they end up on the primary leg only.
type OpenParams struct {
	Ticker       string
	StrategyName string
	SetupTag     string
	Tags         string

	Legs            []LegInput
	NetPremium      float64
	ReservedCapital float64
	Contracts       int

	OpenedAt time.Time
	Expiry   time.Time

	// Manual overrides; zero means "compute".
	BreakEvenLower float64
	BreakEvenUpper float64
	POP            float64

	Notes string
}

// Open records a new chain group, one leg record per leg, with the primary
// leg carrying the group's net premium, reserved capital, break-evens, POP
// and max profit. Validation failures reject the whole operation before any
// record is inserted.
func (l *Ledger) Open(p OpenParams) (chainID string, err error) {
	if p.Ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if len(p.Legs) == 0 {
		return "", fmt.Errorf("at least one leg is required")
	}
	if p.Contracts <= 0 {
		return "", fmt.Errorf("contracts must be positive (got %d)", p.Contracts)
	}
	if !catalog.Known(p.StrategyName) {
		return "", fmt.Errorf("unknown strategy %q", p.StrategyName)
	}
	for i, leg := range p.Legs {
		if !leg.Side.Valid() {
			return "", fmt.Errorf("leg %d: invalid side %q", i+1, leg.Side)
		}
		if !leg.OptionType.Valid() {
			return "", fmt.Errorf("leg %d: invalid option type %q", i+1, leg.OptionType)
		}
		if leg.Strike < 0 {
			return "", fmt.Errorf("leg %d: strike cannot be negative", i+1)
		}
	}

	at := p.OpenedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	beLower, beUpper := p.BreakEvenLower, p.BreakEvenUpper
	if beLower == 0 {
		beLower, beUpper = strategy.SolveBreakeven(p.StrategyName, solverLegs(p.Legs), p.NetPremium)
	}
	pop := p.POP
	if pop == 0 {
		pop = popForLegs(p.StrategyName, p.Legs)
	}

	chainID = newID()
	recs := make([]*models.LegRecord, 0, len(p.Legs))
	for i, leg := range p.Legs {
		rec := &models.LegRecord{
			ID:           newID(),
			ChainID:      chainID,
			Ticker:       p.Ticker,
			StrategyName: p.StrategyName,
			SetupTag:     p.SetupTag,
			Tags:         p.Tags,
			Side:         leg.Side,
			OptionType:   leg.OptionType,
			Strike:       leg.Strike,
			Delta:        leg.Delta,
			Contracts:    p.Contracts,
			Status:       models.StatusOpen,
			OpenedAt:     at,
			Expiry:       p.Expiry,
			Notes:        p.Notes,
			UpdatedAt:    at,
		}
		if rec.Notes == "" {
			rec.Notes = fmt.Sprintf("Part of %s", p.StrategyName)
		}
		if i == 0 {
			rec.EntryPremium = p.NetPremium
			rec.ReservedCapital = p.ReservedCapital
			rec.BreakEvenLower = beLower
			rec.BreakEvenUpper = beUpper
			rec.POP = pop
			rec.MaxProfitUSD = strategy.MaxProfit(p.NetPremium, p.Contracts)
		}
		if err := rec.Validate(); err != nil {
			return "", err
		}
		recs = append(recs, rec)
	}

	for _, rec := range recs {
		l.add(rec)
	}
	return chainID, nil
}

// RollParams describes closing a set of legs and opening their replacement
// group. LegIDs may be a subset of one chain group; unselected legs remain
// open in the original group.
type RollParams struct {
	LegIDs []string

	// CloseCost is the per-share cost paid to close the selected legs,
	// recorded on the group's financial carrier.
	CloseCost   float64
	RealizedPnL *float64 // overrides the computed outcome when set

	NewLegs       []LegInput
	NewNetPremium float64
	NewExpiry     time.Time

	At    time.Time
	Notes string
}

// Roll closes the selected legs as Rolled and opens a replacement chain
// group, each new leg's ParentID pointing at the rolled leg it replaces.
// The replacement's break-even is recomputed from the campaign's cumulative
// net credit, inclusive of the new premium, not just the new group's entry.
func (l *Ledger) Roll(p RollParams) (newChainID string, err error) {
	if len(p.LegIDs) == 0 {
		return "", fmt.Errorf("at least one leg to roll is required")
	}
	if len(p.NewLegs) == 0 {
		return "", fmt.Errorf("at least one replacement leg is required")
	}
	if p.NewExpiry.IsZero() {
		return "", fmt.Errorf("new expiry is required")
	}

	selected, chainID, err := l.resolveOpenLegs(p.LegIDs)
	if err != nil {
		return "", err
	}
	for i, leg := range p.NewLegs {
		if !leg.Side.Valid() || !leg.OptionType.Valid() {
			return "", fmt.Errorf("replacement leg %d: invalid side or option type", i+1)
		}
	}

	at := p.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	oldPrimary := l.primary(chainID)
	carrier := financialCarrier(oldPrimary, selected)

	outcome := strategy.PnL(
		oldPrimary.EntryPremium, p.CloseCost, carrier.Contracts,
		oldPrimary.StrategyName, oldPrimary.ReservedCapital, oldPrimary.Side,
	)
	if p.RealizedPnL != nil {
		outcome.PnLUSD = *p.RealizedPnL
		if oldPrimary.ReservedCapital > 0 {
			outcome.PctOfCapital = outcome.PnLUSD / oldPrimary.ReservedCapital * 100
		}
	}

	// Close out the selected legs.
	for _, leg := range selected {
		if err := leg.Transition(models.StatusRolled, models.CondRoll, at); err != nil {
			return "", err
		}
	}
	carrier.ExitCost = p.CloseCost
	carrier.RealizedPnL = outcome.PnLUSD
	carrier.RealizedPctOfPremium = outcome.PctOfPremium
	carrier.RealizedPctOfCapital = outcome.PctOfCapital
	if carrier != oldPrimary {
		// The group's primary stays open; this partial roll carries its own
		// money. Flag it rather than reordering the group.
		carrier.AppendNote("Partial roll, financial carrier for this step")
	}

	// Open the replacement group.
	newChainID = newID()
	newRecs := make([]*models.LegRecord, 0, len(p.NewLegs))
	for i, leg := range p.NewLegs {
		parent := selected[len(selected)-1]
		if i < len(selected) {
			parent = selected[i]
		}
		rec := &models.LegRecord{
			ID:           newID(),
			ChainID:      newChainID,
			ParentID:     parent.ID,
			Ticker:       oldPrimary.Ticker,
			StrategyName: oldPrimary.StrategyName,
			SetupTag:     oldPrimary.SetupTag,
			Tags:         oldPrimary.Tags,
			Side:         leg.Side,
			OptionType:   leg.OptionType,
			Strike:       leg.Strike,
			Delta:        leg.Delta,
			Contracts:    parent.Contracts,
			Status:       models.StatusOpen,
			OpenedAt:     at,
			Expiry:       p.NewExpiry,
			Notes:        p.Notes,
			UpdatedAt:    at,
		}
		if rec.Notes == "" {
			rec.Notes = fmt.Sprintf("Roll from %s", chainID)
		}
		if i == 0 {
			rec.EntryPremium = p.NewNetPremium
			rec.ReservedCapital = oldPrimary.ReservedCapital
			rec.MaxProfitUSD = strategy.MaxProfit(p.NewNetPremium, parent.Contracts)
			rec.POP = popForLegs(oldPrimary.StrategyName, p.NewLegs)
		}
		newRecs = append(newRecs, rec)
	}
	for _, rec := range newRecs {
		l.add(rec)
	}

	// Break-even reflects the whole campaign's net credit to date, which is
	// only known once the new group is part of the arena.
	newPrimary := newRecs[0]
	chainNet := l.ChainNetCredit(newPrimary.ID)
	newPrimary.BreakEvenLower, newPrimary.BreakEvenUpper =
		strategy.SolveBreakeven(newPrimary.StrategyName, solverLegs(p.NewLegs), chainNet)

	return newChainID, nil
}

// CloseParams describes closing a whole chain group at once.
type CloseParams struct {
	ChainID     string
	ExitCost    float64
	StockPrice  float64
	RealizedPnL *float64 // overrides the computed outcome when set
	Expired     bool     // legs expired worthless; exit cost forced to zero
	At          time.Time
}

// Close transitions every leg of the group to Closed, recording exit cost
// and realized outcome on the primary leg and zero on siblings so group
// sums stay correct.
func (l *Ledger) Close(p CloseParams) error {
	legs, err := l.openChain(p.ChainID)
	if err != nil {
		return err
	}

	at := p.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	condition := models.CondFullClose
	exitCost := p.ExitCost
	if p.Expired {
		condition = models.CondExpired
		exitCost = 0
	}

	primary := legs[0]
	outcome := strategy.PnL(
		primary.EntryPremium, exitCost, primary.Contracts,
		primary.StrategyName, primary.ReservedCapital, primary.Side,
	)
	if p.RealizedPnL != nil {
		outcome.PnLUSD = *p.RealizedPnL
		if primary.ReservedCapital > 0 {
			outcome.PctOfCapital = outcome.PnLUSD / primary.ReservedCapital * 100
		}
	}

	for _, leg := range legs {
		if err := leg.Transition(models.StatusClosed, condition, at); err != nil {
			return err
		}
		leg.StockPriceAtClose = p.StockPrice
	}
	primary.ExitCost = exitCost
	primary.RealizedPnL = outcome.PnLUSD
	primary.RealizedPctOfPremium = outcome.PctOfPremium
	primary.RealizedPctOfCapital = outcome.PctOfCapital
	return nil
}

// PartialCloseParams describes closing part of a group's contracts.
type PartialCloseParams struct {
	ChainID    string
	Quantity   int
	ExitCost   float64
	StockPrice float64
	At         time.Time
}

// ClosePartial splits a chain group: the primary leg's contract count is
// reduced by the closed quantity and a new Closed record is appended
// carrying the realized outcome for that quantity. The open remainder keeps
// its status and premium, so the one-financial-carrier invariant holds
// independently for the remaining group and the new closed leg.
func (l *Ledger) ClosePartial(p PartialCloseParams) (closedLegID string, err error) {
	legs, err := l.openChain(p.ChainID)
	if err != nil {
		return "", err
	}
	primary := legs[0]
	if p.Quantity <= 0 {
		return "", fmt.Errorf("quantity must be positive (got %d)", p.Quantity)
	}
	if p.Quantity >= primary.Contracts {
		return "", fmt.Errorf("partial close quantity %d must be below the group's %d contracts, use a full close",
			p.Quantity, primary.Contracts)
	}

	at := p.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	remainderCapital := 0.0
	closedCapital := 0.0
	if primary.Contracts > 0 {
		share := float64(p.Quantity) / float64(primary.Contracts)
		closedCapital = primary.ReservedCapital * share
		remainderCapital = primary.ReservedCapital - closedCapital
	}
	outcome := strategy.PnL(
		primary.EntryPremium, p.ExitCost, p.Quantity,
		primary.StrategyName, closedCapital, primary.Side,
	)

	closed := &models.LegRecord{
		ID:                newID(),
		ChainID:           primary.ChainID,
		Ticker:            primary.Ticker,
		StrategyName:      primary.StrategyName,
		SetupTag:          primary.SetupTag,
		Tags:              primary.Tags,
		Side:              primary.Side,
		OptionType:        primary.OptionType,
		Strike:            primary.Strike,
		Delta:             primary.Delta,
		Contracts:         p.Quantity,
		Status:            models.StatusOpen,
		OpenedAt:          primary.OpenedAt,
		Expiry:            primary.Expiry,
		StockPriceAtClose: p.StockPrice,
		Notes:             fmt.Sprintf("Partial close of %d from %s", p.Quantity, primary.ChainID),
		UpdatedAt:         at,
	}
	if err := closed.Transition(models.StatusClosed, models.CondPartialClose, at); err != nil {
		return "", err
	}
	closed.ExitCost = p.ExitCost
	closed.RealizedPnL = outcome.PnLUSD
	closed.RealizedPctOfPremium = outcome.PctOfPremium
	closed.RealizedPctOfCapital = outcome.PctOfCapital

	primary.Contracts -= p.Quantity
	primary.ReservedCapital = remainderCapital
	primary.MaxProfitUSD = strategy.MaxProfit(primary.EntryPremium, primary.Contracts)
	primary.UpdatedAt = at

	l.add(closed)
	return closed.ID, nil
}

// AssignParams describes an assignment of a group's short legs.
type AssignParams struct {
	ChainID    string
	Fees       float64
	StockPrice float64
	At         time.Time
}

// Assign transitions every leg of the group to Assigned. The option side of
// the trade realizes the whole entry premium less fees; the resulting stock
// position lives outside this ledger.
func (l *Ledger) Assign(p AssignParams) error {
	legs, err := l.openChain(p.ChainID)
	if err != nil {
		return err
	}

	at := p.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	primary := legs[0]
	realized := strategy.MaxProfit(primary.EntryPremium, primary.Contracts) - p.Fees

	for _, leg := range legs {
		if err := leg.Transition(models.StatusAssigned, models.CondAssignment, at); err != nil {
			return err
		}
		leg.StockPriceAtClose = p.StockPrice
	}
	primary.RealizedPnL = realized
	if premiumUSD := strategy.MaxProfit(primary.EntryPremium, primary.Contracts); premiumUSD > 0 {
		primary.RealizedPctOfPremium = realized / premiumUSD * 100
	}
	if primary.ReservedCapital > 0 {
		primary.RealizedPctOfCapital = realized / primary.ReservedCapital * 100
	}
	primary.AppendNote(fmt.Sprintf("Assigned at %.2f", p.StockPrice))
	return nil
}

// resolveOpenLegs validates that the IDs exist, are distinct, share one
// chain group and are all open.
func (l *Ledger) resolveOpenLegs(ids []string) ([]*models.LegRecord, string, error) {
	seen := make(map[string]bool, len(ids))
	legs := make([]*models.LegRecord, 0, len(ids))
	chainID := ""
	for _, id := range ids {
		if seen[id] {
			return nil, "", fmt.Errorf("leg %q selected twice", id)
		}
		seen[id] = true
		rec, ok := l.byID[id]
		if !ok {
			return nil, "", fmt.Errorf("leg %q not found", id)
		}
		if chainID == "" {
			chainID = rec.ChainID
		} else if rec.ChainID != chainID {
			return nil, "", fmt.Errorf("legs span chain groups %q and %q, roll one group at a time", chainID, rec.ChainID)
		}
		if rec.Status != models.StatusOpen {
			return nil, "", fmt.Errorf("leg %q is %s, only open legs can be rolled", id, rec.Status)
		}
		legs = append(legs, rec)
	}
	return legs, chainID, nil
}

// openChain returns the group's still-open legs, primary first, erroring
// when the group does not exist or is no longer open.
func (l *Ledger) openChain(chainID string) ([]*models.LegRecord, error) {
	all := l.chainLegs(chainID)
	if len(all) == 0 {
		return nil, fmt.Errorf("chain %q not found", chainID)
	}
	var open []*models.LegRecord
	for _, leg := range all {
		if leg.Status == models.StatusOpen {
			open = append(open, leg)
		}
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("chain %q has no open legs", chainID)
	}
	return open, nil
}

// financialCarrier picks the leg that records this step's exit money: the
// group primary when it is part of the selection, otherwise the first
// selected leg.
func financialCarrier(primary *models.LegRecord, selected []*models.LegRecord) *models.LegRecord {
	for _, leg := range selected {
		if leg == primary {
			return leg
		}
	}
	return selected[0]
}

func solverLegs(legs []LegInput) []strategy.Leg {
	out := make([]strategy.Leg, len(legs))
	for i, leg := range legs {
		out[i] = strategy.Leg{Side: leg.Side, OptionType: leg.OptionType, Strike: leg.Strike}
	}
	return out
}

// popForLegs estimates POP for a group. Dual-delta strategies combine the
// short put and short call deltas when both are known; everything else uses
// the first leg.
func popForLegs(name string, legs []LegInput) float64 {
	if len(legs) == 0 {
		return 0
	}
	if catalog.DualDeltaPOP(name) {
		putDelta, okPut := shortDelta(legs, models.OptionPut)
		callDelta, okCall := shortDelta(legs, models.OptionCall)
		if okPut && okCall {
			return strategy.POP(putDelta, models.SideSell, callDelta)
		}
	}
	return strategy.POP(legs[0].Delta, legs[0].Side, 0)
}

func shortDelta(legs []LegInput, t models.OptionType) (float64, bool) {
	for _, leg := range legs {
		if leg.Side == models.SideSell && leg.OptionType == t && leg.Delta != 0 {
			return leg.Delta, true
		}
	}
	return 0, false
}
