package ledger

import "github.com/jcalderon/strikelog/internal/models"

// RollHistory walks the parent chain backward from a leg, returning one
// record per roll step, innermost (current) first, ending at the origin leg
// with no parent. A missing parent or a cycle stops the walk where the break
// occurs; the returned flag reports whether the chain was intact so callers
// can surface a data-integrity warning while still displaying the partial
// history.
func (l *Ledger) RollHistory(legID string) (steps []models.LegRecord, intact bool) {
	rec, ok := l.byID[legID]
	if !ok {
		return nil, false
	}

	seen := make(map[string]bool)
	for rec != nil {
		if seen[rec.ID] {
			return steps, false // cycle
		}
		seen[rec.ID] = true
		steps = append(steps, *rec)

		if rec.ParentID == "" {
			return steps, true
		}
		parent, ok := l.byID[rec.ParentID]
		if !ok {
			return steps, false // broken link
		}
		rec = parent
	}
	return steps, true
}

// ChainNetCredit aggregates the cumulative net premium of a whole campaign:
// for every distinct chain group encountered while walking the parent chain,
// it adds the entire group's entry premium and subtracts the exit cost of
// every leg no longer open. Summing over the full sibling group matters
// because premium is recorded once per group, on the primary leg — walking
// only same-ID ancestry would silently drop the contribution of sibling
// legs in multi-leg strategies.
func (l *Ledger) ChainNetCredit(legID string) float64 {
	var total float64
	for _, chainID := range l.walkChainIDs(legID) {
		for _, leg := range l.chainLegs(chainID) {
			total += leg.EntryPremium
			if leg.Status != models.StatusOpen {
				total -= leg.ExitCost
			}
		}
	}
	return total
}

// ChainRealizedPnL sums realized P&L over every no-longer-open leg of every
// chain group in the campaign.
func (l *Ledger) ChainRealizedPnL(legID string) float64 {
	var total float64
	for _, chainID := range l.walkChainIDs(legID) {
		for _, leg := range l.chainLegs(chainID) {
			if leg.Status != models.StatusOpen {
				total += leg.RealizedPnL
			}
		}
	}
	return total
}

// walkChainIDs returns the distinct chain IDs encountered walking the
// parent chain from legID, innermost first, with the same cycle guard as
// RollHistory.
func (l *Ledger) walkChainIDs(legID string) []string {
	rec, ok := l.byID[legID]
	if !ok {
		return nil
	}

	var chains []string
	seenLegs := make(map[string]bool)
	seenChains := make(map[string]bool)
	for rec != nil {
		if seenLegs[rec.ID] {
			break
		}
		seenLegs[rec.ID] = true
		if !seenChains[rec.ChainID] {
			seenChains[rec.ChainID] = true
			chains = append(chains, rec.ChainID)
		}
		if rec.ParentID == "" {
			break
		}
		parent, ok := l.byID[rec.ParentID]
		if !ok {
			break
		}
		rec = parent
	}
	return chains
}
