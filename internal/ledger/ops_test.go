package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon/strikelog/internal/catalog"
	"github.com/jcalderon/strikelog/internal/models"
)

func TestOpen_IronCondor(t *testing.T) {
	l := New()
	chainID, err := l.Open(OpenParams{
		Ticker:       "XYZ",
		StrategyName: catalog.IronCondor,
		Legs: []LegInput{
			{Side: models.SideSell, OptionType: models.OptionPut, Strike: 95, Delta: -0.20},
			{Side: models.SideBuy, OptionType: models.OptionPut, Strike: 90, Delta: -0.10},
			{Side: models.SideSell, OptionType: models.OptionCall, Strike: 105, Delta: 0.15},
			{Side: models.SideBuy, OptionType: models.OptionCall, Strike: 110, Delta: 0.08},
		},
		NetPremium:      2.00,
		ReservedCapital: 500,
		Contracts:       1,
		Expiry:          time.Now().UTC().AddDate(0, 0, 45),
	})
	require.NoError(t, err)

	legs := l.Chain(chainID)
	require.Len(t, legs, 4)

	primary := legs[0]
	assert.InDelta(t, 93.00, primary.BreakEvenLower, 1e-9)
	assert.InDelta(t, 107.00, primary.BreakEvenUpper, 1e-9)
	assert.InDelta(t, 65.0, primary.POP, 1e-9, "short put -0.20 and short call 0.15")
	assert.InDelta(t, 200.0, primary.MaxProfitUSD, 1e-9)

	for _, leg := range legs[1:] {
		assert.Zero(t, leg.EntryPremium)
		assert.Zero(t, leg.ReservedCapital)
		assert.Zero(t, leg.BreakEvenLower)
		assert.Zero(t, leg.POP)
	}
	for _, leg := range legs {
		assert.Equal(t, models.StatusOpen, leg.Status)
	}
}

func TestOpen_ValidationRejectsBeforeMutation(t *testing.T) {
	l := New()
	cases := []OpenParams{
		{StrategyName: catalog.CSP, Legs: []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 50}}, Contracts: 1},                  // no ticker
		{Ticker: "SPY", StrategyName: catalog.CSP, Contracts: 1},                                                                                        // no legs
		{Ticker: "SPY", StrategyName: catalog.CSP, Legs: []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 50}}},                 // no contracts
		{Ticker: "SPY", StrategyName: "Jade Lizard", Legs: []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 50}}, Contracts: 1}, // unknown strategy
		{Ticker: "SPY", StrategyName: catalog.CSP, Legs: []LegInput{{Side: "Hold", OptionType: models.OptionPut, Strike: 50}}, Contracts: 1},            // bad side
		{Ticker: "SPY", StrategyName: catalog.CSP, Legs: []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: -5}}, Contracts: 1},   // bad strike
	}
	for i, p := range cases {
		_, err := l.Open(p)
		assert.Errorf(t, err, "case %d should be rejected", i)
	}
	assert.Equal(t, 0, l.Len(), "no partial state after rejected opens")
}

func TestOpen_ManualOverridesWin(t *testing.T) {
	l := New()
	chainID, err := l.Open(OpenParams{
		Ticker:         "SPY",
		StrategyName:   catalog.CSP,
		Legs:           []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 450, Delta: -0.30}},
		NetPremium:     1.50,
		Contracts:      1,
		Expiry:         time.Now().UTC().AddDate(0, 0, 45),
		BreakEvenLower: 447.25,
		POP:            72.5,
	})
	require.NoError(t, err)
	primary, _ := l.PrimaryLeg(chainID)
	assert.Equal(t, 447.25, primary.BreakEvenLower)
	assert.Equal(t, 72.5, primary.POP)
}

func TestRoll_ChainCreditFeedsNewBreakeven(t *testing.T) {
	// Scenario: CSP sold for 1.50, rolled down for 0.60 to close and 0.80
	// new credit. Chain net credit 1.70 feeds the replacement break-even.
	l := New()
	first := openCSP(t, l, "SPY", 50, 1.50, 1)
	firstPrimary, _ := l.PrimaryLeg(first)

	second, err := l.Roll(RollParams{
		LegIDs:        []string{firstPrimary.ID},
		CloseCost:     0.60,
		NewLegs:       []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 48, Delta: -0.25}},
		NewNetPremium: 0.80,
		NewExpiry:     time.Now().UTC().AddDate(0, 0, 30),
	})
	require.NoError(t, err)

	oldPrimary, _ := l.PrimaryLeg(first)
	assert.Equal(t, models.StatusRolled, oldPrimary.Status)
	assert.Equal(t, 0.60, oldPrimary.ExitCost)
	assert.InDelta(t, 90.0, oldPrimary.RealizedPnL, 1e-9, "(1.50-0.60)*1*100")
	assert.False(t, oldPrimary.ClosedAt.IsZero())

	newPrimary, _ := l.PrimaryLeg(second)
	assert.Equal(t, models.StatusOpen, newPrimary.Status)
	assert.Equal(t, firstPrimary.ID, newPrimary.ParentID)
	assert.InDelta(t, 1.70, l.ChainNetCredit(newPrimary.ID), 1e-9)
	// Break-even from chain credit: 48 - 1.70.
	assert.InDelta(t, 46.30, newPrimary.BreakEvenLower, 1e-9)
	assert.InDelta(t, 75.0, newPrimary.POP, 1e-9, "POP from the new delta")
	assert.Equal(t, firstPrimary.ReservedCapital, newPrimary.ReservedCapital,
		"reserved capital carries into the replacement group")
}

func TestRoll_SubsetLeavesSiblingsUntouched(t *testing.T) {
	l := New()
	chainID, err := l.Open(OpenParams{
		Ticker:       "SPY",
		StrategyName: catalog.Strangle,
		Legs: []LegInput{
			{Side: models.SideSell, OptionType: models.OptionPut, Strike: 440, Delta: -0.16},
			{Side: models.SideSell, OptionType: models.OptionCall, Strike: 460, Delta: 0.16},
		},
		NetPremium: 3.00,
		Contracts:  2,
		Expiry:     time.Now().UTC().AddDate(0, 0, 45),
	})
	require.NoError(t, err)
	legs := l.Chain(chainID)
	callLeg := legs[1] // roll the tested call side only

	_, err = l.Roll(RollParams{
		LegIDs:        []string{callLeg.ID},
		CloseCost:     0.90,
		NewLegs:       []LegInput{{Side: models.SideSell, OptionType: models.OptionCall, Strike: 470, Delta: 0.16}},
		NewNetPremium: 0.70,
		NewExpiry:     time.Now().UTC().AddDate(0, 0, 45),
	})
	require.NoError(t, err)

	putLeg, _ := l.Get(legs[0].ID)
	assert.Equal(t, models.StatusOpen, putLeg.Status, "unselected leg stays open")

	rolled, _ := l.Get(callLeg.ID)
	assert.Equal(t, models.StatusRolled, rolled.Status)
	// The primary stayed open, so this step's money lives on the rolled leg.
	assert.Equal(t, 0.90, rolled.ExitCost)
	assert.Contains(t, rolled.Notes, "financial carrier")
}

func TestRoll_Validation(t *testing.T) {
	l := New()
	first := openCSP(t, l, "SPY", 50, 1.50, 1)
	primary, _ := l.PrimaryLeg(first)
	other := openCSP(t, l, "QQQ", 380, 2.10, 1)
	otherPrimary, _ := l.PrimaryLeg(other)

	newLegs := []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 48}}
	expiry := time.Now().UTC().AddDate(0, 0, 30)

	cases := []RollParams{
		{LegIDs: nil, NewLegs: newLegs, NewExpiry: expiry},
		{LegIDs: []string{primary.ID}, NewLegs: nil, NewExpiry: expiry},
		{LegIDs: []string{primary.ID}, NewLegs: newLegs},
		{LegIDs: []string{"ghost"}, NewLegs: newLegs, NewExpiry: expiry},
		{LegIDs: []string{primary.ID, primary.ID}, NewLegs: newLegs, NewExpiry: expiry},
		{LegIDs: []string{primary.ID, otherPrimary.ID}, NewLegs: newLegs, NewExpiry: expiry},
	}
	for i, p := range cases {
		_, err := l.Roll(p)
		assert.Errorf(t, err, "case %d should be rejected", i)
	}

	// Rejected rolls leave everything open and unchanged.
	got, _ := l.PrimaryLeg(first)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, 2, l.Len())
}

func TestClose_FullGroup(t *testing.T) {
	l := New()
	chainID, err := l.Open(OpenParams{
		Ticker:       "XYZ",
		StrategyName: catalog.IronCondor,
		Legs: []LegInput{
			{Side: models.SideSell, OptionType: models.OptionPut, Strike: 95, Delta: -0.20},
			{Side: models.SideBuy, OptionType: models.OptionPut, Strike: 90},
			{Side: models.SideSell, OptionType: models.OptionCall, Strike: 105, Delta: 0.15},
			{Side: models.SideBuy, OptionType: models.OptionCall, Strike: 110},
		},
		NetPremium:      2.00,
		ReservedCapital: 500,
		Contracts:       1,
		Expiry:          time.Now().UTC().AddDate(0, 0, 45),
	})
	require.NoError(t, err)

	require.NoError(t, l.Close(CloseParams{ChainID: chainID, ExitCost: 0.50, StockPrice: 101.20}))

	legs := l.Chain(chainID)
	for _, leg := range legs {
		assert.Equal(t, models.StatusClosed, leg.Status, "status uniform across the group")
		assert.Equal(t, 101.20, leg.StockPriceAtClose)
	}
	primary := legs[0]
	assert.InDelta(t, 150.0, primary.RealizedPnL, 1e-9)
	assert.InDelta(t, 75.0, primary.RealizedPctOfPremium, 1e-9)
	assert.InDelta(t, 30.0, primary.RealizedPctOfCapital, 1e-9)
	for _, leg := range legs[1:] {
		assert.Zero(t, leg.RealizedPnL)
		assert.Zero(t, leg.ExitCost)
	}

	// Closing again fails: the group has no open legs.
	assert.Error(t, l.Close(CloseParams{ChainID: chainID, ExitCost: 0.10}))
}

func TestClose_Expired(t *testing.T) {
	l := New()
	chainID := openCSP(t, l, "SPY", 450, 1.50, 2)
	require.NoError(t, l.Close(CloseParams{ChainID: chainID, ExitCost: 0.35, Expired: true}))

	primary, _ := l.PrimaryLeg(chainID)
	assert.Zero(t, primary.ExitCost, "expired close forces zero exit cost")
	assert.InDelta(t, 300.0, primary.RealizedPnL, 1e-9, "full premium kept")
}

func TestClose_ManualPnLOverride(t *testing.T) {
	l := New()
	chainID := openCSP(t, l, "SPY", 450, 1.50, 1)
	manual := 42.0
	require.NoError(t, l.Close(CloseParams{ChainID: chainID, ExitCost: 0.50, RealizedPnL: &manual}))
	primary, _ := l.PrimaryLeg(chainID)
	assert.Equal(t, 42.0, primary.RealizedPnL)
}

func TestClosePartial_SplitsGroup(t *testing.T) {
	// 3-contract CSP, close 1: the remainder keeps 2 contracts open, a new
	// Closed record carries the realized quantity, totals are conserved.
	l := New()
	chainID := openCSP(t, l, "SPY", 50, 1.50, 3)
	before, _ := l.PrimaryLeg(chainID)

	closedID, err := l.ClosePartial(PartialCloseParams{ChainID: chainID, Quantity: 1, ExitCost: 0.50})
	require.NoError(t, err)

	primary, _ := l.PrimaryLeg(chainID)
	assert.Equal(t, 2, primary.Contracts)
	assert.Equal(t, models.StatusOpen, primary.Status)
	assert.Equal(t, before.EntryPremium, primary.EntryPremium, "remainder keeps the group premium")

	closed, ok := l.Get(closedID)
	require.True(t, ok)
	assert.Equal(t, chainID, closed.ChainID)
	assert.Empty(t, closed.ParentID)
	assert.Equal(t, 1, closed.Contracts)
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.InDelta(t, 100.0, closed.RealizedPnL, 1e-9, "(1.50-0.50)*1*100")
	assert.Zero(t, closed.EntryPremium, "group premium sum stays on the primary")

	assert.Equal(t, 3, primary.Contracts+closed.Contracts, "contracts conserved across the split")

	// Reserved capital splits proportionally between remainder and realized
	// percent computation.
	assert.InDelta(t, before.ReservedCapital*2/3, primary.ReservedCapital, 1e-9)
}

func TestClosePartial_Validation(t *testing.T) {
	l := New()
	chainID := openCSP(t, l, "SPY", 50, 1.50, 2)

	_, err := l.ClosePartial(PartialCloseParams{ChainID: chainID, Quantity: 0, ExitCost: 0.50})
	assert.Error(t, err)
	_, err = l.ClosePartial(PartialCloseParams{ChainID: chainID, Quantity: 2, ExitCost: 0.50})
	assert.Error(t, err, "closing the full quantity requires a full close")
	_, err = l.ClosePartial(PartialCloseParams{ChainID: "ghost", Quantity: 1, ExitCost: 0.50})
	assert.Error(t, err)
	assert.Equal(t, 1, l.Len(), "rejected partial closes append nothing")
}

func TestAssign_RealizesPremiumLessFees(t *testing.T) {
	l := New()
	chainID := openCSP(t, l, "SPY", 450, 1.50, 2)

	require.NoError(t, l.Assign(AssignParams{ChainID: chainID, Fees: 5.0, StockPrice: 448.00}))

	primary, _ := l.PrimaryLeg(chainID)
	assert.Equal(t, models.StatusAssigned, primary.Status)
	assert.InDelta(t, 295.0, primary.RealizedPnL, 1e-9, "1.50*2*100 - 5")
	assert.Contains(t, primary.Notes, "Assigned at 448.00")
	assert.False(t, primary.ClosedAt.IsZero())
}

func TestChainRealizedPnL_AcrossRolls(t *testing.T) {
	l := New()
	first := openCSP(t, l, "SPY", 50, 1.50, 1)
	firstPrimary, _ := l.PrimaryLeg(first)

	second, err := l.Roll(RollParams{
		LegIDs:        []string{firstPrimary.ID},
		CloseCost:     0.60,
		NewLegs:       []LegInput{{Side: models.SideSell, OptionType: models.OptionPut, Strike: 48, Delta: -0.25}},
		NewNetPremium: 0.80,
		NewExpiry:     time.Now().UTC().AddDate(0, 0, 30),
	})
	require.NoError(t, err)

	secondPrimary, _ := l.PrimaryLeg(second)
	assert.InDelta(t, 90.0, l.ChainRealizedPnL(secondPrimary.ID), 1e-9, "only the rolled step has realized")

	require.NoError(t, l.Close(CloseParams{ChainID: second, ExitCost: 0.20}))
	assert.InDelta(t, 90.0+60.0, l.ChainRealizedPnL(secondPrimary.ID), 1e-9)
}
