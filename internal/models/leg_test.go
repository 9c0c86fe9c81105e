package models

import (
	"testing"
	"time"
)

func validOpenLeg() LegRecord {
	return LegRecord{
		ID:           "a1b2c3d4",
		ChainID:      "e5f6a7b8",
		Ticker:       "SPY",
		StrategyName: "CSP (Cash Secured Put)",
		Side:         SideSell,
		OptionType:   OptionPut,
		Strike:       450,
		Delta:        -0.30,
		EntryPremium: 1.50,
		Contracts:    1,
		Status:       StatusOpen,
		OpenedAt:     time.Now().UTC(),
		Expiry:       time.Now().UTC().AddDate(0, 0, 45),
	}
}

func TestLegRecord_Validate(t *testing.T) {
	leg := validOpenLeg()
	if err := leg.Validate(); err != nil {
		t.Fatalf("valid open leg should pass: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*LegRecord)
	}{
		{"missing id", func(r *LegRecord) { r.ID = "" }},
		{"missing chain id", func(r *LegRecord) { r.ChainID = "" }},
		{"bad side", func(r *LegRecord) { r.Side = "Hold" }},
		{"bad option type", func(r *LegRecord) { r.OptionType = "Future" }},
		{"bad status", func(r *LegRecord) { r.Status = "Pending" }},
		{"negative strike", func(r *LegRecord) { r.Strike = -1 }},
		{"zero contracts", func(r *LegRecord) { r.Contracts = 0 }},
		{"open with exit cost", func(r *LegRecord) { r.ExitCost = 0.5 }},
		{"open with closed date", func(r *LegRecord) { r.ClosedAt = time.Now() }},
	}

	for _, tc := range cases {
		leg := validOpenLeg()
		tc.mutate(&leg)
		if err := leg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLegRecord_ValidateTerminal(t *testing.T) {
	leg := validOpenLeg()
	leg.Status = StatusClosed
	if err := leg.Validate(); err == nil {
		t.Error("closed leg without ClosedAt should fail validation")
	}

	leg.ClosedAt = leg.OpenedAt.AddDate(0, 0, 20)
	leg.ExitCost = 0.50
	if err := leg.Validate(); err != nil {
		t.Errorf("closed leg with ClosedAt should pass: %v", err)
	}

	leg.ClosedAt = leg.OpenedAt.AddDate(0, 0, -1)
	if err := leg.Validate(); err == nil {
		t.Error("ClosedAt before OpenedAt should fail validation")
	}
}

func TestLegRecord_DTE(t *testing.T) {
	leg := validOpenLeg()
	leg.Expiry = time.Now().UTC().AddDate(0, 0, 30)
	dte := leg.DTE()
	if dte < 29 || dte > 30 {
		t.Errorf("DTE should be about 30, got %d", dte)
	}

	leg.Expiry = time.Now().UTC().AddDate(0, 0, -5)
	if leg.DTE() != 0 {
		t.Errorf("past expiry should floor DTE at 0, got %d", leg.DTE())
	}
}

func TestLegRecord_AppendNote(t *testing.T) {
	leg := validOpenLeg()
	leg.AppendNote("Part of Iron Condor")
	if leg.Notes != "Part of Iron Condor" {
		t.Errorf("unexpected notes: %q", leg.Notes)
	}
	leg.AppendNote("Roll from e5f6a7b8")
	if leg.Notes != "Part of Iron Condor | Roll from e5f6a7b8" {
		t.Errorf("unexpected notes: %q", leg.Notes)
	}
	leg.AppendNote("  ")
	if leg.Notes != "Part of Iron Condor | Roll from e5f6a7b8" {
		t.Errorf("blank note should be ignored, got %q", leg.Notes)
	}
}
