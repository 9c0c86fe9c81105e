package models

import (
	"fmt"
	"strings"
	"time"
)

// SharesPerContract is the standard option contract multiplier.
const SharesPerContract = 100.0

// Side represents which way a leg was traded.
type Side string

const (
	// SideSell is a short leg (premium collected).
	SideSell Side = "Sell"
	// SideBuy is a long leg (premium paid).
	SideBuy Side = "Buy"
)

// Valid returns true if the Side is one of the defined constants.
func (s Side) Valid() bool {
	return s == SideSell || s == SideBuy
}

// OptionType represents the contract type of a leg.
type OptionType string

const (
	// OptionPut is a put contract.
	OptionPut OptionType = "Put"
	// OptionCall is a call contract.
	OptionCall OptionType = "Call"
)

// Valid returns true if the OptionType is one of the defined constants.
func (o OptionType) Valid() bool {
	return o == OptionPut || o == OptionCall
}

// Status represents the lifecycle state of a leg record. All legs sharing a
// chain ID carry the same status at any point in time.
type Status string

const (
	// StatusOpen is an active position.
	StatusOpen Status = "Open"
	// StatusClosed is a position bought back or expired.
	StatusClosed Status = "Closed"
	// StatusRolled is a position closed as part of a roll; its replacement
	// legs point back at it via ParentID.
	StatusRolled Status = "Rolled"
	// StatusAssigned is a short position exercised against the account.
	StatusAssigned Status = "Assigned"
)

// Valid returns true if the Status is one of the defined constants.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusRolled, StatusAssigned:
		return true
	default:
		return false
	}
}

// Terminal returns true when no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusRolled || s == StatusAssigned
}

// LegRecord is one row of the journal: a single option leg at one lifecycle
// step. Legs opened together as one strategy instance share a ChainID, and
// exactly one leg per chain group (the primary, first inserted) carries the
// group's aggregate financial fields; sibling legs store zero for those
// fields so that summing over a group never double-counts premium.
type LegRecord struct {
	ID       string `json:"id"`
	ChainID  string `json:"chain_id"`
	ParentID string `json:"parent_id,omitempty"` // leg this one replaced via a roll

	Ticker       string `json:"ticker"`
	StrategyName string `json:"strategy_name"`
	SetupTag     string `json:"setup_tag,omitempty"`
	Tags         string `json:"tags,omitempty"`

	Side       Side       `json:"side"`
	OptionType OptionType `json:"option_type"`
	Strike     float64    `json:"strike"`
	Delta      float64    `json:"delta"`

	// Aggregate fields, non-zero on the primary leg only. Premium and cost
	// are per-share prices, never pre-multiplied by 100.
	EntryPremium    float64 `json:"entry_premium"`
	ExitCost        float64 `json:"exit_cost"`
	ReservedCapital float64 `json:"reserved_capital"`
	BreakEvenLower  float64 `json:"break_even_lower"`
	BreakEvenUpper  float64 `json:"break_even_upper"` // dual-break-even shapes only
	POP             float64 `json:"pop"`
	MaxProfitUSD    float64 `json:"max_profit_usd"`

	Contracts int    `json:"contracts"`
	Status    Status `json:"status"`

	OpenedAt time.Time `json:"opened_at"`
	Expiry   time.Time `json:"expiry"`
	ClosedAt time.Time `json:"closed_at,omitempty"` // zero while open

	StockPriceAtClose    float64 `json:"stock_price_at_close,omitempty"`
	RealizedPnL          float64 `json:"realized_pnl"`
	RealizedPctOfPremium float64 `json:"realized_pct_of_premium"`
	RealizedPctOfCapital float64 `json:"realized_pct_of_capital"`

	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DTE returns the whole days remaining until expiry, floored at zero.
func (r *LegRecord) DTE() int {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	exp := r.Expiry.UTC().Truncate(24 * time.Hour)
	days := int(exp.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsOpen reports whether the leg is still active.
func (r *LegRecord) IsOpen() bool {
	return r.Status == StatusOpen
}

// AppendNote appends a structured marker to the free-text notes field.
func (r *LegRecord) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if r.Notes == "" {
		r.Notes = note
		return
	}
	r.Notes = r.Notes + " | " + note
}

// Validate ensures the record is consistent with its lifecycle state.
func (r *LegRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("leg record missing ID")
	}
	if r.ChainID == "" {
		return fmt.Errorf("leg %s: missing chain ID", r.ID)
	}
	if !r.Side.Valid() {
		return fmt.Errorf("leg %s: invalid side %q", r.ID, r.Side)
	}
	if !r.OptionType.Valid() {
		return fmt.Errorf("leg %s: invalid option type %q", r.ID, r.OptionType)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("leg %s: invalid status %q", r.ID, r.Status)
	}
	if r.Strike < 0 {
		return fmt.Errorf("leg %s: strike cannot be negative (current: %.2f)", r.ID, r.Strike)
	}
	if r.Contracts <= 0 {
		return fmt.Errorf("leg %s: contracts must be positive (current: %d)", r.ID, r.Contracts)
	}

	switch r.Status {
	case StatusOpen:
		if !r.ClosedAt.IsZero() {
			return fmt.Errorf("leg %s in state %s: ClosedAt must be zero for open legs (current: %v)",
				r.ID, r.Status, r.ClosedAt)
		}
		if r.ExitCost != 0 {
			return fmt.Errorf("leg %s in state %s: ExitCost must be zero for open legs (current: %.2f)",
				r.ID, r.Status, r.ExitCost)
		}
	case StatusClosed, StatusRolled, StatusAssigned:
		if r.ClosedAt.IsZero() {
			return fmt.Errorf("leg %s in state %s: ClosedAt must be set for terminal legs", r.ID, r.Status)
		}
		if !r.OpenedAt.IsZero() && r.ClosedAt.Before(r.OpenedAt) {
			return fmt.Errorf("leg %s in state %s: ClosedAt (%v) precedes OpenedAt (%v)",
				r.ID, r.Status, r.ClosedAt, r.OpenedAt)
		}
	}

	return nil
}
