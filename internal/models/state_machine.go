// Package models provides the journal's data structures and the lifecycle
// state machine governing leg record transitions.
package models

import (
	"fmt"
	"time"
)

// Transition conditions accepted by the state machine.
const (
	// CondFullClose closes every leg of a chain group at once.
	CondFullClose = "full_close"
	// CondPartialClose records the split-off closed quantity of a group.
	CondPartialClose = "partial_close"
	// CondRoll closes legs that are being replaced by a new chain group.
	CondRoll = "roll"
	// CondAssignment marks short legs exercised against the account.
	CondAssignment = "assignment"
	// CondExpired closes legs that expired worthless.
	CondExpired = "expired"
)

// StateTransition defines a valid lifecycle transition.
type StateTransition struct {
	From        Status
	To          Status
	Condition   string
	Description string
}

// ValidTransitions is the closed set of allowed lifecycle transitions.
// Closed, Rolled and Assigned are terminal: rolled legs are never reopened,
// a roll's replacement legs are new records in state Open.
var ValidTransitions = []StateTransition{
	{StatusOpen, StatusClosed, CondFullClose, "All legs of the group bought back"},
	{StatusOpen, StatusClosed, CondPartialClose, "Split-off record holding a partially closed quantity"},
	{StatusOpen, StatusClosed, CondExpired, "Legs expired worthless"},
	{StatusOpen, StatusRolled, CondRoll, "Legs closed and replaced by a new chain group"},
	{StatusOpen, StatusAssigned, CondAssignment, "Short legs exercised, stock delivered"},
}

// CanTransition reports whether moving from one status to another under the
// given condition is allowed.
func CanTransition(from, to Status, condition string) error {
	if from.Terminal() {
		return fmt.Errorf("status %s is terminal, no transition to %s allowed", from, to)
	}
	for _, tr := range ValidTransitions {
		if tr.From != from || tr.To != to {
			continue
		}
		if tr.Condition == "" || tr.Condition == condition {
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s with condition %q", from, to, condition)
}

// Transition moves the leg record to a new status after validating the move,
// stamping ClosedAt and UpdatedAt. Failed validation leaves the record
// untouched.
func (r *LegRecord) Transition(to Status, condition string, at time.Time) error {
	if err := CanTransition(r.Status, to, condition); err != nil {
		return fmt.Errorf("leg %s: %w", r.ID, err)
	}

	r.Status = to
	if to.Terminal() && r.ClosedAt.IsZero() {
		r.ClosedAt = at
	}
	r.UpdatedAt = at
	return nil
}

// StatusDescription returns a human-readable description of a status.
func StatusDescription(s Status) string {
	switch s {
	case StatusOpen:
		return "Position open, collecting or paying theta"
	case StatusClosed:
		return "Position closed, outcome realized"
	case StatusRolled:
		return "Position rolled into a replacement chain group"
	case StatusAssigned:
		return "Short legs assigned, converted to stock"
	default:
		return "Unknown status"
	}
}
