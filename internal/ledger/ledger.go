// Package ledger holds the in-memory strategy ledger: an arena of leg
// records indexed by ID and grouped by chain ID, the roll-chain tracker,
// and the lifecycle operations that mutate the ledger as one atomic unit
// per user action.
package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jcalderon/strikelog/internal/models"
)

// Ledger is the arena of all leg records, in insertion order. Parent links
// between records are resolved through the ID index rather than pointers,
// which keeps cycle detection trivial.
//
// The ledger is single-threaded by design: each lifecycle operation reads,
// computes and writes back before the next one is accepted. It is not safe
// for concurrent use.
type Ledger struct {
	records []*models.LegRecord
	byID    map[string]*models.LegRecord
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{byID: make(map[string]*models.LegRecord)}
}

// FromRecords builds a ledger from persisted records, preserving their
// order. Duplicate IDs are a data-integrity failure.
func FromRecords(records []models.LegRecord) (*Ledger, error) {
	l := New()
	for i := range records {
		rec := records[i]
		if _, exists := l.byID[rec.ID]; exists {
			return nil, fmt.Errorf("duplicate leg ID %q in ledger", rec.ID)
		}
		l.add(&rec)
	}
	return l, nil
}

// newID generates a short opaque identifier, an 8-char UUID prefix.
func newID() string {
	return uuid.New().String()[:8]
}

func (l *Ledger) add(rec *models.LegRecord) {
	l.records = append(l.records, rec)
	l.byID[rec.ID] = rec
}

// Len returns the number of leg records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of every leg record in insertion order.
func (l *Ledger) Records() []models.LegRecord {
	out := make([]models.LegRecord, len(l.records))
	for i, rec := range l.records {
		out[i] = *rec
	}
	return out
}

// Get returns a copy of the leg record with the given ID.
func (l *Ledger) Get(id string) (models.LegRecord, bool) {
	rec, ok := l.byID[id]
	if !ok {
		return models.LegRecord{}, false
	}
	return *rec, true
}

// Chain returns copies of all legs sharing a chain ID, in insertion order.
// The first leg is the group's primary: the one carrying the aggregate
// financial fields.
func (l *Ledger) Chain(chainID string) []models.LegRecord {
	legs := l.chainLegs(chainID)
	out := make([]models.LegRecord, len(legs))
	for i, rec := range legs {
		out[i] = *rec
	}
	return out
}

// PrimaryLeg returns a copy of the chain group's financial-bearing leg.
func (l *Ledger) PrimaryLeg(chainID string) (models.LegRecord, bool) {
	if rec := l.primary(chainID); rec != nil {
		return *rec, true
	}
	return models.LegRecord{}, false
}

// ChainIDs returns every distinct chain ID in first-seen order.
func (l *Ledger) ChainIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range l.records {
		if !seen[rec.ChainID] {
			seen[rec.ChainID] = true
			out = append(out, rec.ChainID)
		}
	}
	return out
}

// Update replaces a record in place after validating it, for direct user
// edits. The ID, chain ID and position in the ledger are immutable.
func (l *Ledger) Update(rec models.LegRecord) error {
	existing, ok := l.byID[rec.ID]
	if !ok {
		return fmt.Errorf("leg %q not found", rec.ID)
	}
	if rec.ChainID != existing.ChainID {
		return fmt.Errorf("leg %q: chain ID is immutable", rec.ID)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	*existing = rec
	return nil
}

// Delete removes a record by explicit user request. Lifecycle operations
// never delete; history is append-only.
func (l *Ledger) Delete(id string) error {
	if _, ok := l.byID[id]; !ok {
		return fmt.Errorf("leg %q not found", id)
	}
	delete(l.byID, id)
	for i, rec := range l.records {
		if rec.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			break
		}
	}
	return nil
}

func (l *Ledger) chainLegs(chainID string) []*models.LegRecord {
	var legs []*models.LegRecord
	for _, rec := range l.records {
		if rec.ChainID == chainID {
			legs = append(legs, rec)
		}
	}
	return legs
}

func (l *Ledger) primary(chainID string) *models.LegRecord {
	for _, rec := range l.records {
		if rec.ChainID == chainID {
			return rec
		}
	}
	return nil
}
