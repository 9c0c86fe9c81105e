package storage

import (
	"github.com/jcalderon/strikelog/internal/models"
)

// Interface is the contract for journal persistence.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe and can call them from multiple goroutines.
//
// Load always returns schema-normalized records: rows written by older
// versions of the journal gain the missing columns with their documented
// defaults, and normalization is idempotent, so re-saving a freshly loaded
// journal is a no-op apart from the updated_at stamps.
type Interface interface {
	// Load reads the whole journal. A missing file is an empty journal,
	// not an error.
	Load() ([]models.LegRecord, error)

	// Save normalizes and writes the whole journal, snapshotting the
	// previous file into the backup directory first.
	Save(records []models.LegRecord) error
}

// NewStorage creates the default storage implementation (currently CSV-based).
// In the future this can be extended to support different backends.
func NewStorage(path, backupDir string, backupRetention int) Interface {
	return NewCSVStorage(path, backupDir, backupRetention)
}

// Ensure CSVStorage implements Interface
var _ Interface = (*CSVStorage)(nil)
