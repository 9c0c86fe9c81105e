package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jcalderon/strikelog/internal/models"
)

const (
	dayLayout    = "2006-01-02"
	backupPrefix = "journal_"
	backupSuffix = ".csv.bak"
)

// schema is the versioned-defaults table: the CSV column order, and the
// value every row is assumed to hold when an older file predates the
// column. It is consulted once at load time, so adding a column is a
// one-line migration.
var schema = []struct {
	name string
	def  string
}{
	{"id", ""},
	{"chain_id", ""},
	{"parent_id", ""},
	{"ticker", ""},
	{"opened_at", ""},
	{"expiry", ""},
	{"strategy_name", ""},
	{"setup_tag", ""},
	{"tags", ""},
	{"side", string(models.SideSell)},
	{"option_type", string(models.OptionPut)},
	{"strike", "0"},
	{"delta", "0"},
	{"entry_premium", "0"},
	{"exit_cost", "0"},
	{"contracts", "1"},
	{"reserved_capital", "0"},
	{"break_even_lower", "0"},
	{"break_even_upper", "0"},
	{"pop", "0"},
	{"max_profit_usd", "0"},
	{"status", string(models.StatusOpen)},
	{"notes", ""},
	{"updated_at", ""},
	{"closed_at", ""},
	{"stock_price_at_close", "0"},
	{"realized_pnl", "0"},
	{"realized_pct_of_premium", "0"},
	{"realized_pct_of_capital", "0"},
}

// isoDateRe matches an ISO calendar date embedded in free text. Used to
// recover a missing closed_at from a note like "cerrada 2024-03-15 manual".
var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// CSVStorage persists the journal as a single CSV file, one row per leg.
// Every save snapshots the previous file into the backup directory and
// prunes old snapshots beyond the retention count.
type CSVStorage struct {
	mu        sync.RWMutex
	path      string
	backupDir string
	retention int
}

// NewCSVStorage creates a CSV-backed journal store. A retention of zero or
// less keeps every backup snapshot.
func NewCSVStorage(path, backupDir string, retention int) *CSVStorage {
	return &CSVStorage{path: path, backupDir: backupDir, retention: retention}
}

// Load reads and normalizes the whole journal. A missing file yields an
// empty journal.
func (s *CSVStorage) Load() ([]models.LegRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading journal header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var records []models.LegRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading journal line %d: %w", line, err)
		}

		cell := func(name, def string) string {
			i, ok := colIdx[name]
			if !ok || i >= len(row) {
				return def
			}
			return strings.TrimSpace(row[i])
		}

		rec := models.LegRecord{}
		for _, col := range schema {
			v := cell(col.name, col.def)
			switch col.name {
			case "id":
				rec.ID = v
			case "chain_id":
				rec.ChainID = v
			case "parent_id":
				rec.ParentID = v
			case "ticker":
				rec.Ticker = v
			case "opened_at":
				rec.OpenedAt = parseTime(v)
			case "expiry":
				rec.Expiry = parseTime(v)
			case "strategy_name":
				rec.StrategyName = v
			case "setup_tag":
				rec.SetupTag = v
			case "tags":
				rec.Tags = v
			case "side":
				rec.Side = models.Side(v)
			case "option_type":
				rec.OptionType = models.OptionType(v)
			case "strike":
				rec.Strike = parseFloat(v)
			case "delta":
				rec.Delta = parseFloat(v)
			case "entry_premium":
				rec.EntryPremium = parseFloat(v)
			case "exit_cost":
				rec.ExitCost = parseFloat(v)
			case "contracts":
				rec.Contracts = parseContracts(v)
			case "reserved_capital":
				rec.ReservedCapital = parseFloat(v)
			case "break_even_lower":
				rec.BreakEvenLower = parseFloat(v)
			case "break_even_upper":
				rec.BreakEvenUpper = parseFloat(v)
			case "pop":
				rec.POP = parseFloat(v)
			case "max_profit_usd":
				rec.MaxProfitUSD = parseFloat(v)
			case "status":
				rec.Status = models.Status(v)
			case "notes":
				rec.Notes = v
			case "updated_at":
				rec.UpdatedAt = parseTime(v)
			case "closed_at":
				rec.ClosedAt = parseTime(v)
			case "stock_price_at_close":
				rec.StockPriceAtClose = parseFloat(v)
			case "realized_pnl":
				rec.RealizedPnL = parseFloat(v)
			case "realized_pct_of_premium":
				rec.RealizedPctOfPremium = parseFloat(v)
			case "realized_pct_of_capital":
				rec.RealizedPctOfCapital = parseFloat(v)
			}
		}
		records = append(records, Normalize(rec))
	}

	return records, nil
}

// Save normalizes the records, snapshots the previous journal file into the
// backup directory, and writes the new journal atomically (temp file plus
// rename).
func (s *CSVStorage) Save(records []models.LegRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rows := make([]models.LegRecord, len(records))
	for i, rec := range records {
		rows[i] = Normalize(rec)
		rows[i].UpdatedAt = now
	}

	if err := s.snapshot(now); err != nil {
		return fmt.Errorf("backing up journal: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp journal: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(headerRow()); err != nil {
		f.Close()
		return fmt.Errorf("writing journal header: %w", err)
	}
	for i := range rows {
		if err := w.Write(marshalRow(&rows[i])); err != nil {
			f.Close()
			return fmt.Errorf("writing journal row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp journal: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing journal: %w", err)
	}
	return nil
}

// snapshot copies the current journal file, if any, into the backup
// directory and prunes snapshots beyond the retention count.
func (s *CSVStorage) snapshot(now time.Time) error {
	if s.backupDir == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return err
	}
	name := backupPrefix + now.Format("20060102_150405") + backupSuffix
	if err := os.WriteFile(filepath.Join(s.backupDir, name), data, 0o644); err != nil {
		return err
	}
	return s.pruneBackups()
}

func (s *CSVStorage) pruneBackups() error {
	if s.retention <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), backupSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.retention {
		return nil
	}
	// Timestamped names sort chronologically.
	sort.Strings(names)
	for _, name := range names[:len(names)-s.retention] {
		if err := os.Remove(filepath.Join(s.backupDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Normalize applies the journal's field defaults to one record: blank
// enums fall back to Sell/Put/Open, contracts floor at 1, missing dates
// coerce to today, and a missing closed_at on a terminal leg is recovered
// from an ISO date inside the notes when one exists. Normalize is
// idempotent: applying it twice yields the same record as applying it once.
func Normalize(rec models.LegRecord) models.LegRecord {
	if !rec.Side.Valid() {
		rec.Side = models.SideSell
	}
	if !rec.OptionType.Valid() {
		rec.OptionType = models.OptionPut
	}
	if !rec.Status.Valid() {
		rec.Status = models.StatusOpen
	}
	if rec.Contracts < 1 {
		rec.Contracts = 1
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if rec.OpenedAt.IsZero() {
		rec.OpenedAt = today
	}
	if rec.Expiry.IsZero() {
		rec.Expiry = today
	}

	if rec.Status.Terminal() && rec.ClosedAt.IsZero() {
		if m := isoDateRe.FindString(rec.Notes); m != "" {
			if t, err := time.Parse(dayLayout, m); err == nil {
				rec.ClosedAt = t.UTC()
			}
		}
	}

	return rec
}

func headerRow() []string {
	header := make([]string, len(schema))
	for i, col := range schema {
		header[i] = col.name
	}
	return header
}

func marshalRow(rec *models.LegRecord) []string {
	return []string{
		rec.ID,
		rec.ChainID,
		rec.ParentID,
		rec.Ticker,
		formatDay(rec.OpenedAt),
		formatDay(rec.Expiry),
		rec.StrategyName,
		rec.SetupTag,
		rec.Tags,
		string(rec.Side),
		string(rec.OptionType),
		formatFloat(rec.Strike),
		formatFloat(rec.Delta),
		formatFloat(rec.EntryPremium),
		formatFloat(rec.ExitCost),
		strconv.Itoa(rec.Contracts),
		formatFloat(rec.ReservedCapital),
		formatFloat(rec.BreakEvenLower),
		formatFloat(rec.BreakEvenUpper),
		formatFloat(rec.POP),
		formatFloat(rec.MaxProfitUSD),
		string(rec.Status),
		rec.Notes,
		formatStamp(rec.UpdatedAt),
		formatStamp(rec.ClosedAt),
		formatFloat(rec.StockPriceAtClose),
		formatFloat(rec.RealizedPnL),
		formatFloat(rec.RealizedPctOfPremium),
		formatFloat(rec.RealizedPctOfCapital),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dayLayout)
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseFloat(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseContracts(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parseTime accepts the layouts this journal has written over time plus
// the common spreadsheet export formats.
func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		dayLayout,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
