// Package cli wires the journal engine into a cobra command tree.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcalderon/strikelog/internal/config"
	"github.com/jcalderon/strikelog/internal/ledger"
	"github.com/jcalderon/strikelog/internal/models"
	"github.com/jcalderon/strikelog/internal/retry"
	"github.com/jcalderon/strikelog/internal/storage"
)

// app is the shared state every subcommand works against: the parsed
// config, the journal loaded into a ledger, and the retrying saver that
// persists it back.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	saver  *retry.Saver
	ledger *ledger.Ledger
}

type rootConfig struct {
	ConfigPath string
}

func NewRootCmd() *cobra.Command {
	rc := &rootConfig{}

	cmd := &cobra.Command{
		Use:           "strikelog",
		Short:         "Strikelog — a personal options trading journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")

	cmd.AddCommand(
		newOpenCmd(rc),
		newRollCmd(rc),
		newCloseCmd(rc),
		newAssignCmd(rc),
		newListCmd(rc),
		newHistoryCmd(rc),
		newStatsCmd(rc),
		newServeCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("strikelog (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadApp reads the config and the journal. Every subcommand starts here so
// a corrupt journal fails fast, before any flags take effect.
func loadApp(rc *rootConfig) (*app, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "[strikelog] ", log.LstdFlags)
	store := storage.NewStorage(cfg.Journal.Path, cfg.Journal.BackupDir, cfg.Journal.BackupRetention)
	saver := retry.NewSaver(store, logger)

	records, err := saver.Load()
	if err != nil {
		return nil, fmt.Errorf("loading journal: %w", err)
	}
	l, err := ledger.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("journal is inconsistent: %w", err)
	}

	return &app{cfg: cfg, logger: logger, saver: saver, ledger: l}, nil
}

// save persists the ledger. The in-memory state is already mutated by the
// time this runs; a failed save reports the error and leaves the file as it
// was, so the command can simply be re-run.
func (a *app) save(ctx context.Context) error {
	return a.saver.Save(ctx, a.ledger.Records())
}

// parseLeg decodes the side:type:strike[:delta] flag format, e.g.
// "sell:put:450" or "buy:call:460:0.12".
func parseLeg(spec string) (ledger.LegInput, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return ledger.LegInput{}, fmt.Errorf("leg %q: want side:type:strike[:delta]", spec)
	}

	var leg ledger.LegInput
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "sell", "s":
		leg.Side = models.SideSell
	case "buy", "b":
		leg.Side = models.SideBuy
	default:
		return ledger.LegInput{}, fmt.Errorf("leg %q: unknown side %q", spec, parts[0])
	}

	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "put", "p":
		leg.OptionType = models.OptionPut
	case "call", "c":
		leg.OptionType = models.OptionCall
	default:
		return ledger.LegInput{}, fmt.Errorf("leg %q: unknown option type %q", spec, parts[1])
	}

	if _, err := fmt.Sscanf(strings.TrimSpace(parts[2]), "%f", &leg.Strike); err != nil {
		return ledger.LegInput{}, fmt.Errorf("leg %q: bad strike: %w", spec, err)
	}
	if len(parts) == 4 {
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[3]), "%f", &leg.Delta); err != nil {
			return ledger.LegInput{}, fmt.Errorf("leg %q: bad delta: %w", spec, err)
		}
	}

	return leg, nil
}

func parseLegs(specs []string) ([]ledger.LegInput, error) {
	legs := make([]ledger.LegInput, 0, len(specs))
	for _, spec := range specs {
		leg, err := parseLeg(spec)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

func parseExpiry(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("--expiry is required")
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad expiry %q: want YYYY-MM-DD", v)
	}
	return t.UTC(), nil
}
