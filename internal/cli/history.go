package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcalderon/strikelog/internal/models"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newHistoryCmd(rc *rootConfig) *cobra.Command {
	var chainID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show closed positions, or one campaign's roll lineage",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			if chainID != "" {
				primary, ok := a.ledger.PrimaryLeg(chainID)
				if !ok {
					return fmt.Errorf("chain %s not found", chainID)
				}

				steps, intact := a.ledger.RollHistory(primary.ID)
				fmt.Printf("Campaign for chain %s (%s %s), oldest step last:\n",
					chainID, primary.Ticker, primary.StrategyName)
				for _, step := range steps {
					fmt.Printf("  %s  chain %s  %s  premium %.2f  exit %.2f  realized $%.2f\n",
						step.OpenedAt.Format("2006-01-02"), step.ChainID, step.Status,
						step.EntryPremium, step.ExitCost, step.RealizedPnL)
				}
				if !intact {
					fmt.Println("  (lineage truncated: a parent leg is missing from the journal)")
				}
				fmt.Printf("Campaign net credit %.2f, realized to date $%.2f\n",
					a.ledger.ChainNetCredit(primary.ID), a.ledger.ChainRealizedPnL(primary.ID))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN\tTICKER\tSTRATEGY\tSTATUS\tCLOSED\tP&L\t% PREMIUM")
			closed := 0
			for _, id := range a.ledger.ChainIDs() {
				legs := a.ledger.Chain(id)
				if len(legs) == 0 || legs[0].Status == models.StatusOpen {
					continue
				}
				closed++
				primary := legs[0]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t$%.2f\t%.1f%%\n",
					id, primary.Ticker, primary.StrategyName, primary.Status,
					primary.ClosedAt.Format("2006-01-02"),
					primary.RealizedPnL, primary.RealizedPctOfPremium)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if closed == 0 {
				fmt.Println("No closed positions yet.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "Show the full roll lineage behind this chain")

	return cmd
}

func newStatsCmd(rc *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal-wide performance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			stats := a.ledger.Statistics()
			fmt.Printf("Total P&L        $%.2f\n", stats.TotalPnL)
			fmt.Printf("Win rate         %.1f%% (%dW / %dL)\n", stats.WinRate, stats.WinningTrades, stats.LosingTrades)
			fmt.Printf("Profit factor    %.2f\n", stats.ProfitFactor)
			fmt.Printf("Average P&L      $%.2f\n", stats.AveragePnL)
			fmt.Printf("Open positions   %d of %d total\n", stats.OpenStrategies, stats.TotalStrategies)
			fmt.Printf("Buying power     $%.2f in use\n", stats.BuyingPowerInUse)

			if len(stats.PnLByTicker) > 0 {
				fmt.Println("\nBy ticker:")
				for _, ticker := range sortedKeys(stats.PnLByTicker) {
					fmt.Printf("  %-8s $%.2f\n", ticker, stats.PnLByTicker[ticker])
				}
			}
			if len(stats.MonthlyPnL) > 0 {
				fmt.Println("\nBy month:")
				for _, month := range sortedKeys(stats.MonthlyPnL) {
					fmt.Printf("  %s  $%.2f\n", month, stats.MonthlyPnL[month])
				}
			}
			return nil
		},
	}

	return cmd
}
