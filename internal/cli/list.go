package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcalderon/strikelog/internal/models"
)

func newListCmd(rc *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN\tTICKER\tSTRATEGY\tLEGS\tQTY\tPREMIUM\tBREAK-EVEN\tPOP\tDTE")

			open := 0
			for _, chainID := range a.ledger.ChainIDs() {
				legs := a.ledger.Chain(chainID)
				if len(legs) == 0 || legs[0].Status != models.StatusOpen {
					continue
				}
				open++
				primary := legs[0]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%s\t%.1f%%\t%d\n",
					chainID, primary.Ticker, primary.StrategyName, legSummary(legs),
					primary.Contracts, primary.EntryPremium,
					formatBreakEvens(primary.BreakEvenLower, primary.BreakEvenUpper),
					primary.POP, primary.DTE())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if open == 0 {
				fmt.Println("No open positions.")
			}
			return nil
		},
	}

	return cmd
}

// legSummary compresses a group to the compact "-450P/+440P" notation.
func legSummary(legs []models.LegRecord) string {
	out := ""
	for i, leg := range legs {
		if i > 0 {
			out += "/"
		}
		sign := "-"
		if leg.Side == models.SideBuy {
			sign = "+"
		}
		out += fmt.Sprintf("%s%g%s", sign, leg.Strike, string(leg.OptionType[0]))
	}
	return out
}
