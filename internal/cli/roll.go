package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcalderon/strikelog/internal/ledger"
)

func newRollCmd(rc *rootConfig) *cobra.Command {
	var (
		legIDs    []string
		closeCost float64
		legSpecs  []string
		premium   float64
		expiry    string
		notes     string
		pnl       float64
	)

	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Close legs and open their replacement in one campaign step",
		Example: `  strikelog roll --leg-id ab12cd34 --close-cost 0.60 \
    --new-leg sell:put:48:-0.25 --premium 0.80 --expiry 2026-05-15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			newLegs, err := parseLegs(legSpecs)
			if err != nil {
				return err
			}
			exp, err := parseExpiry(expiry)
			if err != nil {
				return err
			}

			params := ledger.RollParams{
				LegIDs:        legIDs,
				CloseCost:     closeCost,
				NewLegs:       newLegs,
				NewNetPremium: premium,
				NewExpiry:     exp,
				Notes:         notes,
			}
			if cmd.Flags().Changed("pnl") {
				params.RealizedPnL = &pnl
			}

			newChainID, err := a.ledger.Roll(params)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}

			primary, _ := a.ledger.PrimaryLeg(newChainID)
			fmt.Printf("Rolled into chain %s\n", newChainID)
			fmt.Printf("  campaign net credit %.2f  break-even %s\n",
				a.ledger.ChainNetCredit(primary.ID),
				formatBreakEvens(primary.BreakEvenLower, primary.BreakEvenUpper))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&legIDs, "leg-id", nil, "ID of an open leg to roll, repeatable")
	cmd.Flags().Float64Var(&closeCost, "close-cost", 0, "Per-share cost paid to close the rolled legs")
	cmd.Flags().StringArrayVar(&legSpecs, "new-leg", nil, "Replacement leg as side:type:strike[:delta], repeatable")
	cmd.Flags().Float64Var(&premium, "premium", 0, "Net premium per share collected on the replacement")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Replacement expiration date YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes for the replacement group")
	cmd.Flags().Float64Var(&pnl, "pnl", 0, "Manual realized P&L override for the closed step, dollars")

	return cmd
}
