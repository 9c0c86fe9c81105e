package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcalderon/strikelog/internal/ledger"
)

func newCloseCmd(rc *rootConfig) *cobra.Command {
	var (
		chainID    string
		exitCost   float64
		stockPrice float64
		expired    bool
		qty        int
		pnl        float64
	)

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a position, fully or a partial quantity",
		Example: `  strikelog close --chain ab12cd34 --exit-cost 0.50 --stock-price 101.20
  strikelog close --chain ab12cd34 --expired
  strikelog close --chain ab12cd34 --qty 1 --exit-cost 0.50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			if qty > 0 {
				closedID, err := a.ledger.ClosePartial(ledger.PartialCloseParams{
					ChainID:    chainID,
					Quantity:   qty,
					ExitCost:   exitCost,
					StockPrice: stockPrice,
				})
				if err != nil {
					return err
				}
				if err := a.save(cmd.Context()); err != nil {
					return err
				}

				closed, _ := a.ledger.Get(closedID)
				primary, _ := a.ledger.PrimaryLeg(chainID)
				fmt.Printf("Closed %d of chain %s, %d still open\n", qty, chainID, primary.Contracts)
				fmt.Printf("  realized $%.2f on the closed quantity (leg %s)\n", closed.RealizedPnL, closedID)
				return nil
			}

			params := ledger.CloseParams{
				ChainID:    chainID,
				ExitCost:   exitCost,
				StockPrice: stockPrice,
				Expired:    expired,
			}
			if cmd.Flags().Changed("pnl") {
				params.RealizedPnL = &pnl
			}

			if err := a.ledger.Close(params); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}

			primary, _ := a.ledger.PrimaryLeg(chainID)
			fmt.Printf("Closed chain %s\n", chainID)
			fmt.Printf("  realized $%.2f (%.1f%% of premium, %.1f%% of capital)\n",
				primary.RealizedPnL, primary.RealizedPctOfPremium, primary.RealizedPctOfCapital)
			return nil
		},
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "Chain ID of the position to close")
	cmd.Flags().Float64Var(&exitCost, "exit-cost", 0, "Per-share cost paid to close (contract price, not x100)")
	cmd.Flags().Float64Var(&stockPrice, "stock-price", 0, "Underlying price at close")
	cmd.Flags().BoolVar(&expired, "expired", false, "Legs expired worthless; exit cost is forced to zero")
	cmd.Flags().IntVar(&qty, "qty", 0, "Close only this many contracts (partial close)")
	cmd.Flags().Float64Var(&pnl, "pnl", 0, "Manual realized P&L override, dollars")

	return cmd
}

func newAssignCmd(rc *rootConfig) *cobra.Command {
	var (
		chainID    string
		fees       float64
		stockPrice float64
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Record an assignment: premium is realized less fees",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("fees") {
				fees = a.cfg.Trading.AssignmentFee
			}

			if err := a.ledger.Assign(ledger.AssignParams{
				ChainID:    chainID,
				Fees:       fees,
				StockPrice: stockPrice,
			}); err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}

			primary, _ := a.ledger.PrimaryLeg(chainID)
			fmt.Printf("Assigned chain %s, realized $%.2f\n", chainID, primary.RealizedPnL)
			return nil
		},
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "Chain ID of the assigned position")
	cmd.Flags().Float64Var(&fees, "fees", 0, "Assignment fees in dollars (defaults from config)")
	cmd.Flags().Float64Var(&stockPrice, "stock-price", 0, "Underlying price at assignment")

	return cmd
}
