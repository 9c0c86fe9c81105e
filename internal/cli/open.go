package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcalderon/strikelog/internal/ledger"
)

func newOpenCmd(rc *rootConfig) *cobra.Command {
	var (
		ticker   string
		strat    string
		setupTag string
		tags     string
		legSpecs []string
		premium  float64
		capital  float64
		lots     int
		expiry   string
		notes    string
		beLower  float64
		beUpper  float64
		pop      float64
	)

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Record a new position (one or more legs opened together)",
		Example: `  strikelog open --ticker SPY --strategy "CSP (Cash Secured Put)" \
    --leg sell:put:450:-0.30 --premium 1.50 --capital 45000 --expiry 2026-04-17
  strikelog open --ticker XYZ --strategy "Iron Condor" \
    --leg sell:put:95:-0.20 --leg buy:put:90 --leg sell:call:105:0.15 --leg buy:call:110 \
    --premium 2.00 --capital 500 --expiry 2026-04-17`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rc)
			if err != nil {
				return err
			}

			if ticker == "" {
				ticker = a.cfg.Trading.DefaultTicker
			}
			legs, err := parseLegs(legSpecs)
			if err != nil {
				return err
			}
			exp, err := parseExpiry(expiry)
			if err != nil {
				return err
			}

			chainID, err := a.ledger.Open(ledger.OpenParams{
				Ticker:          ticker,
				StrategyName:    strat,
				SetupTag:        setupTag,
				Tags:            tags,
				Legs:            legs,
				NetPremium:      premium,
				ReservedCapital: capital,
				Contracts:       lots,
				Expiry:          exp,
				BreakEvenLower:  beLower,
				BreakEvenUpper:  beUpper,
				POP:             pop,
				Notes:           notes,
			})
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context()); err != nil {
				return err
			}

			primary, _ := a.ledger.PrimaryLeg(chainID)
			fmt.Printf("Opened %s %s, chain %s\n", ticker, strat, chainID)
			fmt.Printf("  break-even %s  pop %.1f%%  max profit $%.2f\n",
				formatBreakEvens(primary.BreakEvenLower, primary.BreakEvenUpper), primary.POP, primary.MaxProfitUSD)
			return nil
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "", "Underlying symbol")
	cmd.Flags().StringVar(&strat, "strategy", "", "Strategy name from the catalog")
	cmd.Flags().StringVar(&setupTag, "setup", "", "Setup tag, e.g. earnings, theta")
	cmd.Flags().StringVar(&tags, "tags", "", "Free-form comma separated tags")
	cmd.Flags().StringArrayVar(&legSpecs, "leg", nil, "Leg as side:type:strike[:delta], repeatable")
	cmd.Flags().Float64Var(&premium, "premium", 0, "Net premium per share (credit positive)")
	cmd.Flags().Float64Var(&capital, "capital", 0, "Reserved capital / buying power in dollars")
	cmd.Flags().IntVar(&lots, "contracts", 1, "Number of contracts")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Expiration date YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().Float64Var(&beLower, "be-lower", 0, "Manual lower break-even override")
	cmd.Flags().Float64Var(&beUpper, "be-upper", 0, "Manual upper break-even override")
	cmd.Flags().Float64Var(&pop, "pop", 0, "Manual probability-of-profit override, percent")

	return cmd
}

func formatBreakEvens(lower, upper float64) string {
	if lower == 0 && upper == 0 {
		return "n/a"
	}
	if upper == 0 {
		return fmt.Sprintf("%.2f", lower)
	}
	return fmt.Sprintf("%.2f / %.2f", lower, upper)
}
