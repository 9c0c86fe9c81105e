package strategy

import (
	"github.com/jcalderon/strikelog/internal/catalog"
	"github.com/jcalderon/strikelog/internal/models"
)

// Result bundles the realized outcome of a closed leg group.
type Result struct {
	PnLUSD       float64
	PctOfPremium float64
	PctOfCapital float64
}

// PnL computes the realized outcome of closing a leg group. Entry premium
// and exit cost are per-share prices; the 100-share contract multiplier is
// applied exactly once, here. Direction is resolved via the catalog: credit
// strategies profit when the exit cost is below the entry premium, debit
// strategies when it is above. Zero denominators yield zero ratios.
func PnL(entryPremium, exitCost float64, contracts int, name string,
	reservedCapital float64, fallbackSide models.Side) Result {
	var r Result

	diff := entryPremium - exitCost
	if catalog.Direction(name, fallbackSide) == models.SideBuy {
		diff = exitCost - entryPremium
	}

	r.PnLUSD = diff * float64(contracts) * models.SharesPerContract
	if entryPremium > 0 {
		r.PctOfPremium = diff / entryPremium * 100
	}
	if reservedCapital > 0 {
		r.PctOfCapital = r.PnLUSD / reservedCapital * 100
	}
	return r
}

// MaxProfit returns the best-case dollar outcome of a credit group: keeping
// the whole net premium.
func MaxProfit(netPremium float64, contracts int) float64 {
	return netPremium * float64(contracts) * models.SharesPerContract
}
