package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/jcalderon/strikelog/internal/models"
)

// Statistics aggregates realized performance across the whole journal.
// Only no-longer-open legs contribute to realized figures; because premium
// and P&L live on one financial carrier per group, summing over all legs
// never double-counts.
type Statistics struct {
	TotalPnL      float64 `json:"total_pnl"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	// WinRate is a percentage; ProfitFactor is gross wins over gross losses.
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AveragePnL   float64 `json:"average_pnl"`

	BuyingPowerInUse float64 `json:"buying_power_in_use"`
	TotalStrategies  int     `json:"total_strategies"`
	OpenStrategies   int     `json:"open_strategies"`

	PnLByTicker   map[string]float64 `json:"pnl_by_ticker"`
	PnLByStrategy map[string]float64 `json:"pnl_by_strategy"`
	// MonthlyPnL is keyed by YYYY-MM.
	MonthlyPnL map[string]float64 `json:"monthly_pnl"`

	Equity []EquityPoint `json:"equity"`
}

// EquityPoint is one step of the cumulative realized P&L curve.
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// Statistics computes journal-wide performance figures.
func (l *Ledger) Statistics() Statistics {
	stats := Statistics{
		PnLByTicker:   make(map[string]float64),
		PnLByStrategy: make(map[string]float64),
		MonthlyPnL:    make(map[string]float64),
	}

	var grossWon, grossLost float64
	type realized struct {
		date time.Time
		pnl  float64
	}
	var curve []realized

	openChains := make(map[string]bool)
	allChains := make(map[string]bool)

	for _, rec := range l.records {
		allChains[rec.ChainID] = true
		if rec.Status == models.StatusOpen {
			openChains[rec.ChainID] = true
			stats.BuyingPowerInUse += rec.ReservedCapital
			continue
		}

		pnl := rec.RealizedPnL
		stats.TotalPnL += pnl
		stats.PnLByTicker[rec.Ticker] += pnl
		stats.PnLByStrategy[rec.StrategyName] += pnl
		if !rec.ClosedAt.IsZero() {
			stats.MonthlyPnL[rec.ClosedAt.Format("2006-01")] += pnl
		}

		switch {
		case pnl > 0:
			stats.WinningTrades++
			grossWon += pnl
			curve = append(curve, realized{rec.ClosedAt, pnl})
		case pnl < 0:
			stats.LosingTrades++
			grossLost += math.Abs(pnl)
			curve = append(curve, realized{rec.ClosedAt, pnl})
		}
	}

	stats.TotalStrategies = len(allChains)
	stats.OpenStrategies = len(openChains)

	decided := stats.WinningTrades + stats.LosingTrades
	if decided > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(decided) * 100
		stats.AveragePnL = (grossWon - grossLost) / float64(decided)
	}
	switch {
	case grossLost > 0:
		stats.ProfitFactor = grossWon / grossLost
	case grossWon > 0:
		stats.ProfitFactor = grossWon
	}

	sort.SliceStable(curve, func(i, j int) bool { return curve[i].date.Before(curve[j].date) })
	cum := 0.0
	for _, step := range curve {
		cum += step.pnl
		stats.Equity = append(stats.Equity, EquityPoint{Date: step.date, Equity: cum})
	}

	return stats
}
