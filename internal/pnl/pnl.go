// Package pnl holds the pure profit-and-loss reductions the dashboard
// displays. Everything here is stateless and recomputed from the full list
// on every fetch; there is no caching or incremental update.
package pnl

import "trading-dashboard-go/internal/models"

// OptionsTotal sums the signed P&L over a list of options transactions.
func OptionsTotal(transactions []models.OptionsTransaction) float64 {
	var total float64
	for i := range transactions {
		total += transactions[i].PnL()
	}
	return total
}

// FuturesTotal sums the direction-aware signed P&L over a list of futures
// transactions.
func FuturesTotal(transactions []models.FuturesTransaction) float64 {
	var total float64
	for i := range transactions {
		total += transactions[i].PnL()
	}
	return total
}

// OptionsPercent is the per-row percentage move against the entry price.
// Returns 0 when the buying price is zero so the display never sees NaN.
func OptionsPercent(t *models.OptionsTransaction) float64 {
	if t.BuyingPrice == 0 {
		return 0
	}
	return (t.CurrentPrice - t.BuyingPrice) / t.BuyingPrice * 100
}

// OpenOptions filters a transaction list down to live positions.
func OpenOptions(transactions []models.OptionsTransaction) []models.OptionsTransaction {
	open := make([]models.OptionsTransaction, 0, len(transactions))
	for _, t := range transactions {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	return open
}

// OpenFutures filters a futures transaction list down to live positions.
func OpenFutures(transactions []models.FuturesTransaction) []models.FuturesTransaction {
	open := make([]models.FuturesTransaction, 0, len(transactions))
	for _, t := range transactions {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	return open
}
