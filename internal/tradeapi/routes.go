package tradeapi

import "trading-dashboard-go/internal/config"

// Endpoint paths. The equity endpoints live on the legacy host, the
// transaction endpoints on the newer trading host; the routing table below
// keeps that mapping in one place instead of scattered string concatenation.
const (
	endpointStocks       = "/api/equity/stocks"
	endpointLTP          = "/api/equity/ltp"
	endpointBuyOrder     = "/api/equity/buy"
	endpointSellOrder    = "/api/equity/sell"
	endpointActiveTrades = "/api/equity/active-trades"

	endpointUserTransactions    = "/api/trading/user-transactions"
	endpointCloseOrder          = "/api/trading/close-order"
	endpointFuturesTransactions = "/api/trading/futures-transactions"
)

// routingTable maps each endpoint to the base URL of the host that serves it.
type routingTable map[string]string

func newRoutingTable(cfg *config.Upstream) routingTable {
	return routingTable{
		endpointStocks:       cfg.EquityBaseURL,
		endpointLTP:          cfg.EquityBaseURL,
		endpointBuyOrder:     cfg.EquityBaseURL,
		endpointSellOrder:    cfg.EquityBaseURL,
		endpointActiveTrades: cfg.EquityBaseURL,

		endpointUserTransactions:    cfg.TradingBaseURL,
		endpointCloseOrder:          cfg.TradingBaseURL,
		endpointFuturesTransactions: cfg.TradingBaseURL,
	}
}

// urlFor resolves an endpoint to its full URL.
func (r routingTable) urlFor(endpoint string) string {
	return r[endpoint] + endpoint
}
