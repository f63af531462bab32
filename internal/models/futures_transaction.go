package models

// Trade directions for a futures leg.
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// FuturesTransaction is one futures position as returned by the trading host.
// The wire format uses snake_case field names, unlike the options endpoint.
type FuturesTransaction struct {
	ID          string  `json:"id"`
	Symbol      string  `json:"symbol"`
	TradeType   string  `json:"trade_type"`
	Status      string  `json:"status"`
	Qty         float64 `json:"qty"`
	BuyingPrice float64 `json:"buying_price"`
	CurrentLtp  float64 `json:"current_ltp"`
	Target      float64 `json:"target"`
	StopLoss    float64 `json:"stop_loss"`
	CreatedAt   string  `json:"created_at"`
}

// PnL is the signed profit for this leg. A BUY leg profits when the LTP rises
// above entry, a SELL leg when it falls below.
func (t *FuturesTransaction) PnL() float64 {
	if t.TradeType == TradeTypeSell {
		return (t.BuyingPrice - t.CurrentLtp) * t.Qty
	}
	return (t.CurrentLtp - t.BuyingPrice) * t.Qty
}

// PnLPercent is the profit relative to the entry cost. Returns 0 when the
// entry cost is zero so the display layer never sees NaN or Inf.
func (t *FuturesTransaction) PnLPercent() float64 {
	cost := t.BuyingPrice * t.Qty
	if cost == 0 {
		return 0
	}
	return t.PnL() / cost * 100
}

// IsOpen reports whether the position is still live.
func (t *FuturesTransaction) IsOpen() bool {
	return t.Status == StatusOpen
}
