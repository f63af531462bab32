package models

// ActiveTrade is an open equity position tracked by the legacy host. Its
// lifecycle is independent from the options/futures transaction records: it
// is created by the buy flow and removed by the sell flow.
type ActiveTrade struct {
	ID              int      `json:"id"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
	OrderID         string   `json:"orderId"`
	OptionID        *string  `json:"optionId"`
	Symbol          string   `json:"symbol"`
	Segment         string   `json:"segment"`
	SymbolToken     string   `json:"symbolToken"`
	StockID         *string  `json:"stockId"`
	BuyingPrice     float64  `json:"buyingPrice"`
	SellingPrice    *float64 `json:"sellingPrice"`
	Target          *float64 `json:"target"`
	StopLoss        *float64 `json:"stopLoss"`
	Type            string   `json:"type"`
	CurrentLtp      float64  `json:"currentLtp"`
	OrderType       string   `json:"orderType"`
	Status          string   `json:"status"`
	UserID          int      `json:"userId"`
	ProviderOrderID string   `json:"providerOrderId"`
	Qty             float64  `json:"qty"`
	LiveOrder       bool     `json:"liveOrder"`
	OrderVariety    string   `json:"orderVariety"`
	TradeType       string   `json:"tradeType"`
	ConfigID        *string  `json:"configId"`
}

// PnL is the signed profit for this equity leg at the current LTP.
func (t *ActiveTrade) PnL() float64 {
	return (t.CurrentLtp - t.BuyingPrice) * t.Qty
}
