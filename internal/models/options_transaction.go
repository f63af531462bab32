package models

// Transaction statuses as reported by the trading backend.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// ScriptDetails carries the display metadata the backend attaches to an
// options instrument.
type ScriptDetails struct {
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	LotSize int    `json:"lotSize"`
}

// OptionsTransaction is one options position as returned by the trading host.
// Records are read-only snapshots; the client never mutates them, it only
// refetches the full collection.
type OptionsTransaction struct {
	ID              string        `json:"id"`
	Script          string        `json:"script"`
	ScriptDetails   ScriptDetails `json:"scriptDetails"`
	Status          string        `json:"status"`
	Qty             float64       `json:"qty"`
	SellQty         float64       `json:"sellQty"`
	BuyingPrice     float64       `json:"buyingPrice"`
	CurrentPrice    float64       `json:"currentPrice"`
	RealizedPrice   *float64      `json:"realizedPrice"`
	SellingPrice    *float64      `json:"sellingPrice"`
	RealizedPercent *float64      `json:"realizedPercent"`
	Target          float64       `json:"target"`
	StopLoss        float64       `json:"stopLoss"`
	CreatedAt       string        `json:"createdAt"`
}

// PnL is the signed profit for this position. For CLOSED rows the last-known
// current price is treated as final, so the same formula applies.
func (t *OptionsTransaction) PnL() float64 {
	return (t.CurrentPrice - t.BuyingPrice) * t.Qty
}

// IsOpen reports whether the position is still live.
func (t *OptionsTransaction) IsOpen() bool {
	return t.Status == StatusOpen
}
