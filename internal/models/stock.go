package models

// Stock is a tradable instrument from the equity listing. The backend only
// supplies name and token; price and change are filled client-side from a
// quote source (currently a placeholder pending a real price feed).
type Stock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Token  string  `json:"token"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}
