package tradeapi

import "math/rand"

// QuoteSource supplies a price and day-change for an instrument. The stocks
// listing endpoint does not return prices, so the client fills them from
// here. The placeholder implementation below is a stand-in for a real quote
// feed; swapping in one must not touch any caller.
type QuoteSource interface {
	Quote(symbol string) (price, change float64)
}

// placeholderQuotes generates pseudo-random quotes, temporary until a real
// price feed is integrated.
type placeholderQuotes struct {
	rng *rand.Rand
}

// NewPlaceholderQuotes returns a seedable placeholder QuoteSource.
func NewPlaceholderQuotes(seed int64) QuoteSource {
	return &placeholderQuotes{rng: rand.New(rand.NewSource(seed))}
}

func (p *placeholderQuotes) Quote(symbol string) (float64, float64) {
	price := float64(p.rng.Intn(5000-100+1) + 100)
	change := (p.rng.Float64() - 0.5) * 200 // between -100 and +100
	return price, change
}
