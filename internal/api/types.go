package api

// APICoin represents one entry from GET /coins/markets.
// Numeric fields the provider reports as null decode to zero.
type APICoin struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank"`
	TotalVolume   float64 `json:"total_volume"`

	PriceChange24h    float64 `json:"price_change_24h"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`

	High24h float64 `json:"high_24h"`
	Low24h  float64 `json:"low_24h"`

	// ISO 8601
	LastUpdated string `json:"last_updated"`
}

// PingResponse from GET /ping.
type PingResponse struct {
	GeckoSays string `json:"gecko_says"`
}
