// Package analysis computes the per-cycle market summary published
// alongside the asset table.
package analysis

import (
	"math"

	"github.com/snaik/crypto-tracker/internal/model"
)

// topCount is how many leaders by market cap the summary lists.
const topCount = 5

// Summary aggregates one batch's market-wide statistics.
type Summary struct {
	TopByMarketCap   []model.AssetSnapshot `json:"top_by_market_cap"`
	TotalMarketCap   float64               `json:"total_market_cap"`
	AveragePrice     float64               `json:"average_price"`
	AverageVolume24h float64               `json:"average_volume_24h"`

	// VolatilityIndex is the sample standard deviation of the 24h
	// change percentages across the batch. Zero for fewer than two
	// assets.
	VolatilityIndex float64 `json:"volatility_index"`

	TopGainer model.AssetSnapshot `json:"top_gainer"`
	TopLoser  model.AssetSnapshot `json:"top_loser"`
}

// Summarize computes the market summary for a batch. An empty batch
// yields a zero Summary.
func Summarize(batch model.Batch) Summary {
	n := len(batch.Assets)
	if n == 0 {
		return Summary{}
	}

	var s Summary
	var priceSum, volumeSum, changeSum float64

	s.TopGainer = batch.Assets[0]
	s.TopLoser = batch.Assets[0]

	for _, a := range batch.Assets {
		s.TotalMarketCap += a.MarketCap
		priceSum += a.Price
		volumeSum += a.Volume24h
		changeSum += a.Change24hPct

		if a.Change24hPct > s.TopGainer.Change24hPct {
			s.TopGainer = a
		}
		if a.Change24hPct < s.TopLoser.Change24hPct {
			s.TopLoser = a
		}
	}

	s.AveragePrice = priceSum / float64(n)
	s.AverageVolume24h = volumeSum / float64(n)

	if n > 1 {
		mean := changeSum / float64(n)
		var sq float64
		for _, a := range batch.Assets {
			d := a.Change24hPct - mean
			sq += d * d
		}
		s.VolatilityIndex = math.Sqrt(sq / float64(n-1))
	}

	// The batch is rank-ordered, so the leaders are the head.
	top := topCount
	if top > n {
		top = n
	}
	s.TopByMarketCap = append([]model.AssetSnapshot(nil), batch.Assets[:top]...)

	return s
}
