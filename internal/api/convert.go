package api

import (
	"sort"
	"strings"
	"time"

	"github.com/snaik/crypto-tracker/internal/model"
)

// ParseTimestamp parses an ISO 8601 timestamp.
// Returns the zero time for empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t.UTC()
}

// ToSnapshot converts an APICoin to a model.AssetSnapshot.
// Rank is left unset; ranks are assigned batch-wide by RankByMarketCap.
func (c *APICoin) ToSnapshot() model.AssetSnapshot {
	return model.AssetSnapshot{
		ID:           c.ID,
		Symbol:       strings.ToUpper(c.Symbol),
		Name:         c.Name,
		Price:        c.CurrentPrice,
		MarketCap:    c.MarketCap,
		Volume24h:    c.TotalVolume,
		Change24hPct: c.PriceChangePct24h,
		LastUpdated:  ParseTimestamp(c.LastUpdated),
	}
}

// RankByMarketCap sorts assets by market capitalization descending and
// assigns ranks 1..len(assets). The provider's own market_cap_rank can
// have gaps, so ranks are always reassigned locally.
func RankByMarketCap(assets []model.AssetSnapshot) {
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].MarketCap > assets[j].MarketCap
	})
	for i := range assets {
		assets[i].Rank = i + 1
	}
}
