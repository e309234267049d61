package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetSnapshot is one cryptocurrency's market state at fetch time.
type AssetSnapshot struct {
	Rank         int       `json:"rank"`           // 1..N within a batch, market cap descending
	ID           string    `json:"id"`             // Provider asset id (e.g., "bitcoin")
	Symbol       string    `json:"symbol"`         // Upper-cased ticker symbol (e.g., "BTC")
	Name         string    `json:"name"`           // Display name
	Price        float64   `json:"price"`          // Current price in the quote currency
	MarketCap    float64   `json:"market_cap"`     // Market capitalization
	Volume24h    float64   `json:"volume_24h"`     // 24-hour traded volume
	Change24hPct float64   `json:"change_24h_pct"` // 24-hour price change percentage
	LastUpdated  time.Time `json:"last_updated"`   // Provider-reported update time
}

// Batch is one polling cycle's output. Batches are built fresh every
// cycle and discarded after publishing; nothing carries over.
type Batch struct {
	CycleID   uuid.UUID       `json:"cycle_id"`
	FetchedAt time.Time       `json:"fetched_at"`
	Assets    []AssetSnapshot `json:"assets"`
}

// Validate checks the batch invariant: exactly wantN assets, ranks
// forming the contiguous sequence 1..wantN in ascending order, and
// symbols unique within the batch.
func (b Batch) Validate(wantN int) error {
	if len(b.Assets) != wantN {
		return fmt.Errorf("batch has %d assets, want %d", len(b.Assets), wantN)
	}

	seen := make(map[string]struct{}, len(b.Assets))
	for i, a := range b.Assets {
		if a.Rank != i+1 {
			return fmt.Errorf("asset %q at index %d has rank %d, want %d", a.Symbol, i, a.Rank, i+1)
		}
		if _, dup := seen[a.Symbol]; dup {
			return fmt.Errorf("duplicate symbol %q in batch", a.Symbol)
		}
		seen[a.Symbol] = struct{}{}
	}

	return nil
}
