package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/snaik/crypto-tracker/internal/model"
)

// maxPerPage is the provider's page size cap for /coins/markets.
const maxPerPage = 250

// GetCoinsPage fetches one page of /coins/markets ordered by market
// capitalization descending.
func (c *Client) GetCoinsPage(ctx context.Context, page, perPage int) ([]APICoin, error) {
	query := url.Values{}
	query.Set("vs_currency", c.vsCurrency)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", "false")

	var coins []APICoin
	if err := c.get(ctx, "/coins/markets", query, &coins); err != nil {
		return nil, err
	}

	return coins, nil
}

// TopAssets fetches the top n assets by market capitalization and
// returns them ranked 1..n. The result either has exactly n assets or
// the call fails with a *FetchError.
func (c *Client) TopAssets(ctx context.Context, n int) ([]model.AssetSnapshot, error) {
	if n < 1 {
		return nil, &FetchError{Op: "/coins/markets", Err: fmt.Errorf("invalid asset count %d", n)}
	}

	perPage := n
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	assets := make([]model.AssetSnapshot, 0, n)
	for page := 1; len(assets) < n; page++ {
		coins, err := c.GetCoinsPage(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		if len(coins) == 0 {
			break
		}

		for i := range coins {
			assets = append(assets, coins[i].ToSnapshot())
			if len(assets) == n {
				break
			}
		}

		// A short page means the provider has no more assets.
		if len(coins) < perPage {
			break
		}
	}

	if len(assets) != n {
		return nil, &FetchError{
			Op:  "/coins/markets",
			Err: fmt.Errorf("provider returned %d assets, want %d", len(assets), n),
		}
	}

	RankByMarketCap(assets)
	return assets, nil
}

// Ping checks provider reachability via GET /ping.
func (c *Client) Ping(ctx context.Context) error {
	var resp PingResponse
	if err := c.get(ctx, "/ping", nil, &resp); err != nil {
		return err
	}
	return nil
}
