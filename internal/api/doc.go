// Package api provides the CoinGecko REST API client.
//
// Endpoints used:
//   - GET /coins/markets (vs_currency, order=market_cap_desc, per_page, page)
//   - GET /ping
//
// The public API needs no authentication. Server errors get a bounded
// fixed-delay retry; HTTP 429 is surfaced immediately so the caller
// can skip the cycle.
package api
