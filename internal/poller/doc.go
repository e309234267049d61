// Package poller implements the fetch/publish cycle loop.
//
// The Tracker:
//   - Fetches the top-N assets on a fixed interval (first cycle runs immediately)
//   - Publishes each validated batch to the configured sink
//   - Skips the cycle on any fetch failure; the sink never sees partial data
//   - Treats publish failures as non-fatal and keeps polling
package poller
