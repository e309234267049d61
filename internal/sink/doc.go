// Package sink implements the tabular outputs a batch is published to.
//
// Sinks:
//   - Sheet: the xlsx spreadsheet, fully rewritten each cycle (primary)
//   - Postgres: latest_assets table, truncated and reinserted per cycle
//   - Redis: latest:asset:* keys with TTL
//   - Kafka: one message per asset per cycle
//
// All sinks hold only the latest snapshot (overwrite semantics); none
// of them retains history.
package sink
