package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snaik/crypto-tracker/internal/model"
)

// Pipeliner is the subset of redis pipelining Publish needs.
type Pipeliner interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exec(ctx context.Context) ([]redis.Cmder, error)
}

// Redis mirrors the latest batch into per-symbol keys so other
// processes can read current prices without touching the spreadsheet.
// Keys expire after the TTL, which should exceed the poll interval.
type Redis struct {
	pipeline func() Pipeliner
	ttl      time.Duration
	logger   *slog.Logger
}

// cycleMeta is stored under latest:cycle alongside the asset keys.
type cycleMeta struct {
	CycleID   string    `json:"cycle_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Assets    int       `json:"assets"`
}

// NewRedis creates the Redis sink.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		pipeline: func() Pipeliner { return client.Pipeline() },
		ttl:      ttl,
		logger:   logger,
	}
}

func (r *Redis) Name() string { return "redis" }

// Publish pipelines one SET per asset plus the cycle metadata key.
func (r *Redis) Publish(ctx context.Context, batch model.Batch) error {
	pipe := r.pipeline()

	for _, a := range batch.Assets {
		payload, err := json.Marshal(a)
		if err != nil {
			return &PublishError{Sink: r.Name(), Err: fmt.Errorf("marshal %s: %w", a.Symbol, err)}
		}
		pipe.Set(ctx, assetKey(a.Symbol), payload, r.ttl)
	}

	meta, err := json.Marshal(cycleMeta{
		CycleID:   batch.CycleID.String(),
		FetchedAt: batch.FetchedAt,
		Assets:    len(batch.Assets),
	})
	if err != nil {
		return &PublishError{Sink: r.Name(), Err: fmt.Errorf("marshal cycle meta: %w", err)}
	}
	pipe.Set(ctx, "latest:cycle", meta, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return &PublishError{Sink: r.Name(), Err: fmt.Errorf("pipeline exec: %w", err)}
	}

	r.logger.Debug("redis snapshot replaced",
		"keys", len(batch.Assets)+1,
		"cycle_id", batch.CycleID,
	)
	return nil
}

func assetKey(symbol string) string {
	return "latest:asset:" + symbol
}
