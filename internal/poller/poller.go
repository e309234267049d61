package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snaik/crypto-tracker/internal/model"
)

// Fetcher provides the ranked top-N assets for a cycle.
type Fetcher interface {
	TopAssets(ctx context.Context, n int) ([]model.AssetSnapshot, error)
}

// Sink receives the published batch.
type Sink interface {
	Publish(ctx context.Context, batch model.Batch) error
	Name() string
}

// Config holds tracker configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 5m)
	TopN     int           // Assets per batch (default: 50)
	Timeout  time.Duration // Per-cycle timeout (default: 1m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Minute,
		TopN:     50,
		Timeout:  time.Minute,
	}
}

// Stats counts cycle outcomes.
type Stats struct {
	Cycles        int64     // Completed cycles, successful or not
	FetchErrors   int64     // Cycles skipped on fetch failure
	PublishErrors int64     // Cycles whose publish failed
	LastSuccess   time.Time // End of the last fully successful cycle
}

// Tracker runs the fetch/publish loop. Exactly one cycle is in flight
// at a time: the loop fetches, publishes, then waits for the next tick.
type Tracker struct {
	cfg     Config
	fetcher Fetcher
	sink    Sink
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	stats Stats
}

// New creates a new Tracker.
func New(cfg Config, fetcher Fetcher, sink Sink, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	return &Tracker{
		cfg:     cfg,
		fetcher: fetcher,
		sink:    sink,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (t *Tracker) Start(ctx context.Context) error {
	t.ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go t.run()

	t.logger.Info("tracker started",
		"interval", t.cfg.Interval,
		"top_n", t.cfg.TopN,
		"sink", t.sink.Name(),
	)

	return nil
}

// Stop gracefully shuts down the tracker.
func (t *Tracker) Stop(ctx context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("tracker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a copy of the current counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// run is the main polling loop.
func (t *Tracker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	// First cycle immediately on start.
	t.runCycle()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.runCycle()
		}
	}
}

// runCycle performs one fetch/publish pair. A fetch failure skips the
// cycle entirely; the sink never sees partial data. Neither failure
// kind stops the loop.
func (t *Tracker) runCycle() {
	cycleID := uuid.New()
	start := time.Now()

	ctx, cancel := context.WithTimeout(t.ctx, t.cfg.Timeout)
	defer cancel()

	t.mu.Lock()
	t.stats.Cycles++
	t.mu.Unlock()

	assets, err := t.fetcher.TopAssets(ctx, t.cfg.TopN)
	if err != nil {
		t.logger.Warn("fetch failed, skipping cycle",
			"cycle_id", cycleID,
			"error", err,
		)
		t.countFetchError()
		return
	}

	batch := model.Batch{
		CycleID:   cycleID,
		FetchedAt: time.Now().UTC(),
		Assets:    assets,
	}

	if err := batch.Validate(t.cfg.TopN); err != nil {
		t.logger.Warn("invalid batch, skipping cycle",
			"cycle_id", cycleID,
			"error", err,
		)
		t.countFetchError()
		return
	}

	if err := t.sink.Publish(ctx, batch); err != nil {
		t.logger.Error("publish failed",
			"cycle_id", cycleID,
			"sink", t.sink.Name(),
			"error", err,
		)
		t.mu.Lock()
		t.stats.PublishErrors++
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	t.stats.LastSuccess = time.Now()
	t.mu.Unlock()

	t.logger.Info("cycle complete",
		"cycle_id", cycleID,
		"assets", len(batch.Assets),
		"duration", time.Since(start),
	)
}

func (t *Tracker) countFetchError() {
	t.mu.Lock()
	t.stats.FetchErrors++
	t.mu.Unlock()
}
