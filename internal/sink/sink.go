package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/snaik/crypto-tracker/internal/model"
)

// Sink receives one batch per cycle and overwrites its previous
// snapshot. Implementations must tolerate being called again after a
// failure; the loop never stops on a publish error.
type Sink interface {
	Publish(ctx context.Context, batch model.Batch) error
	Name() string
}

// PublishError represents a failed publish to one sink.
type PublishError struct {
	Sink string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s: %v", e.Sink, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Multi fans one batch out to every configured sink. A failing sink is
// logged and skipped; the rest still receive the batch.
type Multi struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewMulti creates a fan-out sink.
func NewMulti(logger *slog.Logger, sinks ...Sink) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{sinks: sinks, logger: logger}
}

func (m *Multi) Name() string { return "multi" }

// Sinks returns the names of the configured sinks.
func (m *Multi) Sinks() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish delivers the batch to every sink and returns the joined
// errors, if any.
func (m *Multi) Publish(ctx context.Context, batch model.Batch) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, batch); err != nil {
			m.logger.Error("sink publish failed",
				"sink", s.Name(),
				"cycle_id", batch.CycleID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
