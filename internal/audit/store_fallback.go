package audit

import (
	"context"
	"log/slog"

	"touristid/pkg/platform/circuit"
)

// FallbackStore appends to a primary sink guarded by a circuit breaker and
// diverts events to a fallback sink while the primary is failing.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackStore(primary, fallback Store, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (s *FallbackStore) Append(ctx context.Context, event Event) error {
	if !s.breaker.Allow() {
		return s.fallback.Append(ctx, event)
	}

	err := s.primary.Append(ctx, event)
	if err == nil {
		if change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "audit sink recovered", "breaker", s.breaker.Name())
		}
		return nil
	}

	if change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "audit sink failing, diverting to fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	return s.fallback.Append(ctx, event)
}
