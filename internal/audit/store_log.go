package audit

import (
	"context"
	"log/slog"
	"time"
)

// LogStore writes audit events as structured log records.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogStore{logger: logger.With("component", "audit")}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit event",
		slog.String("action", event.Action),
		slog.String("user_id", event.UserID),
		slog.String("subject", event.Subject),
		slog.String("issuance_id", event.IssuanceID),
		slog.String("request_id", event.RequestID),
		slog.String("decision", event.Decision),
		slog.String("reason", event.Reason),
		slog.String("timestamp", event.Timestamp.UTC().Format(time.RFC3339Nano)),
	)
	return nil
}
