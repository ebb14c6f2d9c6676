package activity

import (
	"context"

	"go.uber.org/zap"
)

// Store defines the interface for recording activity events.
type Store interface {
	SaveAction(ctx context.Context, event *ActionEvent) error
}

// LogStore records events by logging them.
type LogStore struct {
	logger *zap.Logger
}

// NewLogStore creates a store that writes each event to logger.
func NewLogStore(logger *zap.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) SaveAction(_ context.Context, event *ActionEvent) error {
	s.logger.Info("view action",
		zap.String("sessionId", event.SessionID),
		zap.String("action", string(event.Action)),
		zap.String("input", event.Input),
		zap.String("output", event.Output),
		zap.Bool("failed", event.Failed),
		zap.Bool("sent", event.Sent),
		zap.Bool("stale", event.Stale),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
		zap.String("referrer", event.Referrer),
		zap.Time("occurredAt", event.OccurredAt),
	)

	return nil
}
