package repository

import (
	"context"

	"TickBoard/internal/domain/models"
)

// SnapshotStream is the push channel to the feed. Implementations own the
// connection lifecycle: dial, read, and the unbounded reconnect loop.
type SnapshotStream interface {
	Start(ctx context.Context) error
	Snapshots() <-chan *models.Snapshot
	States() <-chan models.ConnectionState
	Close() error
	IsConnected() bool
}

// SnapshotSource is the request/response pull path returning the complete
// current snapshot on demand.
type SnapshotSource interface {
	Fetch(ctx context.Context) (*models.Snapshot, error)
}

// Notifier delivers one-shot alert events to an operator-facing sink.
type Notifier interface {
	Notify(ctx context.Context, ev models.AlertEvent) error
	Close() error
}

// Metrics abstracts the metrics backend so use cases stay testable.
type Metrics interface {
	RecordSnapshotApplied(source string, stocks int)
	RecordSnapshotDropped(kind string)
	RecordAlert(breakout string)
	RecordReconnect()
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
}
