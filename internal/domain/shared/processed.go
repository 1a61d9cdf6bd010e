package shared

import (
	"context"
	"time"
)

// ProcessedOrderStore records when an order was last exported so that
// duplicate change events inside a short trailing window can be skipped.
// The record is the only persisted state of the export pipeline.
type ProcessedOrderStore interface {
	// LastProcessedAt returns the time the order was last committed.
	// The second return value is false when no record exists.
	LastProcessedAt(ctx context.Context, orderID int) (time.Time, bool, error)

	// MarkProcessed overwrites the record with the given timestamp.
	MarkProcessed(ctx context.Context, orderID int, at time.Time) error

	// Close closes the store and releases resources
	Close() error
}

// ProcessedOrderConfig holds configuration for duplicate-event suppression
type ProcessedOrderConfig struct {
	// Window is the trailing window inside which a repeated event for the
	// same order is skipped. Default: 5 minutes.
	Window time.Duration

	// Retention is how long a processed record is kept around.
	// Default: 24 hours.
	Retention time.Duration
}

// DefaultProcessedOrderConfig returns the default suppression configuration
func DefaultProcessedOrderConfig() ProcessedOrderConfig {
	return ProcessedOrderConfig{
		Window:    5 * time.Minute,
		Retention: 24 * time.Hour,
	}
}
