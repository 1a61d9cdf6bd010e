package cache

import (
	"context"
	"sync"
	"time"

	"github.com/malnatis/order-export/internal/domain/shared"
)

// entry represents a stored commit time with expiration
type entry struct {
	processedAt time.Time
	expiresAt   time.Time
}

// InMemoryProcessedStore implements ProcessedOrderStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryProcessedStore struct {
	mu        sync.RWMutex
	entries   map[int]entry
	retention time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryProcessedStore creates a new in-memory processed-order store.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryProcessedStore(retention time.Duration) *InMemoryProcessedStore {
	if retention <= 0 {
		retention = shared.DefaultProcessedOrderConfig().Retention
	}
	store := &InMemoryProcessedStore{
		entries:   make(map[int]entry),
		retention: retention,
		stopChan:  make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// LastProcessedAt returns the commit time of the order's last export, if any.
func (s *InMemoryProcessedStore) LastProcessedAt(ctx context.Context, orderID int) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[orderID]
	if !exists || time.Now().After(e.expiresAt) {
		return time.Time{}, false, nil
	}
	return e.processedAt, true, nil
}

// MarkProcessed records the export commit time. A later commit for the same
// order overwrites the earlier one.
func (s *InMemoryProcessedStore) MarkProcessed(ctx context.Context, orderID int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[orderID] = entry{
		processedAt: at,
		expiresAt:   time.Now().Add(s.retention),
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryProcessedStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryProcessedStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryProcessedStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for orderID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, orderID)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryProcessedStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryProcessedStore implements ProcessedOrderStore
var _ shared.ProcessedOrderStore = (*InMemoryProcessedStore)(nil)
