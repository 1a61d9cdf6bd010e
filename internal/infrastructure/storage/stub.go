package storage

import (
	"context"
	"errors"
	"sync"

	appexport "github.com/malnatis/order-export/internal/application/export"
)

// StubDocumentStorage is an in-process placeholder implementation of
// DocumentStore. It records uploads instead of persisting them.
// Use this for development until real storage credentials are configured.
type StubDocumentStorage struct {
	mu        sync.Mutex
	documents map[string][]byte
}

// NewStubDocumentStorage creates a new StubDocumentStorage
func NewStubDocumentStorage() *StubDocumentStorage {
	return &StubDocumentStorage{
		documents: make(map[string][]byte),
	}
}

// Ensure StubDocumentStorage implements DocumentStore
var _ appexport.DocumentStore = (*StubDocumentStorage)(nil)

// UploadDocument records the document in memory
func (s *StubDocumentStorage) UploadDocument(ctx context.Context, key string, content []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[key] = append([]byte(nil), content...)
	return nil
}

// Document returns a recorded document (for testing/monitoring)
func (s *StubDocumentStorage) Document(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.documents[key]
	return content, ok
}

// Size returns the number of recorded documents
func (s *StubDocumentStorage) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents)
}
