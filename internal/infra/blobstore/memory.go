package blobstore

import (
	"context"
	"sync"

	"github.com/yanqian/jeevamithra/internal/domain/chat"
)

// MemoryStorage keeps uploads in process. URLs use the memory:// scheme and
// are not fetchable over HTTP.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

type blob struct {
	data        []byte
	contentType string
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string]blob)}
}

// Put stores a copy of data under key.
func (s *MemoryStorage) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = blob{data: append([]byte(nil), data...), contentType: contentType}
	return "memory://" + key, nil
}

// Get returns the stored bytes and content type.
func (s *MemoryStorage) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b.data, b.contentType, ok
}

var _ chat.ImageStore = (*MemoryStorage)(nil)
