package testutil

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStorage is an in-memory StorageService.
type MemoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	FailOnKey string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOnKey != "" && key == s.FailOnKey {
		return errors.New("upload refused")
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.Errorf("no such key %s", key)
	}
	return data, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }
func (s *MemoryStorage) Bucket() string                { return "attachments" }
func (s *MemoryStorage) Provider() string              { return "memory" }

func (s *MemoryStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
