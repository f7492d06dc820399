package blob

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. FailUploads makes every Upload return the given error.
type Memory struct {
	mu          sync.Mutex
	baseURL     string
	objects     map[string]Object
	FailUploads error
	FailDeletes error
}

// NewMemory returns an empty in-memory store serving URLs under baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: baseURL, objects: map[string]Object{}}
}

func (m *Memory) Upload(_ context.Context, path, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploads != nil {
		return "", m.FailUploads
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[path] = Object{Path: path, ContentType: contentType, Data: buf, CreatedAt: time.Now()}
	return URL(m.baseURL, path), nil
}

func (m *Memory) Open(_ context.Context, path string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeletes != nil {
		return m.FailDeletes
	}
	if _, ok := m.objects[path]; !ok {
		return ErrNotFound
	}
	delete(m.objects, path)
	return nil
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
