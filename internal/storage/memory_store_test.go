package storage

import (
	"context"
	"fmt"
	"sync"
)

// memoryStore implements a mock version of Store for testing
type memoryStore struct {
	mu           sync.Mutex
	blobs        map[string][]byte
	contentTypes map[string]string
	err          error
	closed       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		blobs:        make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func key(container, path string) string { return container + "/" + path }

func (m *memoryStore) Exists(_ context.Context, container, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.blobs[key(container, path)]
	return ok, nil
}

func (m *memoryStore) Get(_ context.Context, container, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.blobs[key(container, path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return data, nil
}

func (m *memoryStore) Put(_ context.Context, container, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.blobs[key(container, path)] = append([]byte(nil), data...)
	m.contentTypes[key(container, path)] = contentType
	return nil
}

func (m *memoryStore) Delete(_ context.Context, container, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.blobs[key(container, path)]; !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	delete(m.blobs, key(container, path))
	delete(m.contentTypes, key(container, path))
	return nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *memoryStore) opener() Opener {
	return func(context.Context, string) (Store, error) { return m, nil }
}
