// Package testutil holds test doubles shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mediadrop/uploader/internal/storage"
)

// MockStore implements storage.AssetStore in memory.
type MockStore struct {
	mu      sync.Mutex
	next    int
	objects map[string][]byte
	deleted []string

	// SaveErr, when set, is returned by Save after the body has been read.
	SaveErr error
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string][]byte)}
}

func (m *MockStore) Save(_ context.Context, obj storage.Object) (*storage.Asset, error) {
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := fmt.Sprintf("asset-%d-%s", m.next, obj.Filename)
	m.objects[id] = data
	return &storage.Asset{
		ID:       id,
		URL:      "https://assets.test/" + id,
		Size:     int64(len(data)),
		Location: "mem://" + id,
	}, nil
}

func (m *MockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// Objects returns a copy of what is currently stored, keyed by asset ID.
func (m *MockStore) Objects() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		out[k] = v
	}
	return out
}

// Deleted returns the IDs passed to Delete, in order.
func (m *MockStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
