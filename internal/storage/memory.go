package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// MemoryStorage keeps uploaded bytes in process memory. It backs STORE=memory and tests.
type MemoryStorage struct {
	baseURL string

	mu      sync.Mutex
	objects map[string][]byte
	// FailUploads makes every upload fail after the local file is consumed.
	FailUploads bool
}

// NewMemoryStorage returns an empty MemoryStorage serving URLs under baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "memory://assets"
	}
	return &MemoryStorage{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string][]byte)}
}

// Upload reads and removes the local file.
func (m *MemoryStorage) Upload(_ context.Context, localPath string) (models.Asset, error) {
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return models.Asset{}, fmt.Errorf("memory storage read %s: %w", localPath, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploads {
		return models.Asset{}, fmt.Errorf("memory storage: upload rejected")
	}

	key := "media/" + uuid.NewString() + strings.ToLower(filepath.Ext(localPath))
	m.objects[key] = data
	return models.Asset{URL: m.baseURL + "/" + key, ID: key}, nil
}

// Delete drops the object. Unknown ids are ignored.
func (m *MemoryStorage) Delete(_ context.Context, assetID string) error {
	if assetID == "" {
		return ErrEmptyAssetID
	}
	m.mu.Lock()
	delete(m.objects, assetID)
	m.mu.Unlock()
	return nil
}

// Has reports whether an object is stored. Useful for tests.
func (m *MemoryStorage) Has(assetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[assetID]
	return ok
}

// Len reports how many objects are stored.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
