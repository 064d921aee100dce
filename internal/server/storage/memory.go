package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/siteadmin/internal/common"
)

// MemoryStorage keeps blobs in memory. It backs tests and local runs
// without an S3 endpoint.
type MemoryStorage struct {
	mu      sync.Mutex
	objects map[Bucket]map[string][]byte
	removed []string

	// RemoveErr, when set, is returned by every Remove call after the
	// request has been recorded.
	RemoveErr error
	// UploadErr, when set, is returned by every Upload call.
	UploadErr error

	baseURL string
	uploads int
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[Bucket]map[string][]byte),
		baseURL: baseURL,
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, bucket Bucket, obj Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++

	if m.UploadErr != nil {
		return m.UploadErr
	}
	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string][]byte)
	}
	if _, exists := m.objects[bucket][obj.Path]; exists {
		return fmt.Errorf("%w: %s/%s", common.ErrorAlreadyExists, bucket, obj.Path)
	}

	var data []byte
	if obj.Body != nil {
		b, err := io.ReadAll(obj.Body)
		if err != nil {
			return fmt.Errorf("%w: read body: %w", common.ErrStorage, err)
		}
		data = b
	}
	m.objects[bucket][obj.Path] = data
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, bucket Bucket, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range paths {
		m.removed = append(m.removed, string(bucket)+"/"+p)
	}
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for _, p := range paths {
		delete(m.objects[bucket], p)
	}
	return nil
}

func (m *MemoryStorage) PublicURL(bucket Bucket, path string) string {
	return m.baseURL + "/" + string(bucket) + "/" + path
}

// Exists reports whether path is stored in bucket.
func (m *MemoryStorage) Exists(bucket Bucket, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket][path]
	return ok
}

// Removed returns every "bucket/path" a Remove call was issued for,
// including failed ones.
func (m *MemoryStorage) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// Uploads returns the number of Upload calls received.
func (m *MemoryStorage) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}
