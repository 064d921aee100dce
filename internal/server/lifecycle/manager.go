// Package lifecycle implements the create/update/delete lifecycle shared by
// every managed entity: validated writes against the collection store,
// list-cache invalidation after each successful write, and best-effort
// cleanup of uploaded assets that a write orphans.
package lifecycle

import (
	"context"
	"time"

	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/querycache"
	"github.com/dmitrijs2005/siteadmin/internal/server/records"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
)

// BlobRemover deletes stored assets.
type BlobRemover interface {
	Remove(ctx context.Context, bucket storage.Bucket, paths []string) error
}

// Options configures a Manager.
type Options struct {
	// Bucket and Folder locate the entity's assets. Ignored for entities
	// without an asset field.
	Bucket storage.Bucket
	Folder string

	Blobs  BlobRemover
	Cache  *querycache.Cache
	Logger logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager runs the record lifecycle of one entity type.
type Manager[T any] struct {
	schema *records.Schema[T]
	repo   records.Repository[T]
	blobs  BlobRemover
	cache  *querycache.Cache
	bucket storage.Bucket
	folder string
	logger logging.Logger
	now    func() time.Time
}

func NewManager[T any](schema *records.Schema[T], repo records.Repository[T], opts Options) *Manager[T] {
	m := &Manager[T]{
		schema: schema,
		repo:   repo,
		blobs:  opts.Blobs,
		cache:  opts.Cache,
		bucket: opts.Bucket,
		folder: opts.Folder,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if m.cache == nil {
		m.cache = querycache.New(0)
	}
	if m.logger == nil {
		m.logger = logging.Nop()
	}
	m.logger = m.logger.With("module", "lifecycle", "entity", schema.Entity)
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Entity returns the entity name.
func (m *Manager[T]) Entity() string {
	return m.schema.Entity
}

// Bucket returns the bucket holding the entity's assets.
func (m *Manager[T]) Bucket() storage.Bucket {
	return m.bucket
}

// Folder returns the folder the entity's assets are uploaded under.
func (m *Manager[T]) Folder() string {
	return m.folder
}

// ListKey is the cache key of the entity's collection.
func (m *Manager[T]) ListKey() string {
	return m.schema.Entity + ":list"
}

// List returns the whole collection in schema order, served from the cache
// when fresh. The returned slice is shared and must not be modified.
func (m *Manager[T]) List(ctx context.Context) ([]*T, error) {
	key := m.ListKey()
	if !m.cache.Cached(key) {
		m.logger.Debug(ctx, "list cache miss", "key", key)
	}
	return querycache.Fetch(ctx, m.cache, key, m.repo.List)
}

// Get returns one record straight from the store.
func (m *Manager[T]) Get(ctx context.Context, id string) (*T, error) {
	return m.repo.Get(ctx, id)
}

// Create validates fields and inserts a new record.
func (m *Manager[T]) Create(ctx context.Context, fields records.Fields) (*T, error) {
	values, err := m.schema.Normalize(fields)
	if err != nil {
		return nil, err
	}

	rec, err := m.repo.Insert(ctx, values)
	if err != nil {
		m.logger.Error(ctx, "create failed", "error", err)
		return nil, err
	}

	m.invalidate()
	return rec, nil
}

// Update applies a partial change to record id. When the change replaces or
// clears the asset reference, the previous blob is removed first; a failed
// removal is logged and the update goes ahead.
func (m *Manager[T]) Update(ctx context.Context, id string, fields records.Fields) (*T, error) {
	patch, err := m.schema.NormalizePatch(fields)
	if err != nil {
		return nil, err
	}

	if m.schema.HasAsset() && patch.Has(m.schema.AssetField) {
		current, err := m.repo.AssetRef(ctx, id)
		if err != nil {
			return nil, err
		}
		incoming, _ := patch[m.schema.AssetField].(string)
		if current != nil && *current != incoming {
			m.removeAsset(ctx, id, *current)
		}
	}

	rec, err := m.repo.Update(ctx, id, patch, m.now().UTC())
	if err != nil {
		m.logger.Error(ctx, "update failed", "id", id, "error", err)
		return nil, err
	}

	m.invalidate()
	return rec, nil
}

// Delete removes record id. The asset blob is removed first, best-effort;
// the row is deleted whatever the outcome.
func (m *Manager[T]) Delete(ctx context.Context, id string) error {
	if m.schema.HasAsset() {
		ref, err := m.repo.AssetRef(ctx, id)
		if err != nil {
			return err
		}
		if ref != nil {
			m.removeAsset(ctx, id, *ref)
		}
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		m.logger.Error(ctx, "delete failed", "id", id, "error", err)
		return err
	}

	m.invalidate()
	return nil
}

func (m *Manager[T]) removeAsset(ctx context.Context, id, assetURL string) {
	path := DeriveAssetPath(assetURL, m.folder)
	if path == "" || m.blobs == nil {
		return
	}
	if err := m.blobs.Remove(ctx, m.bucket, []string{path}); err != nil {
		m.logger.Warn(ctx, "asset cleanup failed", "id", id, "bucket", m.bucket, "path", path, "error", err)
		return
	}
	m.logger.Debug(ctx, "asset removed", "id", id, "bucket", m.bucket, "path", path)
}

func (m *Manager[T]) invalidate() {
	m.cache.Invalidate(m.ListKey())
}
