package uploads

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/server/lifecycle"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
)

// ErrSuperseded is returned to a selection that was replaced by a newer one
// or by Clear before its upload finished.
var ErrSuperseded = errors.New("upload superseded by a newer selection")

// State of an upload field.
type State int

const (
	Idle State = iota
	Uploading
)

func (s State) String() string {
	if s == Uploading {
		return "uploading"
	}
	return "idle"
}

// Field is the state of a single-image form input. The latest selection
// always wins: completions of earlier selections are discarded and their
// blobs removed best-effort.
type Field struct {
	mu       sync.Mutex
	uploader Uploader
	blobs    lifecycle.BlobRemover
	bucket   storage.Bucket
	folder   string
	logger   logging.Logger

	state   State
	value   string
	preview string
	gen     uint64
}

// NewField returns an idle field holding value.
func NewField(uploader Uploader, blobs lifecycle.BlobRemover, bucket storage.Bucket, folder, value string, logger logging.Logger) *Field {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Field{
		uploader: uploader,
		blobs:    blobs,
		bucket:   bucket,
		folder:   folder,
		logger:   logger.With("module", "upload_field", "bucket", bucket),
		value:    value,
		preview:  value,
	}
}

// Select uploads f and, unless superseded, commits its URL as the field
// value. On failure the preview reverts to the committed value.
func (fl *Field) Select(ctx context.Context, f File) (string, error) {
	fl.mu.Lock()
	fl.gen++
	gen := fl.gen
	fl.state = Uploading
	fl.preview = f.Name
	fl.mu.Unlock()

	url, err := fl.uploader.Upload(ctx, fl.bucket, fl.folder, f)

	fl.mu.Lock()
	if gen != fl.gen {
		fl.mu.Unlock()
		if err == nil {
			fl.discard(ctx, url)
		}
		return "", ErrSuperseded
	}
	defer fl.mu.Unlock()

	fl.state = Idle
	if err != nil {
		fl.preview = fl.value
		return "", err
	}
	fl.value = url
	fl.preview = url
	return url, nil
}

// Clear empties the field and abandons any upload in flight.
func (fl *Field) Clear() {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.gen++
	fl.state = Idle
	fl.value = ""
	fl.preview = ""
}

// Value returns the committed asset URL.
func (fl *Field) Value() string {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.value
}

// Preview returns what the field currently shows: the committed URL, or the
// name of the pending selection while uploading.
func (fl *Field) Preview() string {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.preview
}

func (fl *Field) State() State {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.state
}

func (fl *Field) discard(ctx context.Context, url string) {
	path := lifecycle.DeriveAssetPath(url, fl.folder)
	if path == "" || fl.blobs == nil {
		return
	}
	if err := fl.blobs.Remove(ctx, fl.bucket, []string{path}); err != nil {
		fl.logger.Warn(ctx, "discarded upload cleanup failed", "path", path, "error", err)
	}
}
