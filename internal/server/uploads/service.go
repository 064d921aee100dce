// Package uploads validates and stores image assets and models the
// single-image form field that drives them.
package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/google/uuid"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize = 5 << 20

// extensions maps accepted MIME types to the stored file extension.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// File is an image selected for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, bucket storage.Bucket, folder string, f File) (string, error)
}

// Service uploads validated images to object storage.
type Service struct {
	storage storage.Storage
	logger  logging.Logger
	newName func() string
}

func NewService(st storage.Storage, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		storage: st,
		logger:  logger.With("module", "uploads"),
		newName: uuid.NewString,
	}
}

// Validate checks the declared type and size of f without touching storage.
func Validate(f File) error {
	if _, ok := extensions[normalizeType(f.ContentType)]; !ok {
		return common.ErrInvalidFileType
	}
	if f.Size > MaxFileSize {
		return common.ErrFileTooLarge
	}
	return nil
}

// ResolveFolder returns the folder an upload to bucket is stored under.
// An empty folder selects the bucket's own folder; any other folder must
// match it, since record cleanup derives blob paths from that folder.
func ResolveFolder(bucket storage.Bucket, folder string) (string, error) {
	want := storage.Folder(bucket)
	if want == "" {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownBucket, bucket)
	}
	folder = strings.Trim(folder, "/")
	if folder != "" && folder != want {
		return "", fmt.Errorf("%w: folder %q does not belong to bucket %s, use %q", common.ErrorValidation, folder, bucket, want)
	}
	return want, nil
}

// Upload stores f in the folder of bucket with a fresh random name and
// returns the public URL. folder may be empty or must name that folder. An existing object is never overwritten.
func (s *Service) Upload(ctx context.Context, bucket storage.Bucket, folder string, f File) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}

	folder, err := ResolveFolder(bucket, folder)
	if err != nil {
		return "", err
	}

	ext := extensions[normalizeType(f.ContentType)]
	path := folder + "/" + s.newName() + "." + ext

	obj := storage.Object{
		Path:        path,
		ContentType: normalizeType(f.ContentType),
		Size:        f.Size,
		Body:        io.LimitReader(f.Body, f.Size),
	}
	if err := s.storage.Upload(ctx, bucket, obj); err != nil {
		s.logger.Error(ctx, "upload failed", "bucket", bucket, "path", path, "error", err)
		return "", fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}

	s.logger.Info(ctx, "image uploaded", "bucket", bucket, "path", path, "size", f.Size)
	return s.storage.PublicURL(bucket, path), nil
}

func normalizeType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
