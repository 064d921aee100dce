package uploads

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(st storage.Storage) *Service {
	s := NewService(st, nil)
	s.newName = func() string { return "0b7c7f8e-1111-4c8e-9a55-3f2b1d7e6a10" }
	return s
}

func image(contentType string, size int) File {
	return File{Name: "photo", ContentType: contentType, Size: int64(size), Body: bytes.NewReader(make([]byte, size))}
}

func TestUpload_Success(t *testing.T) {
	st := storage.NewMemoryStorage("https://cdn.example.com")
	s := newTestService(st)

	url, err := s.Upload(context.Background(), storage.BucketBlogImages, "blog", image("image/png", 1024))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/blog_images/blog/0b7c7f8e-1111-4c8e-9a55-3f2b1d7e6a10.png", url)
	assert.True(t, st.Exists(storage.BucketBlogImages, "blog/0b7c7f8e-1111-4c8e-9a55-3f2b1d7e6a10.png"))
}

func TestUpload_ExtensionFromType(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               ".jpg",
		"image/gif":                ".gif",
		"image/webp":               ".webp",
		"IMAGE/PNG; charset=bogus": ".png",
	}
	for ct, ext := range tests {
		t.Run(ct, func(t *testing.T) {
			s := newTestService(storage.NewMemoryStorage("https://h"))
			f := image(ct, 10)
			f.Name = "holiday.bmp"
			url, err := s.Upload(context.Background(), storage.BucketTeamImages, "team", f)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(url, ext), url)
		})
	}
}

func TestUpload_RejectsWithoutStorageCall(t *testing.T) {
	tests := []struct {
		name string
		file File
		want error
	}{
		{"bmp", image("image/bmp", 100), common.ErrInvalidFileType},
		{"svg", image("image/svg+xml", 100), common.ErrInvalidFileType},
		{"empty type", image("", 100), common.ErrInvalidFileType},
		{"six mebibytes", image("image/jpeg", 6<<20), common.ErrFileTooLarge},
		{"one byte over", image("image/png", MaxFileSize+1), common.ErrFileTooLarge},
		{"type checked first", image("image/bmp", 6<<20), common.ErrInvalidFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storage.NewMemoryStorage("https://h")
			s := newTestService(st)

			_, err := s.Upload(context.Background(), storage.BucketBlogImages, "blog", tt.file)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, st.Uploads())
		})
	}
}

func TestUpload_AcceptsExactLimit(t *testing.T) {
	st := storage.NewMemoryStorage("https://h")
	_, err := newTestService(st).Upload(context.Background(), storage.BucketPartnerLogos, "partners", image("image/webp", MaxFileSize))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Uploads())
}

func TestUpload_StorageErrorPropagates(t *testing.T) {
	st := storage.NewMemoryStorage("https://h")
	st.UploadErr = errors.New("bucket not found")

	_, err := newTestService(st).Upload(context.Background(), storage.BucketTrainingImages, "trainings", image("image/gif", 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, st.UploadErr)
}

func TestUpload_NoOverwrite(t *testing.T) {
	st := storage.NewMemoryStorage("https://h")
	s := newTestService(st)
	ctx := context.Background()

	_, err := s.Upload(ctx, storage.BucketBlogImages, "blog", image("image/png", 10))
	require.NoError(t, err)
	_, err = s.Upload(ctx, storage.BucketBlogImages, "blog", image("image/png", 10))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpload_FolderTrimmed(t *testing.T) {
	st := storage.NewMemoryStorage("https://h")
	s := newTestService(st)

	url, err := s.Upload(context.Background(), storage.BucketBlogImages, "/blog/", image("image/png", 1))
	require.NoError(t, err)
	assert.Equal(t, "https://h/blog_images/blog/0b7c7f8e-1111-4c8e-9a55-3f2b1d7e6a10.png", url)

	url, err = newTestService(storage.NewMemoryStorage("https://h")).Upload(context.Background(), storage.BucketBlogImages, "", image("image/png", 1))
	require.NoError(t, err)
	assert.Equal(t, "https://h/blog_images/blog/0b7c7f8e-1111-4c8e-9a55-3f2b1d7e6a10.png", url)
}

func TestUpload_ForeignFolderRejected(t *testing.T) {
	st := storage.NewMemoryStorage("https://h")

	_, err := newTestService(st).Upload(context.Background(), storage.BucketBlogImages, "team", image("image/png", 1))
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Zero(t, st.Uploads())
}

func TestResolveFolder(t *testing.T) {
	for _, b := range storage.Buckets {
		got, err := ResolveFolder(b, "")
		require.NoError(t, err)
		assert.Equal(t, storage.Folder(b), got)
		assert.NotEmpty(t, got)
	}

	_, err := ResolveFolder("avatars", "")
	assert.ErrorIs(t, err, common.ErrUnknownBucket)
}
