package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/dmitrijs2005/siteadmin/internal/server/uploads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_CachedUntilWrite(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := signedIn(t, srv)
	ctx := context.Background()
	posts := c.BlogPosts()

	items, err := posts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = posts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.lists.Load(), "second read is served from the cache")

	created, err := posts.Create(ctx, Record{"title": "Hello", "content": "Body", "author": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "p1", created.ID)
	assert.False(t, c.cache.Cached(posts.ListKey()))

	items, err = posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hello", items[0].Title)
	assert.Equal(t, int32(2), f.lists.Load())
}

func TestList_TypedAndUntypedShareEntry(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	_, err := c.BlogPosts().Create(ctx, Record{"title": "Hello", "content": "Body", "author": "Ann"})
	require.NoError(t, err)

	typed, err := c.BlogPosts().List(ctx)
	require.NoError(t, err)
	untyped, err := c.Records(Blog).List(ctx)
	require.NoError(t, err)

	require.Len(t, typed, 1)
	require.Len(t, untyped, 1)
	assert.Equal(t, "Hello", (*untyped[0])["title"])
	assert.Equal(t, int32(1), f.lists.Load())
}

func TestCreate_ValidationErrorCarriesFields(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := signedIn(t, srv)

	_, err := c.BlogPosts().Create(context.Background(), Record{"content": "Body"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "is required", apiErr.Fields["title"])
}

func TestUpdateAndDelete_InvalidateList(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := signedIn(t, srv)
	ctx := context.Background()
	posts := c.BlogPosts()

	_, err := posts.List(ctx)
	require.NoError(t, err)
	require.True(t, c.cache.Cached(posts.ListKey()))

	p, err := posts.Update(ctx, "p1", Record{"published": true})
	require.NoError(t, err)
	assert.True(t, p.Published)
	assert.False(t, c.cache.Cached(posts.ListKey()))

	_, err = posts.List(ctx)
	require.NoError(t, err)
	require.NoError(t, posts.Delete(ctx, "p1"))
	assert.False(t, c.cache.Cached(posts.ListKey()))
}

func TestDelete_NotFoundKeepsCache(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := signedIn(t, srv)
	ctx := context.Background()
	posts := c.BlogPosts()

	_, err := posts.List(ctx)
	require.NoError(t, err)

	err = posts.Delete(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.True(t, c.cache.Cached(posts.ListKey()))
}

func TestStatisticsAndDashboard(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	st, err := c.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, st.ProgramsDelivered)
	assert.Equal(t, 98, st.SatisfactionRate)

	d, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, d.TeamCount)
	assert.Equal(t, 2, d.PartnerCount)
	assert.Nil(t, d.Statistics)
}

func TestParseEntity(t *testing.T) {
	e, err := ParseEntity("partners")
	require.NoError(t, err)
	assert.Equal(t, Partners, e)

	_, err = ParseEntity("users")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUpload(t *testing.T) {
	var gotBucket, gotFolder, gotType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeTestJSON(w, http.StatusOK, map[string]any{"access_token": "t", "refresh_token": "r"})
		case "/api/uploads/partner_logos":
			gotBucket = "partner_logos"
			gotFolder = r.URL.Query().Get("folder")
			file, header, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			defer file.Close()
			gotType = header.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(file)
			writeTestJSON(w, http.StatusCreated, map[string]string{"url": "http://cdn/partner_logos/partners/x.png"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := signedIn(t, srv)
	url, err := c.Upload(context.Background(), storage.BucketPartnerLogos, "partners", uploads.File{
		Name:        "logo.png",
		ContentType: "image/png",
		Size:        4,
		Body:        bytes.NewReader([]byte("\x89PNG")),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/partner_logos/partners/x.png", url)
	assert.Equal(t, "partner_logos", gotBucket)
	assert.Equal(t, "partners", gotFolder)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("\x89PNG"), gotBody)
}

func TestUpload_RejectedLocally(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/api/auth/login" {
			writeTestJSON(w, http.StatusOK, map[string]any{"access_token": "t", "refresh_token": "r"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := signedIn(t, srv)
	ctx := context.Background()

	_, err := c.Upload(ctx, storage.BucketBlogImages, "blog", uploads.File{
		Name: "big.png", ContentType: "image/png", Size: 6 << 20, Body: strings.NewReader(""),
	})
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	_, err = c.Upload(ctx, storage.BucketBlogImages, "blog", uploads.File{
		Name: "pic.bmp", ContentType: "image/bmp", Size: 10, Body: strings.NewReader(""),
	})
	assert.ErrorIs(t, err, common.ErrInvalidFileType)

	_, err = c.Upload(ctx, storage.BucketBlogImages, "partners", uploads.File{
		Name: "pic.png", ContentType: "image/png", Size: 10, Body: strings.NewReader(""),
	})
	assert.ErrorIs(t, err, common.ErrorValidation)

	assert.Equal(t, int32(1), calls.Load(), "only the login request reaches the server")
}

// Client is usable wherever the server-side upload field expects an uploader.
var _ uploads.Uploader = (*Client)(nil)
