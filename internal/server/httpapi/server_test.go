package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/server/catalog"
	"github.com/dmitrijs2005/siteadmin/internal/server/services"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/dmitrijs2005/siteadmin/internal/server/uploads"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

type fakeAuth struct {
	loginErr   error
	refreshErr error
	loggedOut  []string
}

func (f *fakeAuth) Login(ctx context.Context, email string, password []byte) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: goodToken, RefreshToken: "r1"}, nil
}

func (f *fakeAuth) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: goodToken, RefreshToken: "r2"}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, userID, refreshToken string) error {
	f.loggedOut = append(f.loggedOut, userID+":"+refreshToken)
	return nil
}

func (f *fakeAuth) Session(ctx context.Context, accessToken string) (*services.Session, error) {
	switch accessToken {
	case goodToken:
		return &services.Session{UserID: "u1", Email: "admin@example.com", Name: common.DefaultDisplayName, Role: common.AdminRole}, nil
	case "expired":
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type env struct {
	srv   *Server
	mock  sqlmock.Sqlmock
	blobs *storage.MemoryStorage
	auth  *fakeAuth
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	blobs := storage.NewMemoryStorage("https://cdn.example.com")
	auth := &fakeAuth{}
	srv := NewServer("127.0.0.1:0", Deps{
		Users:          auth,
		Catalog:        catalog.New(catalog.PostgresRepositories(db), catalog.Options{Blobs: blobs}),
		Uploads:        uploads.NewService(blobs, nil),
		DB:             fakePinger{},
		AllowedOrigins: []string{"*"},
	})
	return &env{srv: srv, mock: mock, blobs: blobs, auth: auth}
}

func (e *env) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+goodToken)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	e.srv.deps.DB = fakePinger{err: errors.New("down")}
	rec = e.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuth_Required(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/blog", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer expired")
	rec = httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, common.ErrTokenExpired.Error(), body.Error)
}

func TestAuth_LoginSessionRefreshLogout(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"pw"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		AccessToken  string           `json:"access_token"`
		RefreshToken string           `json:"refresh_token"`
		User         services.Session `json:"user"`
	}
	decodeBody(t, rec, &login)
	assert.Equal(t, goodToken, login.AccessToken)
	assert.Equal(t, "r1", login.RefreshToken)
	assert.Equal(t, common.DefaultDisplayName, login.User.Name)

	rec = e.do(t, http.MethodGet, "/api/auth/session", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess services.Session
	decodeBody(t, rec, &sess)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, common.AdminRole, sess.Role)

	rec = e.do(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"r1"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/logout", `{"refresh_token":"r2"}`, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"u1:r2"}, e.auth.loggedOut)
}

func TestAuth_LoginFailures(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth/login", `{"email":""}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/login", `not json`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.auth.loginErr = common.ErrorUnauthorized
	rec = e.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	e.auth.refreshErr = common.ErrRefreshTokenExpired
	rec = e.do(t, http.MethodPost, "/api/auth/refresh", `{"refresh_token":"old"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBlog_ListAndCreate(t *testing.T) {
	e := newEnv(t)
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	e.mock.ExpectQuery(`FROM blog_posts ORDER BY created_at DESC$`).
		WillReturnRows(sqlmock.NewRows(catalog.BlogPosts.Columns).AddRow("p1", "T", "C", "A", nil, true, now, now))
	e.mock.ExpectQuery(`^INSERT INTO blog_posts`).
		WillReturnRows(sqlmock.NewRows(catalog.BlogPosts.Columns).AddRow("p2", "A", "B", "C", nil, false, now, now))

	rec := e.do(t, http.MethodGet, "/api/blog", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0]["id"])
	assert.Nil(t, list[0]["image_url"])

	rec = e.do(t, http.MethodPost, "/api/blog", `{"title":"A","content":"B","author":"C"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	decodeBody(t, rec, &created)
	assert.Equal(t, "p2", created["id"])
	assert.Equal(t, false, created["published"])
	assert.Equal(t, created["created_at"], created["updated_at"])
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestBlog_ValidationError(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/blog", `{"title":"","content":"B"}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "is required", body.Fields["title"])
	assert.Equal(t, "is required", body.Fields["author"])
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestErrorStatuses(t *testing.T) {
	e := newEnv(t)

	e.mock.ExpectQuery(`FROM team_members WHERE id = \$1$`).WithArgs("missing").WillReturnError(errSQLNoRows)
	rec := e.do(t, http.MethodGet, "/api/team/missing", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	e.mock.ExpectQuery(`^INSERT INTO partners`).WillReturnError(&pgconn.PgError{Code: "23505", Detail: "duplicate"})
	rec = e.do(t, http.MethodPost, "/api/partners", `{"name":"Acme"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	e.mock.ExpectQuery(`FROM testimonials ORDER BY`).WillReturnError(errors.New("connection reset"))
	rec = e.do(t, http.MethodGet, "/api/testimonials", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, common.ErrorInternal.Error(), body.Error)

	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestMalformedID_NotFound(t *testing.T) {
	e := newEnv(t)
	badID := &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}

	e.mock.ExpectQuery(`FROM blog_posts WHERE id = \$1$`).WithArgs("not-a-uuid").WillReturnError(badID)
	rec := e.do(t, http.MethodGet, "/api/blog/not-a-uuid", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	e.mock.ExpectQuery(`^SELECT image_url FROM blog_posts WHERE id = \$1$`).WithArgs("not-a-uuid").WillReturnError(badID)
	rec = e.do(t, http.MethodDelete, "/api/blog/not-a-uuid", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	e.mock.ExpectExec(`^DELETE FROM contact_us WHERE id = \$1$`).WithArgs("not-a-uuid").WillReturnError(badID)
	rec = e.do(t, http.MethodDelete, "/api/contacts/not-a-uuid", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestContacts_ReadOnly(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/contacts", `{"name":"x"}`, true)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	e.mock.ExpectExec(`^DELETE FROM contact_us WHERE id = \$1$`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	rec = e.do(t, http.MethodDelete, "/api/contacts/c1", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func TestStatistics(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC()
	cols := catalog.StatisticsSchema.Columns

	e.mock.ExpectQuery(`FROM statistics LIMIT 1$`).WillReturnRows(sqlmock.NewRows(cols).AddRow("s1", 1, 2, 90, 4, now))
	e.mock.ExpectQuery(`^UPDATE statistics SET satisfaction_rate = \$1`).
		WithArgs(95, sqlmock.AnyArg(), "s1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s1", 1, 2, 95, 4, now))

	rec := e.do(t, http.MethodPatch, "/api/statistics", `{"satisfaction_rate":95}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var st map[string]any
	decodeBody(t, rec, &st)
	assert.EqualValues(t, 95, st["satisfaction_rate"])

	rec = e.do(t, http.MethodPatch, "/api/statistics", `{"satisfaction_rate":120}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func multipartBody(t *testing.T, contentType string, size int) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(make([]byte, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func (e *env) upload(t *testing.T, path, contentType string, size int) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, contentType, size)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+goodToken)
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUpload(t *testing.T) {
	e := newEnv(t)

	rec := e.upload(t, "/api/uploads/blog_images?folder=blog", "image/png", 2048)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]string
	decodeBody(t, rec, &out)
	assert.True(t, strings.HasPrefix(out["url"], "https://cdn.example.com/blog_images/blog/"), out["url"])
	assert.True(t, strings.HasSuffix(out["url"], ".png"))
	assert.Equal(t, 1, e.blobs.Uploads())
}

func TestUpload_Rejections(t *testing.T) {
	e := newEnv(t)

	rec := e.upload(t, "/api/uploads/blog_images?folder=blog", "image/bmp", 10)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = e.upload(t, "/api/uploads/blog_images?folder=blog", "image/jpeg", 6<<20)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = e.upload(t, "/api/uploads/avatars", "image/png", 10)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.upload(t, "/api/uploads/blog_images?folder=team", "image/png", 10)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, e.blobs.Uploads())

	e.blobs.UploadErr = common.ErrStorage
	rec = e.upload(t, "/api/uploads/team_images?folder=team", "image/png", 10)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUpload_WithoutFolderIsCleanedUpOnReplace(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC()
	const base = "https://cdn.example.com/blog_images/"

	uploadURL := func() string {
		rec := e.upload(t, "/api/uploads/blog_images", "image/png", 16)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var out map[string]string
		decodeBody(t, rec, &out)
		require.True(t, strings.HasPrefix(out["url"], base+"blog/"), out["url"])
		return out["url"]
	}
	oldURL, newURL := uploadURL(), uploadURL()
	oldPath := strings.TrimPrefix(oldURL, base)
	newPath := strings.TrimPrefix(newURL, base)
	require.True(t, e.blobs.Exists(storage.BucketBlogImages, oldPath))

	e.mock.ExpectQuery(`^SELECT image_url FROM blog_posts WHERE id = \$1$`).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow(oldURL))
	e.mock.ExpectQuery(`^UPDATE blog_posts SET image_url = \$1`).
		WillReturnRows(sqlmock.NewRows(catalog.BlogPosts.Columns).AddRow("p1", "T", "C", "A", newURL, true, now, now))

	rec := e.do(t, http.MethodPatch, "/api/blog/p1", `{"image_url":"`+newURL+`"}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.False(t, e.blobs.Exists(storage.BucketBlogImages, oldPath), "replaced blob must be removed")
	assert.True(t, e.blobs.Exists(storage.BucketBlogImages, newPath))
	require.NoError(t, e.mock.ExpectationsWereMet())
}
