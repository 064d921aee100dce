package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/querycache"
	"github.com/dmitrijs2005/siteadmin/internal/server/catalog"
	"github.com/dmitrijs2005/siteadmin/internal/server/models"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/dmitrijs2005/siteadmin/internal/server/uploads"
)

// Entity names an API collection.
type Entity string

const (
	Blog         Entity = "blog"
	Team         Entity = "team"
	Testimonials Entity = "testimonials"
	Partners     Entity = "partners"
	Trainings    Entity = "trainings"
	Contacts     Entity = "contacts"
)

var Entities = []Entity{Blog, Team, Testimonials, Partners, Trainings, Contacts}

// ParseEntity returns the Entity named s.
func ParseEntity(s string) (Entity, error) {
	for _, e := range Entities {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: unknown collection %q", common.ErrorValidation, s)
}

// Record is an untyped collection item.
type Record = map[string]any

// Collection is a typed handle on one entity endpoint.
type Collection[T any] struct {
	c      *Client
	entity Entity
}

func NewCollection[T any](c *Client, entity Entity) *Collection[T] {
	return &Collection[T]{c: c, entity: entity}
}

func (c *Client) BlogPosts() *Collection[models.BlogPost] {
	return NewCollection[models.BlogPost](c, Blog)
}

func (c *Client) TeamMembers() *Collection[models.TeamMember] {
	return NewCollection[models.TeamMember](c, Team)
}

func (c *Client) Testimonials() *Collection[models.Testimonial] {
	return NewCollection[models.Testimonial](c, Testimonials)
}

func (c *Client) Partners() *Collection[models.Partner] {
	return NewCollection[models.Partner](c, Partners)
}

func (c *Client) Trainings() *Collection[models.Training] {
	return NewCollection[models.Training](c, Trainings)
}

func (c *Client) Contacts() *Collection[models.Contact] {
	return NewCollection[models.Contact](c, Contacts)
}

// Records returns an untyped handle on entity.
func (c *Client) Records(entity Entity) *Collection[Record] {
	return NewCollection[Record](c, entity)
}

// ListKey is the cache key of the collection.
func (r *Collection[T]) ListKey() string {
	return string(r.entity) + ":list"
}

func (r *Collection[T]) path() string {
	return "/api/" + string(r.entity)
}

// List returns the ordered collection, served from the cache when fresh.
// The raw response is cached so typed and untyped handles share the entry.
func (r *Collection[T]) List(ctx context.Context) ([]*T, error) {
	raw, err := querycache.Fetch(ctx, r.c.cache, r.ListKey(), func(ctx context.Context) ([]byte, error) {
		return r.c.send(ctx, http.MethodGet, r.path(), nil, "", true)
	})
	if err != nil {
		return nil, err
	}

	var items []*T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", r.entity, err)
	}
	return items, nil
}

func (r *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodGet, r.path()+"/"+url.PathEscape(id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Collection[T]) Create(ctx context.Context, fields Record) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPost, r.path(), fields, &out, true); err != nil {
		return nil, err
	}
	r.c.cache.Invalidate(r.ListKey())
	return &out, nil
}

// Update sends a partial patch; only the given fields change.
func (r *Collection[T]) Update(ctx context.Context, id string, fields Record) (*T, error) {
	var out T
	if err := r.c.doJSON(ctx, http.MethodPatch, r.path()+"/"+url.PathEscape(id), fields, &out, true); err != nil {
		return nil, err
	}
	r.c.cache.Invalidate(r.ListKey())
	return &out, nil
}

func (r *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := r.c.do(ctx, http.MethodDelete, r.path()+"/"+url.PathEscape(id), nil, "", nil, true); err != nil {
		return err
	}
	r.c.cache.Invalidate(r.ListKey())
	return nil
}

func (c *Client) Statistics(ctx context.Context) (*models.Statistics, error) {
	var out models.Statistics
	if err := c.doJSON(ctx, http.MethodGet, "/api/statistics", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStatistics(ctx context.Context, fields Record) (*models.Statistics, error) {
	var out models.Statistics
	if err := c.doJSON(ctx, http.MethodPatch, "/api/statistics", fields, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dashboard(ctx context.Context) (*catalog.Dashboard, error) {
	var out catalog.Dashboard
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends an image to bucket under folder and returns its public URL.
// Type, size and folder are checked locally first, so invalid files never reach the
// network. Client satisfies uploads.Uploader.
func (c *Client) Upload(ctx context.Context, bucket storage.Bucket, folder string, f uploads.File) (string, error) {
	if err := uploads.Validate(f); err != nil {
		return "", err
	}
	folder, err := uploads.ResolveFolder(bucket, folder)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, io.LimitReader(f.Body, uploads.MaxFileSize+1)); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	path := "/api/uploads/" + url.PathEscape(string(bucket)) + "?folder=" + url.QueryEscape(folder)

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), &out, true); err != nil {
		return "", err
	}
	return out.URL, nil
}
