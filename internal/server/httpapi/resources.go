package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/siteadmin/internal/server/records"
	"github.com/go-chi/chi/v5"
)

// Collection is the lifecycle surface of one entity type.
// lifecycle.Manager satisfies it.
type Collection[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, fields records.Fields) (*T, error)
	Update(ctx context.Context, id string, fields records.Fields) (*T, error)
	Delete(ctx context.Context, id string) error
}

// mountResource registers list/get/delete for c under pattern, plus
// create/update when writable.
func mountResource[T any](r chi.Router, s *Server, pattern string, c Collection[T], writable bool) {
	h := &resourceHandler[T]{s: s, c: c}

	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
		if writable {
			r.Post("/", h.create)
			r.Patch("/{id}", h.update)
		}
	})
}

type resourceHandler[T any] struct {
	s *Server
	c Collection[T]
}

func (h *resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.c.List(r.Context())
	if err != nil {
		h.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *resourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.c.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	var fields records.Fields
	if err := decodeJSON(r, &fields); err != nil {
		h.s.writeError(w, r, err)
		return
	}
	item, err := h.c.Create(r.Context(), fields)
	if err != nil {
		h.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *resourceHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	var fields records.Fields
	if err := decodeJSON(r, &fields); err != nil {
		h.s.writeError(w, r, err)
		return
	}
	item, err := h.c.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *resourceHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.c.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
