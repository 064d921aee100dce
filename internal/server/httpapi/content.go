package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/server/records"
	"github.com/dmitrijs2005/siteadmin/internal/server/storage"
	"github.com/dmitrijs2005/siteadmin/internal/server/uploads"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file itself for form framing.
const multipartOverhead = 1 << 20

func (s *Server) getStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Catalog.Statistics.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) updateStatistics(w http.ResponseWriter, r *http.Request) {
	var fields records.Fields
	if err := decodeJSON(r, &fields); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.deps.Catalog.Statistics.Update(r.Context(), fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Catalog.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	bucket, err := storage.ParseBucket(chi.URLParam(r, "bucket"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	const limit = uploads.MaxFileSize + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, header, err := r.FormFile("file")
	if err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge || r.ContentLength > limit {
			s.writeError(w, r, common.ErrFileTooLarge)
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: multipart field \"file\" is required", common.ErrorValidation))
		return
	}
	defer file.Close()

	url, err := s.deps.Uploads.Upload(r.Context(), bucket, r.URL.Query().Get("folder"), uploads.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
