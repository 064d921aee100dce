package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/server/services"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionFrom returns the session attached by the auth middleware.
func SessionFrom(ctx context.Context) (*services.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*services.Session)
	return s, ok
}

type authResponse struct {
	*services.TokenPair
	User *services.Session `json:"user"`
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}

		session, err := s.deps.Users.Session(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, r, fmt.Errorf("%w: email and password are required", common.ErrorValidation))
		return
	}

	pair, err := s.deps.Users.Login(r.Context(), req.Email, []byte(req.Password))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAuth(w, r, pair)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	pair, err := s.deps.Users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAuth(w, r, pair)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if req.RefreshToken != "" {
		session, _ := SessionFrom(r.Context())
		if err := s.deps.Users.Logout(r.Context(), session.UserID, req.RefreshToken); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) writeAuth(w http.ResponseWriter, r *http.Request, pair *services.TokenPair) {
	session, err := s.deps.Users.Session(r.Context(), pair.AccessToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{TokenPair: pair, User: session})
}

// decodeJSON reads a JSON body. Malformed input is a validation error.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", common.ErrorValidation, err)
	}
	return nil
}
