package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/siteadmin/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotSignedIn = errors.New("not signed in")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s %v", e.Status, e.Message, e.Fields)
}

// Unwrap maps the status code back onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		if strings.Contains(e.Message, common.ErrUnknownBucket.Error()) {
			return common.ErrUnknownBucket
		}
		return common.ErrorValidation
	case http.StatusUnauthorized:
		switch {
		case strings.Contains(e.Message, common.ErrRefreshTokenExpired.Error()):
			return common.ErrRefreshTokenExpired
		case strings.Contains(e.Message, common.ErrTokenExpired.Error()):
			return common.ErrTokenExpired
		}
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	case http.StatusRequestEntityTooLarge:
		return common.ErrFileTooLarge
	case http.StatusUnsupportedMediaType:
		return common.ErrInvalidFileType
	case http.StatusBadGateway:
		return common.ErrStorage
	default:
		return common.ErrorInternal
	}
}
