package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharebox/internal/client/models"
	"github.com/dmitrijs2005/sharebox/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("not authenticated")
	ErrRateLimited  = errors.New("too many attempts, try again later")
)

// ConflictError reports that an upload would replace Existing.
type ConflictError struct {
	Existing models.Object
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%q already exists", e.Existing.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == common.ErrorConflict
}

// APIError is a rejected request with no more specific meaning.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}
