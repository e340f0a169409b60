package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"google.golang.org/genai"

	"uistudio/internal/domain/entity"
)

// StatusError is an upstream HTTP failure with its status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// Classify maps any collaborator failure onto the error taxonomy. Errors that are
// already classified pass through unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *entity.CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &entity.CollaboratorError{Kind: kindOf(err), Op: op, Err: err}
}

func kindOf(err error) entity.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.ErrorKindTimeout
	}
	var se *StatusError
	if errors.As(err, &se) {
		if k, ok := kindForStatus(se.Code); ok {
			return k
		}
	}
	if code, ok := apiStatus(err); ok {
		if k, ok := kindForStatus(code); ok {
			return k
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "resource exhausted"),
		strings.Contains(lower, "too many requests"):
		return entity.ErrorKindQuotaExceeded
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "deadline exceeded"):
		return entity.ErrorKindTimeout
	case strings.Contains(lower, "api key"),
		strings.Contains(lower, "unauthenticated"),
		strings.Contains(lower, "permission_denied"):
		return entity.ErrorKindMissingCredential
	}
	return entity.ErrorKindUnavailable
}

func kindForStatus(code int) (entity.ErrorKind, bool) {
	switch code {
	case http.StatusTooManyRequests:
		return entity.ErrorKindQuotaExceeded, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return entity.ErrorKindTimeout, true
	case http.StatusUnauthorized, http.StatusForbidden:
		return entity.ErrorKindMissingCredential, true
	}
	return "", false
}

// apiStatus extracts the HTTP status carried by SDK error types.
func apiStatus(err error) (int, bool) {
	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	var gperr *genai.APIError
	if errors.As(err, &gperr) && gperr != nil {
		return gperr.Code, true
	}
	var oerr *openai.Error
	if errors.As(err, &oerr) && oerr != nil {
		return oerr.StatusCode, true
	}
	return 0, false
}
