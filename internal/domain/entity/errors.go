package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags a failure with its place in the error taxonomy.
type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "validation"
	ErrorKindTimeout           ErrorKind = "collaborator_timeout"
	ErrorKindQuotaExceeded     ErrorKind = "collaborator_quota_exceeded"
	ErrorKindUnavailable       ErrorKind = "collaborator_unavailable"
	ErrorKindMissingCredential ErrorKind = "missing_credential"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrTimeout           = errors.New("generation service timed out")
	ErrQuotaExceeded     = errors.New("generation service quota exceeded")
	ErrUnavailable       = errors.New("generation service unavailable")
	ErrMissingCredential = errors.New("generation service credential missing")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CollaboratorError is a classified failure of the generation collaborator.
type CollaboratorError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *CollaboratorError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func (e *CollaboratorError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == ErrorKindTimeout
	case ErrQuotaExceeded:
		return e.Kind == ErrorKindQuotaExceeded
	case ErrUnavailable:
		return e.Kind == ErrorKindUnavailable
	case ErrMissingCredential:
		return e.Kind == ErrorKindMissingCredential
	}
	return false
}

// KindOf returns the taxonomy tag of err. Unclassified errors count as unavailable.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrTimeout):
		return ErrorKindTimeout
	case errors.Is(err, ErrQuotaExceeded):
		return ErrorKindQuotaExceeded
	case errors.Is(err, ErrMissingCredential):
		return ErrorKindMissingCredential
	}
	return ErrorKindUnavailable
}

// FriendlyMessage turns err into the text shown to the user. Quota and timeout
// failures are recognised by message as well as by tag.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	lower := strings.ToLower(err.Error())
	kind := KindOf(err)
	switch {
	case kind == ErrorKindValidation:
		return err.Error()
	case kind == ErrorKindQuotaExceeded,
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "resource_exhausted"),
		strings.Contains(lower, "429"):
		return "The generation service is busy right now. Please wait a minute and try again."
	case kind == ErrorKindTimeout,
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "deadline exceeded"):
		return "Generation took too long. Try a simpler sketch or prompt and retry."
	case kind == ErrorKindMissingCredential:
		return "The generation service is not configured. Please contact the administrator."
	}
	return "Generation failed. Please try again."
}
