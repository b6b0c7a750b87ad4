package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput        = "SERVICE_BAD_INPUT"
	ServiceErrorUnauthorized    = "SERVICE_UNAUTHORIZED"
	ServiceErrorSearchNotFound  = "SERVICE_SEARCH_NOT_FOUND"
	ServiceErrorNotFound        = "SERVICE_NOT_FOUND"
	ServiceErrorInsertionFailed = "SERVICE_INSERTION_FAILED"
	ServiceErrorDispatchFailed  = "SERVICE_DISPATCH_FAILED"
	ServiceErrorExternalFailure = "SERVICE_EXTERNAL_FAILURE"
	ServiceErrorInternal        = "SERVICE_INTERNAL_ERROR"
)

func NewValidationError(field string, message string) *goerrors.Error {
	return goerrors.NewValidation("core: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

// NewDependencyError reports a handler built without one of its collaborators.
func NewDependencyError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorInternal)
}

func NewUnauthorizedError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ServiceErrorUnauthorized)
}

func NewSearchNotFoundError(searchID string) *goerrors.Error {
	err := goerrors.New("core: search not found", goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ServiceErrorSearchNotFound)
	err.WithMetadata(map[string]any{"search_id": searchID})
	return err
}

// NewInsertionError reports a lead write failure; the search has already
// been marked as errored when this is returned.
func NewInsertionError(source error, searchID string) *goerrors.Error {
	err := goerrors.Wrap(source, goerrors.CategoryOperation, "core: failed to save leads").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorInsertionFailed)
	err.WithMetadata(map[string]any{"search_id": searchID})
	return err
}

func NewDispatchError(source error, searchID string) *goerrors.Error {
	err := goerrors.Wrap(source, goerrors.CategoryExternal, "core: failed to start scraping workflow").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ServiceErrorDispatchFailed)
	err.WithMetadata(map[string]any{"search_id": searchID})
	return err
}

// MapError normalizes any error into the service error envelope.
func MapError(err error) *goerrors.Error {
	return serviceErrorMapper(err)
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrSearchNotFound):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorSearchNotFound)
	case errors.Is(err, ErrLeadNotFound):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "secret mismatch"):
		return newServiceError(err.Error(), goerrors.CategoryAuth, ServiceErrorUnauthorized)
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ServiceErrorUnauthorized
	case goerrors.CategoryExternal:
		return ServiceErrorExternalFailure
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
