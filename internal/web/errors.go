package web

import (
	"errors"
	"net/http"

	"github.com/PauloHFS/embedsim/internal/services"
	"github.com/PauloHFS/embedsim/internal/similarity"
)

// HTTPError é um erro com status HTTP explícito, devolvido pelos handlers.
type HTTPError struct {
	Status int
	Detail any
}

func (e *HTTPError) Error() string {
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return http.StatusText(e.Status)
}

func NewHTTPError(status int, detail any) *HTTPError {
	return &HTTPError{Status: status, Detail: detail}
}

type errorResponse struct {
	Detail any `json:"detail"`
}

// toHTTPError maps domain errors to responses; nil means unexpected.
func toHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidEmbedding),
		errors.Is(err, similarity.ErrDimensionMismatch),
		errors.Is(err, similarity.ErrInvalidVector),
		errors.Is(err, similarity.ErrTooManyVectors):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
