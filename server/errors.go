package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vegasq/tabq/query"
	"github.com/vegasq/tabq/reader"
)

// AppError is an error with the HTTP status and description it is
// reported with.
type AppError struct {
	Code        int
	Description string
	Message     string
	Err         error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// errorType and errorBody are the JSON shape of every error response:
// {"type":{"code":400,"description":"Unknown column"},"message":"..."}.
type errorType struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

type errorBody struct {
	Type    errorType `json:"type"`
	Message string    `json:"message"`
}

// NewError creates a new AppError
func NewError(code int, description, message string, err error) *AppError {
	return &AppError{Code: code, Description: description, Message: message, Err: err}
}

// BadRequest creates a 400 error for a request that cannot be decoded.
func BadRequest(message string, err error) *AppError {
	return NewError(http.StatusBadRequest, "Invalid request", message, err)
}

// Internal creates a 500 error
func Internal(err error) *AppError {
	return NewError(http.StatusInternalServerError, "Internal error", "Internal error", err)
}

// FromError classifies err. Query errors caused by the request are 400,
// unknown datasets 404 and authorization failures 401; anything else is
// an internal error.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, query.ErrUnknownColumn):
		return NewError(http.StatusBadRequest, "Unknown column", err.Error(), err)
	case errors.Is(err, query.ErrUnsupportedAggregation):
		return NewError(http.StatusBadRequest, "Unsupported aggregation", err.Error(), err)
	case errors.Is(err, query.ErrInvalidRequest):
		return NewError(http.StatusBadRequest, "Invalid request", err.Error(), err)
	case errors.Is(err, reader.ErrDatasetNotFound):
		return NewError(http.StatusNotFound, "Unknown dataset", err.Error(), err)
	case errors.Is(err, ErrMissingSecret):
		return NewError(http.StatusUnauthorized, "Unauthorized", "Missing X-Secret header", err)
	case errors.Is(err, ErrInvalidSecret):
		return NewError(http.StatusUnauthorized, "Unauthorized", "Invalid X-Secret", err)
	case errors.Is(err, ErrSecretNotSet):
		return NewError(http.StatusInternalServerError, "Internal Server Error", "LUZMO_PLUGIN_SECRET is not set", err)
	default:
		return Internal(err)
	}
}

// abortWithError writes the error response and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	appErr := FromError(err)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.Code, errorBody{
		Type:    errorType{Code: appErr.Code, Description: appErr.Description},
		Message: appErr.Message,
	})
}
