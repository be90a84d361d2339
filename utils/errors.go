package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AppError carries the HTTP status a domain error maps to. Handlers pass
// any error to RespondAppError; errors that are not AppError become a
// generic 500 so persistence details never reach the client.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message}
}

// NewNotFoundError is used both for rows that do not exist and for rows
// outside the caller's scope, so existence is not leaked across chains.
func NewNotFoundError(entity string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: entity + " not found"}
}

func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondError(c, appErr.Code, appErr)
		return
	}
	ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
}
