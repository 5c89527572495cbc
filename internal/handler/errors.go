package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-wiki-store/internal/data"
	"go-wiki-store/internal/middleware"
	"go-wiki-store/internal/service"
)

// appError maps a service error onto a response. fields are the validation
// failures of the record involved, if any.
func appError(err error, fields data.ValidationErrors) *middleware.AppError {
	switch {
	case errors.Is(err, data.ErrValidationFailed):
		return &middleware.AppError{Error: err, Message: "Validation failed", Code: http.StatusUnprocessableEntity, Fields: fields}
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Error: err, Message: "Not found", Code: http.StatusNotFound}
	case errors.Is(err, service.ErrInvalidCredentials):
		return &middleware.AppError{Error: err, Message: err.Error(), Code: http.StatusUnauthorized}
	default:
		return &middleware.AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v interface{}) *middleware.AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed JSON body", Code: http.StatusBadRequest}
	}
	return nil
}
