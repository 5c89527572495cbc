package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
	// Fields, when set, are reported as validation errors.
	Fields data.ValidationErrors
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// WriteJSON writes v as the JSON body of a response with status code.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error is a middleware that converts handler errors into JSON error bodies.
// Validation failures become {"errors": [[field, message], ...]}; anything
// else becomes {"error": message}.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
				}
			}()

			appErr := next(w, r)
			if appErr == nil {
				return
			}
			if len(appErr.Fields) > 0 {
				WriteJSON(w, appErr.Code, map[string]interface{}{"errors": appErr.Fields})
				return
			}
			if appErr.Code >= http.StatusInternalServerError {
				log.Error(appErr.Error, appErr.Message)
			}
			WriteJSON(w, appErr.Code, map[string]string{"error": appErr.Message})
		})
	}
}
