package handler

import (
	"net/http"

	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"
	"go-wiki-store/internal/middleware"
	"go-wiki-store/internal/service"
)

// AuthHandler holds the dependencies for the account handlers.
type AuthHandler struct {
	userService service.UserServicer
	log         logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us service.UserServicer, log logger.Logger) *AuthHandler {
	return &AuthHandler{userService: us, log: log}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerHandler creates an account.
func (h *AuthHandler) registerHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req credentials
	if appErr := decode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		var fields data.ValidationErrors
		if user != nil {
			fields = user.ValidationErrors()
		}
		return appError(err, fields)
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"username": user.Username})
	return nil
}

// tokenHandler exchanges a username and password for the account's token.
func (h *AuthHandler) tokenHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req credentials
	if appErr := decode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		return appError(err, nil)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"token": user.Token()})
	return nil
}
