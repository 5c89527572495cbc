package handler

import (
	"net/http"

	"go-wiki-store/internal/logger"
	"go-wiki-store/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Pages *PageHandler
	Auth  *AuthHandler
	Seo   *SeoHandler
}

// NewRouter creates and configures a new chi router. authn resolves the
// caller, authz decides whether the caller may use the route.
func NewRouter(h Handlers, authn, authz func(http.Handler) http.Handler, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	// Public routes
	r.Get("/robots.txt", h.Seo.robotsHandler)
	r.Get("/sitemap.xml", h.Seo.sitemapHandler)

	withErrors := middleware.Error(log)

	// Routes checked against the policy
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Use(authz)

		r.Method(http.MethodGet, "/pages/", withErrors(h.Pages.listHandler))
		r.Method(http.MethodPost, "/pages/", withErrors(h.Pages.createHandler))
		r.Method(http.MethodGet, "/pages/{title}/", withErrors(h.Pages.detailHandler))
		r.Method(http.MethodPut, "/pages/{title}/", withErrors(h.Pages.updateHandler))
		r.Method(http.MethodDelete, "/pages/{title}/", withErrors(h.Pages.deleteHandler))

		r.Method(http.MethodPost, "/auth/user/", withErrors(h.Auth.registerHandler))
		r.Method(http.MethodPost, "/auth/token/", withErrors(h.Auth.tokenHandler))
	})

	return r
}
