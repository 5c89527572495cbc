package handler

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"
	"go-wiki-store/internal/middleware"
	"go-wiki-store/internal/service"
	"go-wiki-store/internal/view"

	"github.com/go-chi/chi/v5"
)

// PageHandler holds the dependencies for the page handlers.
type PageHandler struct {
	pageService service.PageServicer
	renderer    *view.Renderer
	log         logger.Logger
}

// NewPageHandler creates a new PageHandler with the given dependencies.
func NewPageHandler(ps service.PageServicer, v *view.Renderer, log logger.Logger) *PageHandler {
	return &PageHandler{
		pageService: ps,
		renderer:    v,
		log:         log,
	}
}

type pageRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// pageDetail is a page view with the current body rendered, when asked for.
type pageDetail struct {
	service.PageView
	HTML template.HTML `json:"html,omitempty"`
}

// titleParam returns the decoded title path segment.
func titleParam(r *http.Request) (string, error) {
	title := chi.URLParam(r, "title")
	if r.URL.RawPath == "" {
		return title, nil
	}
	return url.PathUnescape(title)
}

func queryFlag(r *http.Request, name string) bool {
	on, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return on
}

// listHandler returns every page with its current revision.
func (h *PageHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pages, err := h.pageService.List(r.Context())
	if err != nil {
		return appError(err, nil)
	}

	views := make([]service.PageView, len(pages))
	for i, p := range pages {
		views[i] = service.NewPageView(p, false)
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"pages": views})
	return nil
}

// createHandler stores a new page with its first revision.
func (h *PageHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req pageRequest
	if appErr := decode(r, &req); appErr != nil {
		return appErr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	page, err := h.pageService.CreateWithBody(r.Context(), req.Title, req.Body, userInfo.UserID)
	if err != nil {
		return appError(err, page.ValidationErrors())
	}

	v := service.NewPageView(page, false)
	w.Header().Set("Location", v.Link)
	middleware.WriteJSON(w, http.StatusCreated, v)
	return nil
}

// detailHandler returns one page. ?history=1 adds every revision, newest
// first; ?html=1 adds the current body rendered from markdown.
func (h *PageHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, appErr := h.loadPage(r)
	if appErr != nil {
		return appErr
	}

	detail := pageDetail{PageView: service.NewPageView(page, queryFlag(r, "history"))}
	if current := page.Current(); current != nil && queryFlag(r, "html") {
		html, err := h.renderer.Render(current.Body)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
		}
		detail.HTML = html
	}
	middleware.WriteJSON(w, http.StatusOK, detail)
	return nil
}

// updateHandler renames the page and/or appends a revision.
func (h *PageHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, appErr := h.loadPage(r)
	if appErr != nil {
		return appErr
	}
	var req pageRequest
	if appErr := decode(r, &req); appErr != nil {
		return appErr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	if err := h.pageService.Update(r.Context(), page, req.Title, req.Body, userInfo.UserID); err != nil {
		return appError(err, page.ValidationErrors())
	}
	middleware.WriteJSON(w, http.StatusOK, service.NewPageView(page, false))
	return nil
}

// deleteHandler removes the page and its history.
func (h *PageHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, appErr := h.loadPage(r)
	if appErr != nil {
		return appErr
	}
	if err := h.pageService.Delete(r.Context(), page); err != nil {
		return appError(err, nil)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// loadPage fetches the page named in the URL with its history.
func (h *PageHandler) loadPage(r *http.Request) (*data.Page, *middleware.AppError) {
	title, err := titleParam(r)
	if err != nil {
		return nil, &middleware.AppError{Error: err, Message: "Malformed page title", Code: http.StatusBadRequest}
	}
	page, err := h.pageService.GetByTitle(r.Context(), title)
	if err != nil {
		return nil, appError(err, nil)
	}
	if _, err := h.pageService.WithHistory(r.Context(), page); err != nil {
		return nil, appError(err, nil)
	}
	return page, nil
}
