package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"
)

// ErrPageNotSaved is returned by operations that need a stored page.
var ErrPageNotSaved = errors.New("page has not been saved")

// PageServicer defines the interface for interacting with pages.
type PageServicer interface {
	CreateWithBody(ctx context.Context, title, body string, authorID *int64) (*data.Page, error)
	GetByTitle(ctx context.Context, title string) (*data.Page, error)
	WithHistory(ctx context.Context, page *data.Page) (*data.Page, error)
	AddVersion(ctx context.Context, page *data.Page, body string, authorID *int64) (*data.Revision, error)
	Rename(ctx context.Context, page *data.Page, newTitle string) error
	Update(ctx context.Context, page *data.Page, title, body string, authorID *int64) error
	Delete(ctx context.Context, page *data.Page) error
	List(ctx context.Context) ([]*data.Page, error)
}

// PageService keeps each page's append-only revision history on top of the
// record store.
type PageService struct {
	store *data.Store
	log   logger.Logger
}

var _ PageServicer = (*PageService)(nil)

// NewPageService creates a new PageService over store.
func NewPageService(store *data.Store, log logger.Logger) *PageService {
	return &PageService{store: store, log: log}
}

// CreateWithBody saves a new page and its first revision.
//
// An empty or duplicate title and an empty body are all reported on the
// page's Errors, and nothing is written. If the revision fails after the
// page row was written, the page stays behind with no history.
func (s *PageService) CreateWithBody(ctx context.Context, title, body string, authorID *int64) (*data.Page, error) {
	page := &data.Page{Title: title}

	valid, err := page.Validate(ctx, s.store)
	if err != nil {
		return page, err
	}
	if body == "" {
		page.AddError("body", "page must contain a body")
	}
	if !valid || body == "" {
		return page, fmt.Errorf("create page %q: %w", title, data.ErrValidationFailed)
	}

	if err := s.store.Save(ctx, page); err != nil {
		return page, err
	}
	page.History = []*data.Revision{}
	if _, err := s.AddVersion(ctx, page, body, authorID); err != nil {
		s.log.Error(err, fmt.Sprintf("Page %q saved without its initial revision", title))
		return page, err
	}

	s.log.With(map[string]interface{}{"page_id": page.ID, "title": page.Title}).Info("Page created")
	return page, nil
}

// GetByTitle returns the page titled title, without its history, or
// data.ErrNotFound.
func (s *PageService) GetByTitle(ctx context.Context, title string) (*data.Page, error) {
	return data.SelectOne[data.Page](ctx, s.store, "WHERE title = ?", title)
}

// Revisions returns the page's revisions in storage order, oldest first.
func (s *PageService) Revisions(ctx context.Context, pageID int64) ([]*data.Revision, error) {
	return data.Select[data.Revision](ctx, s.store, "WHERE page_id = ?", pageID)
}

// WithHistory loads the page's revisions, newest first.
func (s *PageService) WithHistory(ctx context.Context, page *data.Page) (*data.Page, error) {
	revs, err := s.Revisions(ctx, page.ID)
	if err != nil {
		return page, err
	}
	slices.Reverse(revs)
	page.History = revs
	return page, nil
}

// AddVersion appends a revision to a stored page. A loaded history gets the
// new revision in front instead of being fetched again.
func (s *PageService) AddVersion(ctx context.Context, page *data.Page, body string, authorID *int64) (*data.Revision, error) {
	if page.IsNew() {
		return nil, ErrPageNotSaved
	}
	rev := &data.Revision{PageID: page.ID, Body: body, AuthorID: authorID}
	if err := s.store.Save(ctx, rev); err != nil {
		return rev, err
	}
	if page.History != nil {
		page.History = append([]*data.Revision{rev}, page.History...)
	}
	return rev, nil
}

// Rename changes the title of a stored page. No revision is created. On
// failure the old title is restored and the errors stay on the page.
func (s *PageService) Rename(ctx context.Context, page *data.Page, newTitle string) error {
	if page.IsNew() {
		return ErrPageNotSaved
	}
	oldTitle := page.Title
	page.Title = newTitle
	if err := s.store.Save(ctx, page); err != nil {
		page.Title = oldTitle
		return err
	}
	s.log.With(map[string]interface{}{"page_id": page.ID, "from": oldTitle, "to": newTitle}).Info("Page renamed")
	return nil
}

// Update renames the page when title is set and differs, then appends body
// as a new revision when it is set.
func (s *PageService) Update(ctx context.Context, page *data.Page, title, body string, authorID *int64) error {
	if title != "" && title != page.Title {
		if err := s.Rename(ctx, page, title); err != nil {
			return err
		}
	}
	if body != "" {
		if _, err := s.AddVersion(ctx, page, body, authorID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the page and, before it, all of its revisions.
func (s *PageService) Delete(ctx context.Context, page *data.Page) error {
	if err := s.store.Delete(ctx, page); err != nil {
		return err
	}
	page.History = nil
	s.log.With(map[string]interface{}{"page_id": page.ID, "title": page.Title}).Info("Page deleted")
	return nil
}

// List returns every page ordered by title, each with its history loaded.
func (s *PageService) List(ctx context.Context) ([]*data.Page, error) {
	pages, err := data.Select[data.Page](ctx, s.store, "ORDER BY title")
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		if _, err := s.WithHistory(ctx, p); err != nil {
			return nil, err
		}
	}
	return pages, nil
}
