package service

import (
	"net/url"
	"time"

	"go-wiki-store/internal/data"
)

// PageView is the transfer representation of a page. The current revision
// fields appear only when the page has history; History only on request.
type PageView struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
	*CurrentView
	History []RevisionView `json:"history,omitempty"`
}

// CurrentView carries the newest revision of a page.
type CurrentView struct {
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *int64    `json:"updated_by"`
}

// RevisionView is one entry of a page's history.
type RevisionView struct {
	Body     string    `json:"body"`
	SavedAt  time.Time `json:"saved_at"`
	AuthorID *int64    `json:"author_id"`
}

// PageLink returns the API path of the page titled title.
func PageLink(title string) string {
	return "/pages/" + url.PathEscape(title) + "/"
}

// NewPageView snapshots page from its loaded history, newest revision first.
func NewPageView(page *data.Page, includeHistory bool) PageView {
	v := PageView{
		ID:    page.ID,
		Title: page.Title,
		Link:  PageLink(page.Title),
	}
	current := page.Current()
	if current == nil {
		return v
	}
	v.CurrentView = &CurrentView{
		Body:      current.Body,
		UpdatedAt: current.SavedAt,
		UpdatedBy: current.AuthorID,
	}
	if includeHistory {
		v.History = make([]RevisionView, len(page.History))
		for i, r := range page.History {
			v.History[i] = RevisionView{Body: r.Body, SavedAt: r.SavedAt, AuthorID: r.AuthorID}
		}
	}
	return v
}
