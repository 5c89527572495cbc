package data

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RevisionSchema maps Revision onto the page_versions table. Reads are
// chronological unless the caller orders them; id breaks timestamp ties.
var RevisionSchema = &Schema{
	Table:   "page_versions",
	Columns: []string{"page_id", "body", "author_id", "saved_at"},
	OrderBy: "saved_at ASC, id ASC",
	DDL: func(d Dialect) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS page_versions (
			id %s,
			page_id %s NOT NULL REFERENCES pages(id),
			body %s NOT NULL,
			author_id %s NULL REFERENCES users(id),
			saved_at %s NOT NULL
		)`, d.Serial, d.Ref, d.Text, d.Ref, d.Timestamp)
	},
}

// Revision is one immutable snapshot of a page's content.
type Revision struct {
	Model
	PageID   int64
	Body     string
	AuthorID *int64
	SavedAt  time.Time
}

func (r *Revision) Schema() *Schema { return RevisionSchema }

func (r *Revision) Fields() []any {
	return []any{&r.ID, &r.PageID, &r.Body, &r.AuthorID, &r.SavedAt}
}

func (r *Revision) Values() []any {
	return []any{r.PageID, r.Body, r.AuthorID, r.SavedAt}
}

// Validate requires an owning page and a body. Stored revisions never change.
func (r *Revision) Validate(ctx context.Context, s *Store) (bool, error) {
	if !r.IsNew() {
		r.AddError("id", "revisions cannot be modified")
		return false, nil
	}
	if r.PageID == 0 {
		r.AddError("page_id", "page is required")
	}
	if r.Body == "" {
		r.AddError("body", "body is required")
	}
	return len(r.Errors) == 0, nil
}

// BeforeSave stamps saved_at. The stamp never goes behind the page's latest
// revision, so creation order and timestamp order agree even if the clock
// steps back.
func (r *Revision) BeforeSave(ctx context.Context, s *Store) error {
	now := s.Now()
	last, err := SelectOne[Revision](ctx, s, "WHERE page_id = ? ORDER BY saved_at DESC, id DESC LIMIT 1", r.PageID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case now.Before(last.SavedAt):
		now = last.SavedAt
	}
	r.SavedAt = now
	return nil
}

// BeforeDelete refuses: a page's history is removed as a whole by the page.
func (r *Revision) BeforeDelete(ctx context.Context, s *Store) error {
	return ErrRevisionDelete
}
