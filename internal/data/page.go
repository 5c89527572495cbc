package data

import (
	"context"
	"fmt"
)

// PageSchema maps Page onto the pages table.
var PageSchema = &Schema{
	Table:   "pages",
	Columns: []string{"title"},
	DDL: func(d Dialect) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pages (
			id %s,
			title %s UNIQUE
		)`, d.Serial, d.KeyText)
	},
}

// Page is a named document. It holds no text of its own: content lives in
// its revisions.
type Page struct {
	Model
	Title string

	// History is nil until loaded, newest revision first.
	History []*Revision
}

func (p *Page) Schema() *Schema { return PageSchema }
func (p *Page) Fields() []any   { return []any{&p.ID, &p.Title} }
func (p *Page) Values() []any   { return []any{p.Title} }

// Validate requires a title that no other page uses. Titles compare case-sensitively.
func (p *Page) Validate(ctx context.Context, s *Store) (bool, error) {
	if p.Title == "" {
		p.AddError("title", "title is required")
		return false, nil
	}
	n, err := s.Count(ctx, PageSchema, "WHERE title = ? AND id != ?", p.Title, p.ID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		p.AddError("title", "title must be unique")
		return false, nil
	}
	return true, nil
}

// BeforeDelete removes the page's revisions.
func (p *Page) BeforeDelete(ctx context.Context, s *Store) error {
	_, err := s.Exec(ctx, RevisionSchema.Table, "DELETE FROM page_versions WHERE page_id = ?", p.ID)
	return err
}

// Current returns the most recent loaded revision, or nil.
func (p *Page) Current() *Revision {
	if len(p.History) == 0 {
		return nil
	}
	return p.History[0]
}
