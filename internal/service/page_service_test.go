package service

import (
	"context"
	"encoding/json"
	"testing"

	"go-wiki-store/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodies(revs []*data.Revision) []string {
	out := make([]string, len(revs))
	for i, r := range revs {
		out[i] = r.Body
	}
	return out
}

func TestPageService_CreateWithBody(t *testing.T) {
	pages, _, _ := newTestServices(t)
	ctx := context.Background()

	created, err := pages.CreateWithBody(ctx, "T", "B", nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.Len(t, created.History, 1)

	page, err := pages.GetByTitle(ctx, "T")
	require.NoError(t, err)
	assert.Nil(t, page.History, "GetByTitle must not preload history")

	_, err = pages.WithHistory(ctx, page)
	require.NoError(t, err)
	require.Len(t, page.History, 1)
	assert.Equal(t, "B", page.History[0].Body)
}

func TestPageService_CreateWithBody_DuplicateTitle(t *testing.T) {
	pages, _, store := newTestServices(t)
	ctx := context.Background()

	_, err := pages.CreateWithBody(ctx, "T", "first", nil)
	require.NoError(t, err)

	dup, err := pages.CreateWithBody(ctx, "T", "second", nil)
	require.ErrorIs(t, err, data.ErrValidationFailed)
	assert.Zero(t, dup.ID)
	assert.Equal(t, data.ValidationErrors{{Field: "title", Message: "title must be unique"}}, dup.Errors)

	n, err := store.Count(ctx, data.PageSchema, "WHERE title = ?", "T")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.Count(ctx, data.RevisionSchema, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPageService_CreateWithBody_Errors(t *testing.T) {
	pages, _, store := newTestServices(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		title string
		body  string
		want  data.ValidationErrors
	}{
		{"empty body", "T", "", data.ValidationErrors{{Field: "body", Message: "page must contain a body"}}},
		{"empty title", "", "B", data.ValidationErrors{{Field: "title", Message: "title is required"}}},
		{"both empty", "", "", data.ValidationErrors{
			{Field: "title", Message: "title is required"},
			{Field: "body", Message: "page must contain a body"},
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := pages.CreateWithBody(ctx, tc.title, tc.body, nil)
			require.ErrorIs(t, err, data.ErrValidationFailed)
			assert.Equal(t, tc.want, page.Errors)
			assert.Zero(t, page.ID)
		})
	}

	n, err := store.Count(ctx, data.PageSchema, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPageService_HistoryOrder(t *testing.T) {
	pages, _, _ := newTestServices(t)
	ctx := context.Background()

	page, err := pages.CreateWithBody(ctx, "Doc", "v1", nil)
	require.NoError(t, err)
	_, err = pages.AddVersion(ctx, page, "v2", nil)
	require.NoError(t, err)
	_, err = pages.AddVersion(ctx, page, "v3", nil)
	require.NoError(t, err)

	// The cached history was kept current by prepending.
	assert.Equal(t, []string{"v3", "v2", "v1"}, bodies(page.History))

	fresh, err := pages.GetByTitle(ctx, "Doc")
	require.NoError(t, err)
	_, err = pages.WithHistory(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, []string{"v3", "v2", "v1"}, bodies(fresh.History))
	assert.Equal(t, "v3", fresh.Current().Body)

	raw, err := pages.Revisions(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2", "v3"}, bodies(raw))
}

func TestPageService_AddVersion(t *testing.T) {
	pages, users, _ := newTestServices(t)
	ctx := context.Background()

	t.Run("unsaved page", func(t *testing.T) {
		_, err := pages.AddVersion(ctx, &data.Page{Title: "x"}, "body", nil)
		assert.ErrorIs(t, err, ErrPageNotSaved)
	})

	t.Run("unloaded history stays unloaded", func(t *testing.T) {
		_, err := pages.CreateWithBody(ctx, "Lazy", "v1", nil)
		require.NoError(t, err)
		page, err := pages.GetByTitle(ctx, "Lazy")
		require.NoError(t, err)

		_, err = pages.AddVersion(ctx, page, "v2", nil)
		require.NoError(t, err)
		assert.Nil(t, page.History)
	})

	t.Run("empty body", func(t *testing.T) {
		page, err := pages.CreateWithBody(ctx, "Strict", "v1", nil)
		require.NoError(t, err)

		rev, err := pages.AddVersion(ctx, page, "", nil)
		require.ErrorIs(t, err, data.ErrValidationFailed)
		assert.True(t, rev.Errors.Has("body"))
		assert.Len(t, page.History, 1)
	})

	t.Run("author recorded", func(t *testing.T) {
		alice, err := users.Register(ctx, "alice", "secret1")
		require.NoError(t, err)
		page, err := pages.CreateWithBody(ctx, "Authored", "v1", &alice.ID)
		require.NoError(t, err)

		rev := page.Current()
		require.NotNil(t, rev.AuthorID)
		assert.Equal(t, alice.ID, *rev.AuthorID)
	})
}

func TestPageService_Rename(t *testing.T) {
	pages, _, store := newTestServices(t)
	ctx := context.Background()

	page, err := pages.CreateWithBody(ctx, "Old", "body", nil)
	require.NoError(t, err)
	_, err = pages.CreateWithBody(ctx, "Taken", "body", nil)
	require.NoError(t, err)

	require.NoError(t, pages.Rename(ctx, page, "New"))
	_, err = pages.GetByTitle(ctx, "Old")
	assert.ErrorIs(t, err, data.ErrNotFound)
	renamed, err := pages.GetByTitle(ctx, "New")
	require.NoError(t, err)
	assert.Equal(t, page.ID, renamed.ID)

	n, err := store.Count(ctx, data.RevisionSchema, "WHERE page_id = ?", page.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "rename must not create a revision")

	err = pages.Rename(ctx, page, "Taken")
	require.ErrorIs(t, err, data.ErrValidationFailed)
	assert.Equal(t, "New", page.Title)
	assert.True(t, page.Errors.Has("title"))

	assert.ErrorIs(t, pages.Rename(ctx, &data.Page{Title: "x"}, "y"), ErrPageNotSaved)
}

func TestPageService_Update(t *testing.T) {
	pages, _, _ := newTestServices(t)
	ctx := context.Background()

	page, err := pages.CreateWithBody(ctx, "Draft", "v1", nil)
	require.NoError(t, err)

	require.NoError(t, pages.Update(ctx, page, "Final", "v2", nil))
	assert.Equal(t, "Final", page.Title)
	assert.Equal(t, []string{"v2", "v1"}, bodies(page.History))

	// Neither field set is a no-op.
	require.NoError(t, pages.Update(ctx, page, "", "", nil))
	assert.Len(t, page.History, 2)
}

func TestPageService_Delete(t *testing.T) {
	pages, _, store := newTestServices(t)
	ctx := context.Background()

	page, err := pages.CreateWithBody(ctx, "Gone", "v1", nil)
	require.NoError(t, err)
	for _, body := range []string{"v2", "v3", "v4"} {
		_, err := pages.AddVersion(ctx, page, body, nil)
		require.NoError(t, err)
	}
	id := page.ID

	require.NoError(t, pages.Delete(ctx, page))

	n, err := store.Count(ctx, data.RevisionSchema, "WHERE page_id = ?", id)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = pages.GetByTitle(ctx, "Gone")
	assert.ErrorIs(t, err, data.ErrNotFound)

	// Deleted is terminal: the row cannot be brought back by saving.
	assert.Error(t, store.Save(ctx, page))
}

func TestPageService_List(t *testing.T) {
	pages, _, _ := newTestServices(t)
	ctx := context.Background()

	for _, title := range []string{"Beta", "Alpha", "Gamma"} {
		_, err := pages.CreateWithBody(ctx, title, title+" body", nil)
		require.NoError(t, err)
	}

	list, err := pages.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alpha", list[0].Title)
	assert.Equal(t, "Beta", list[1].Title)
	assert.Equal(t, "Gamma", list[2].Title)
	assert.Equal(t, "Alpha body", list[0].Current().Body)
}

func TestNewPageView(t *testing.T) {
	pages, _, _ := newTestServices(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		page, err := pages.CreateWithBody(ctx, "My Page", "Hello", nil)
		require.NoError(t, err)

		v := NewPageView(page, false)
		assert.Equal(t, page.ID, v.ID)
		assert.Equal(t, "My Page", v.Title)
		assert.Equal(t, "/pages/My%20Page/", v.Link)
		require.NotNil(t, v.CurrentView)
		assert.Equal(t, "Hello", v.Body)
		assert.Nil(t, v.UpdatedBy)
		assert.Nil(t, v.History)

		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, "Hello", decoded["body"])
		assert.Contains(t, decoded, "updated_at")
		assert.Contains(t, decoded, "updated_by")
		assert.NotContains(t, decoded, "history")
	})

	t.Run("full history", func(t *testing.T) {
		page, err := pages.CreateWithBody(ctx, "Versions", "v1", nil)
		require.NoError(t, err)
		_, err = pages.AddVersion(ctx, page, "v2", nil)
		require.NoError(t, err)

		v := NewPageView(page, true)
		require.Len(t, v.History, 2)
		assert.Equal(t, "v2", v.History[0].Body)
		assert.Equal(t, "v1", v.History[1].Body)
		assert.Equal(t, "v2", v.Body)
	})

	t.Run("no history", func(t *testing.T) {
		v := NewPageView(&data.Page{Model: data.Model{ID: 7}, Title: "Empty"}, true)
		assert.Nil(t, v.CurrentView)

		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":7,"title":"Empty","link":"/pages/Empty/"}`, string(raw))
	})
}
