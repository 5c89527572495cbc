package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWikiLink(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		for _, candidate := range []string{
			"",
			"Hello",
			"[[Hello",
			"[Hello]",
			"[Hello]]",
			"[[]]",
			"[[Hello|]]",
			"[[|]]",
			"[[|Hello]]",
		} {
			_, ok := ParseWikiLink(candidate)
			assert.False(t, ok, "%q", candidate)
		}
	})

	t.Run("accepted", func(t *testing.T) {
		link, ok := ParseWikiLink("[[Hello]]")
		require.True(t, ok)
		assert.Equal(t, WikiLink{Label: "Hello", Target: "Hello"}, link)

		link, ok = ParseWikiLink("[[Hello|Hi]]")
		require.True(t, ok)
		assert.Equal(t, WikiLink{Label: "Hello", Target: "Hi"}, link)
	})
}

func TestRenderer_WikiLinks(t *testing.T) {
	r := New()

	t.Run("plain", func(t *testing.T) {
		out, err := r.Render("Languages include [[JavaScript]] and [[Python]].")
		require.NoError(t, err)
		assert.Contains(t, string(out), `href="/pages/JavaScript/"`)
		assert.Contains(t, string(out), ">JavaScript</a>")
		assert.Contains(t, string(out), `href="/pages/Python/"`)
		assert.NotContains(t, string(out), "[[")
	})

	t.Run("label and target", func(t *testing.T) {
		out, err := r.Render("Python is [[dynamically typed|Dynamic programming language]].")
		require.NoError(t, err)
		assert.Contains(t, string(out), `href="/pages/Dynamic%20programming%20language/"`)
		assert.Contains(t, string(out), ">dynamically typed</a>")
	})

	t.Run("invalid links stay text", func(t *testing.T) {
		for _, body := range []string{"[[]]", "[[|]]", "[[x|]]", "[[|x]]"} {
			out, err := r.Render(body)
			require.NoError(t, err)
			assert.NotContains(t, string(out), "<a", body)
			assert.Contains(t, string(out), body, body)
		}
	})

	t.Run("label is escaped", func(t *testing.T) {
		out, err := r.Render("[[<b>bold</b>|Home]]")
		require.NoError(t, err)
		assert.Contains(t, string(out), `href="/pages/Home/"`)
		assert.NotContains(t, string(out), "<b>")
	})

	t.Run("custom resolver", func(t *testing.T) {
		r := New(WithLinkResolver(func(title string) string { return "/wiki/" + title }))
		out, err := r.Render("[[Home]]")
		require.NoError(t, err)
		assert.Contains(t, string(out), `href="/wiki/Home"`)
	})

	t.Run("markdown links unaffected", func(t *testing.T) {
		out, err := r.Render("[Home](/pages/Home/) and [[Other]]")
		require.NoError(t, err)
		assert.Contains(t, string(out), `href="/pages/Home/"`)
		assert.Contains(t, string(out), `href="/pages/Other/"`)
	})
}
