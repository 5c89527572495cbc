package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := New()

	t.Run("markdown", func(t *testing.T) {
		out, err := r.Render("# Title\n\nSome *emphasis*.")
		require.NoError(t, err)
		assert.Contains(t, string(out), "<h1")
		assert.Contains(t, string(out), "Title</h1>")
		assert.Contains(t, string(out), "<em>emphasis</em>")
	})

	t.Run("strips scripts", func(t *testing.T) {
		out, err := r.Render("hello <script>alert(1)</script>")
		require.NoError(t, err)
		assert.NotContains(t, string(out), "<script")
		assert.Contains(t, string(out), "hello")
	})

	t.Run("links kept", func(t *testing.T) {
		out, err := r.Render("[Home](/pages/Home/)")
		require.NoError(t, err)
		assert.Contains(t, string(out), `href="/pages/Home/"`)
	})
}
