package view

import (
	"bytes"
	"fmt"
	"html/template"

	"go-wiki-store/internal/service"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer turns revision bodies written in markdown into sanitized HTML.
type Renderer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	resolve LinkResolver
}

// WithLinkResolver sets how wiki link targets become hrefs. The default
// points at the page's API path.
func WithLinkResolver(r LinkResolver) Option {
	return func(o *options) { o.resolve = r }
}

// New creates a Renderer with GitHub flavoured markdown and [[wiki links]].
// Output is passed through bluemonday's UGC policy, which keeps basic
// formatting like links, lists and tables while stripping scripts and event
// handlers.
func New(opts ...Option) *Renderer {
	o := options{resolve: service.PageLink}
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(
			extension.GFM,
			&wikiLinks{resolve: o.resolve},
		)),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render converts body to HTML.
func (v *Renderer) Render(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := v.markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(v.sanitizer.SanitizeBytes(buf.Bytes())), nil
}
