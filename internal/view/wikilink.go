package view

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// WikiLink is a parsed [[Label|Target]] reference. Target names a page.
type WikiLink struct {
	Label  string
	Target string
}

// ParseWikiLink parses candidate as "[[Target]]" or "[[Label|Target]]".
// Empty links and links with an empty label or target are rejected.
func ParseWikiLink(candidate string) (WikiLink, bool) {
	if len(candidate) < 4 || !strings.HasPrefix(candidate, "[[") || !strings.HasSuffix(candidate, "]]") {
		return WikiLink{}, false
	}
	inner := candidate[2 : len(candidate)-2]
	if inner == "" {
		return WikiLink{}, false
	}
	label, target, found := strings.Cut(inner, "|")
	if !found {
		return WikiLink{Label: inner, Target: inner}, true
	}
	if label == "" || target == "" {
		return WikiLink{}, false
	}
	return WikiLink{Label: label, Target: target}, true
}

// LinkResolver returns the href of the page titled title.
type LinkResolver func(title string) string

var (
	wikiOpen  = []byte("[[")
	wikiClose = []byte("]]")
)

// wikiLinkParser turns [[...]] into links. It runs before goldmark's own
// link parser, which shares the '[' trigger.
type wikiLinkParser struct {
	resolve LinkResolver
}

func (p *wikiLinkParser) Trigger() []byte { return []byte{'['} }

func (p *wikiLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, wikiOpen) {
		return nil
	}
	end := bytes.Index(line[len(wikiOpen):], wikiClose)
	if end < 0 {
		return nil
	}
	size := len(wikiOpen) + end + len(wikiClose)
	link, ok := ParseWikiLink(string(line[:size]))
	if !ok {
		return nil
	}
	block.Advance(size)

	n := ast.NewLink()
	n.Destination = []byte(p.resolve(link.Target))
	n.AppendChild(n, ast.NewString([]byte(link.Label)))
	return n
}

// wikiLinks is a goldmark extension registering wikiLinkParser.
type wikiLinks struct {
	resolve LinkResolver
}

func (e *wikiLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&wikiLinkParser{resolve: e.resolve}, 199),
	))
}
