package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DocumentStrategy flattens every visible text node of the page once the
// same boilerplate as ParagraphStrategy (script, style, nav, footer, header)
// is removed. It is the last rung and only yields Empty for markup with no
// text left at all.
type DocumentStrategy struct{}

// NewDocumentStrategy returns the whole-document fallback.
func NewDocumentStrategy() *DocumentStrategy { return &DocumentStrategy{} }

// Name implements Strategy.
func (*DocumentStrategy) Name() string { return "document" }

// Extract returns the remaining text runs, one per line in document order.
func (*DocumentStrategy) Extract(_ context.Context, markup string, _ *url.URL) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return failed(fmt.Errorf("parse html: %w", err))
	}
	doc.Find(boilerplateSelector).Remove()

	var lines []string
	for _, n := range doc.Nodes {
		lines = appendNodeText(lines, n)
	}
	if len(lines) == 0 {
		return empty()
	}
	return extracted(strings.Join(lines, "\n"))
}

// appendNodeText appends the collapsed text of n and its descendants,
// skipping hiddenElements subtrees.
func appendNodeText(lines []string, n *html.Node) []string {
	switch n.Type {
	case html.TextNode:
		if line := collapseSpace(n.Data); line != "" {
			lines = append(lines, line)
		}
		return lines
	case html.ElementNode:
		if hiddenElements[n.DataAtom] {
			return lines
		}
	case html.CommentNode:
		return lines
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lines = appendNodeText(lines, c)
	}
	return lines
}
