package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateSelector matches elements removed before paragraphs are read.
const boilerplateSelector = "script, style, nav, footer, header"

// ParagraphStrategy collects <p> text from the page's main container: the
// first <article>, else the first <main>, else the whole document. Paragraphs
// are newline-joined in document order.
type ParagraphStrategy struct{}

// NewParagraphStrategy returns the container paragraph strategy.
func NewParagraphStrategy() *ParagraphStrategy { return &ParagraphStrategy{} }

// Name implements Strategy.
func (*ParagraphStrategy) Name() string { return "paragraphs" }

// Extract reports Empty when the chosen container holds no non-blank <p>.
func (*ParagraphStrategy) Extract(_ context.Context, markup string, _ *url.URL) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return failed(fmt.Errorf("parse html: %w", err))
	}

	doc.Find(boilerplateSelector).Remove()

	container := doc.Find("article").First()
	if container.Length() == 0 {
		container = doc.Find("main").First()
	}
	if container.Length() == 0 {
		container = doc.Selection
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return empty()
	}
	return extracted(strings.Join(paragraphs, "\n"))
}
