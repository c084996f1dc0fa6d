package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// placeholderURL stands in when the page URL is unknown; readability needs a
// base to resolve relative links against.
var placeholderURL = &url.URL{Scheme: "https", Host: "example.invalid", Path: "/"}

// ReadabilityStrategy isolates the main article with go-readability and
// flattens it, one text run per line, with the title prefixed when present.
type ReadabilityStrategy struct{}

// NewReadabilityStrategy returns the go-readability strategy.
func NewReadabilityStrategy() *ReadabilityStrategy { return &ReadabilityStrategy{} }

// Name implements Strategy.
func (*ReadabilityStrategy) Name() string { return "readability" }

// Extract resolves relative links against pageURL, or a placeholder when
// it is nil. A page readability cannot parse is Failed, not Empty.
func (*ReadabilityStrategy) Extract(_ context.Context, markup string, pageURL *url.URL) Result {
	if pageURL == nil {
		pageURL = placeholderURL
	}

	article, err := readability.FromReader(strings.NewReader(markup), pageURL)
	if err != nil {
		return failed(fmt.Errorf("readability: %w", err))
	}

	body, err := visibleText(strings.NewReader(article.Content))
	if err != nil {
		return failed(fmt.Errorf("flatten article: %w", err))
	}
	if strings.TrimSpace(body) == "" {
		return empty()
	}

	if title := collapseSpace(article.Title); title != "" {
		return extracted(title + "\n\n" + body)
	}
	return extracted(body)
}
