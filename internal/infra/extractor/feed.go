package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedStrategy handles URLs that point at an RSS, Atom or JSON feed rather
// than a page. Ordinary HTML is detected up front and reported as Empty so
// the ladder moves on without a parse attempt.
type FeedStrategy struct {
	maxItems int
}

// DefaultFeedItems bounds how many entries of a feed are flattened.
const DefaultFeedItems = 20

// NewFeedStrategy returns a feed strategy reading up to DefaultFeedItems entries.
func NewFeedStrategy() *FeedStrategy { return &FeedStrategy{maxItems: DefaultFeedItems} }

// Name implements Strategy.
func (*FeedStrategy) Name() string { return "feed" }

// Extract joins the feed title and each entry (title, then body text) with
// blank lines between entries.
func (f *FeedStrategy) Extract(_ context.Context, markup string, _ *url.URL) Result {
	if gofeed.DetectFeedType(strings.NewReader(markup)) == gofeed.FeedTypeUnknown {
		return empty()
	}

	feed, err := gofeed.NewParser().ParseString(markup)
	if err != nil {
		return failed(fmt.Errorf("parse feed: %w", err))
	}

	var blocks []string
	if title := collapseSpace(feed.Title); title != "" {
		blocks = append(blocks, title)
	}
	for i, item := range feed.Items {
		if i >= f.maxItems {
			break
		}
		// Content is preferred over Description, both may carry markup.
		body := item.Content
		if body == "" {
			body = item.Description
		}
		text, err := visibleText(strings.NewReader(body))
		if err != nil {
			text = collapseSpace(body)
		}

		var parts []string
		if t := collapseSpace(item.Title); t != "" {
			parts = append(parts, t)
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
		if len(parts) > 0 {
			blocks = append(blocks, strings.Join(parts, "\n"))
		}
	}

	if len(blocks) == 0 {
		return empty()
	}
	return extracted(strings.Join(blocks, "\n\n"))
}
