package extractor_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"literary-analysis/internal/infra/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longParagraph = "The harbor was quiet at dawn, and the fishermen moved between the boats " +
	"with the slow patience of people who had done the same work for forty years. " +
	"Gulls circled above the breakwater while the tide turned against the old stone pier, " +
	"and somewhere in the town a bell counted the hour for nobody in particular."

func articlePage() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Notes on the Quiet Harbor at Dawn</title></head><body>`)
	b.WriteString(`<nav><a href="/">Home</a> <a href="/about">About</a></nav>`)
	b.WriteString(`<article><h1>Notes on the Quiet Harbor at Dawn</h1>`)
	for i := 0; i < 6; i++ {
		b.WriteString("<p>" + longParagraph + "</p>")
	}
	b.WriteString(`</article><footer>Copyright</footer></body></html>`)
	return b.String()
}

func TestReadabilityStrategy_ExtractsArticle(t *testing.T) {
	s := extractor.NewReadabilityStrategy()
	pageURL, _ := url.Parse("https://example.com/harbor")

	res := s.Extract(context.Background(), articlePage(), pageURL)

	require.Equal(t, extractor.Extracted, res.Outcome, "err: %v", res.Err)
	assert.True(t, strings.HasPrefix(res.Text, "Notes on the Quiet Harbor at Dawn\n\n"), res.Text)
	assert.Contains(t, res.Text, "Gulls circled above the breakwater")
	assert.NotContains(t, res.Text, "<p>")
}

func TestReadabilityStrategy_NilURL(t *testing.T) {
	s := extractor.NewReadabilityStrategy()
	res := s.Extract(context.Background(), articlePage(), nil)
	assert.Equal(t, extractor.Extracted, res.Outcome)
}

func TestParagraphStrategy_ContainerPreference(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "article preferred over main",
			markup: `<main><p>main text</p><article><p>article text</p></article></main>`,
			want:   "article text",
		},
		{
			name:   "main when no article",
			markup: `<div><p>outside</p></div><main><p>inside main</p></main>`,
			want:   "inside main",
		},
		{
			name:   "document root when neither",
			markup: `<div><p>one</p></div><section><p>two</p></section>`,
			want:   "one\ntwo",
		},
		{
			name:   "boilerplate removed",
			markup: `<body><nav><p>menu</p></nav><p>body</p><footer><p>foot</p></footer></body>`,
			want:   "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractor.NewParagraphStrategy().Extract(context.Background(), tt.markup, nil)
			require.Equal(t, extractor.Extracted, res.Outcome)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestParagraphStrategy_NoParagraphs(t *testing.T) {
	res := extractor.NewParagraphStrategy().Extract(context.Background(), `<div>no paragraphs here</div>`, nil)
	assert.Equal(t, extractor.Empty, res.Outcome)
}

func TestDocumentStrategy_SkipsHiddenElements(t *testing.T) {
	markup := `<html><head><title>T</title><script>alert(1)</script></head>
		<body><noscript>enable js</noscript><h1>Heading</h1><p>Body   text</p>
		<template><p>tpl</p></template><style>p{}</style></body></html>`

	res := extractor.NewDocumentStrategy().Extract(context.Background(), markup, nil)
	require.Equal(t, extractor.Extracted, res.Outcome)
	assert.Equal(t, "T\nHeading\nBody text", res.Text)
}

const chromePage = `<header>Site Menu</header><nav>Home About</nav>` +
	`<div>Real body text</div><footer>Copyright 2024</footer>`

func TestDocumentStrategy_DropsPageChrome(t *testing.T) {
	res := extractor.NewDocumentStrategy().Extract(context.Background(), chromePage, nil)
	require.Equal(t, extractor.Extracted, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, "Real body text", res.Text)
}

func TestDocumentStrategy_FallbackAfterParagraphs(t *testing.T) {
	p := extractor.NewPipeline([]extractor.Strategy{
		extractor.NewParagraphStrategy(),
		extractor.NewDocumentStrategy(),
	})

	got, err := p.Extract(context.Background(), chromePage, nil)
	require.NoError(t, err)
	assert.Equal(t, "document", got.Strategy)
	assert.Equal(t, "Real body text", got.Text)
}

func TestDocumentStrategy_OnlyChrome(t *testing.T) {
	res := extractor.NewDocumentStrategy().Extract(context.Background(),
		`<header>Logo</header><nav>Menu</nav><footer>Legal</footer>`, nil)
	assert.Equal(t, extractor.Empty, res.Outcome)
}

func TestDocumentStrategy_PlainText(t *testing.T) {
	res := extractor.NewDocumentStrategy().Extract(context.Background(), "just some words", nil)
	require.Equal(t, extractor.Extracted, res.Outcome)
	assert.Equal(t, "just some words", res.Text)
}

func TestDocumentStrategy_Empty(t *testing.T) {
	res := extractor.NewDocumentStrategy().Extract(context.Background(), "<div>  </div><script>x</script>", nil)
	assert.Equal(t, extractor.Empty, res.Outcome)
}

func TestFeedStrategy_SkipsHTML(t *testing.T) {
	res := extractor.NewFeedStrategy().Extract(context.Background(), articlePage(), nil)
	assert.Equal(t, extractor.Empty, res.Outcome)
}

func TestFeedStrategy_RSS(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Poetry Weekly</title>
  <link>https://example.com</link>
  <description>Poems</description>
  <item>
    <title>Ode to the Sea</title>
    <description><![CDATA[<p>The waves return <b>again</b>.</p>]]></description>
  </item>
  <item>
    <title>Night Walk</title>
    <description>Streetlights hum.</description>
  </item>
</channel></rss>`

	res := extractor.NewFeedStrategy().Extract(context.Background(), rss, nil)
	require.Equal(t, extractor.Extracted, res.Outcome, "err: %v", res.Err)
	assert.True(t, strings.HasPrefix(res.Text, "Poetry Weekly\n\nOde to the Sea\n"), res.Text)
	assert.Contains(t, res.Text, "The waves return")
	assert.NotContains(t, res.Text, "<b>")
	assert.True(t, strings.HasSuffix(res.Text, "Night Walk\nStreetlights hum."), res.Text)
}

func TestFeedStrategy_Atom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Essays</title>
  <entry>
    <title>On Silence</title>
    <content type="html">&lt;p&gt;Silence is a kind of speech.&lt;/p&gt;</content>
  </entry>
</feed>`

	res := extractor.NewFeedStrategy().Extract(context.Background(), atom, nil)
	require.Equal(t, extractor.Extracted, res.Outcome, "err: %v", res.Err)
	assert.Contains(t, res.Text, "On Silence")
	assert.Contains(t, res.Text, "Silence is a kind of speech.")
}
