package summarizer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/article-summarizer/pkg/fetcher"
	"github.com/go-shiori/go-readability"
)

// ReadabilitySummarizer builds an extractive summary locally: it fetches the
// page, lets go-readability find the main content and keeps the leading
// paragraphs. Paragraphs are separated by a blank line, like the remote API.
type ReadabilitySummarizer struct {
	fetcher       *fetcher.Fetcher
	maxParagraphs int
}

func NewReadabilitySummarizer(f *fetcher.Fetcher, maxParagraphs int) *ReadabilitySummarizer {
	if maxParagraphs <= 0 {
		maxParagraphs = 3
	}
	return &ReadabilitySummarizer{fetcher: f, maxParagraphs: maxParagraphs}
}

func (s *ReadabilitySummarizer) Summarize(ctx context.Context, articleURL string) (string, error) {
	parsedURL, err := url.Parse(articleURL)
	if err != nil {
		return "", fmt.Errorf("readability: invalid URL: %w", err)
	}

	html, err := s.fetcher.GetHtmlBytes(ctx, articleURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(html), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: failed to extract article: %w", err)
	}

	paragraphs, err := leadingParagraphs(article.Content, s.maxParagraphs)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	if len(paragraphs) == 0 {
		return normalizeText(article.Excerpt), nil
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// leadingParagraphs returns up to max non-empty <p> texts from content.
func leadingParagraphs(content string, max int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article content: %w", err)
	}

	var out []string
	doc.Find("p").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := normalizeText(sel.Text())
		if text != "" {
			out = append(out, text)
		}
		return len(out) < max
	})
	return out, nil
}

// normalizeText collapses a block of text onto one line.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
