package summarizer

import (
	"context"
	"log/slog"

	"github.com/dtnitsch/article-summarizer/pkg/caching"
)

// CachedSummarizer serves repeated URLs from a local cache instead of
// calling the wrapped Summarizer again. Failures and empty summaries are
// never cached.
type CachedSummarizer struct {
	next   Summarizer
	cache  *caching.Cache
	logger *slog.Logger
}

func NewCachedSummarizer(next Summarizer, cache *caching.Cache, logger *slog.Logger) *CachedSummarizer {
	return &CachedSummarizer{next: next, cache: cache, logger: logger}
}

func (s *CachedSummarizer) Summarize(ctx context.Context, articleURL string) (string, error) {
	if data, ok := s.cache.Get(articleURL); ok {
		s.logger.Debug("summary cache hit", "url", articleURL)
		return string(data), nil
	}

	summary, err := s.next.Summarize(ctx, articleURL)
	if err != nil || summary == "" {
		return summary, err
	}

	if err := s.cache.Set(articleURL, []byte(summary)); err != nil {
		s.logger.Warn("failed to cache summary", "url", articleURL, "error", err)
	}
	return summary, nil
}
