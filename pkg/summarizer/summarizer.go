// Package summarizer turns an article URL into summary text.
package summarizer

import "context"

// Summarizer returns the summary of the article at articleURL. An empty
// summary with a nil error means the service had nothing to say.
type Summarizer interface {
	Summarize(ctx context.Context, articleURL string) (string, error)
}
