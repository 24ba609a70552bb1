// Package history persists the list of completed article lookups as one
// whole-collection snapshot under a named slot.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtnitsch/article-summarizer/models"
)

// DefaultSlot is the slot name the history is stored under.
const DefaultSlot = "articles"

// ErrCorrupt is returned by Load when the stored payload cannot be decoded.
// The accompanying slice is always empty.
var ErrCorrupt = errors.New("history: stored data is corrupt")

// Store loads and saves the full history. Nothing stored yields an empty
// slice and a nil error. SaveAll replaces whatever was stored before.
//
// Records are stored as JSON, so a round trip is exact only for valid UTF-8
// text. Invalid bytes come back as U+FFFD. Summaries and translations are
// decoded from JSON responses and are always valid UTF-8.
type Store interface {
	Load(ctx context.Context) ([]models.Article, error)
	SaveAll(ctx context.Context, articles []models.Article) error
}

func encode(articles []models.Article) ([]byte, error) {
	if articles == nil {
		articles = []models.Article{}
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return nil, fmt.Errorf("history: failed to encode: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]models.Article, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []models.Article{}, nil
	}
	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return []models.Article{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if articles == nil {
		articles = []models.Article{}
	}
	return articles, nil
}
