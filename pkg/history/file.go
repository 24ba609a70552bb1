package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtnitsch/article-summarizer/models"
)

// FileStore keeps the snapshot as a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) ([]models.Article, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Article{}, nil
		}
		return []models.Article{}, fmt.Errorf("history: error reading file: %w", err)
	}
	return decode(data)
}

func (s *FileStore) SaveAll(ctx context.Context, articles []models.Article) error {
	data, err := encode(articles)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("history: error creating directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("history: error saving file: %w", err)
	}
	return nil
}
