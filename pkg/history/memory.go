package history

import (
	"context"
	"sync"

	"github.com/dtnitsch/article-summarizer/models"
)

// MemoryStore keeps the encoded snapshot in memory. It goes through the
// same encoding as the persistent stores.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(m.data)
}

func (m *MemoryStore) SaveAll(ctx context.Context, articles []models.Article) error {
	data, err := encode(articles)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}
