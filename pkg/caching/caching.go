// Package caching is a small file-backed cache with a TTL, keyed by URL.
package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Cache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewCache creates a Cache rooted at path, creating the directory if needed.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

func (c *Cache) file(key string) string {
	return filepath.Join(c.path, fmt.Sprintf("%x", sha256.Sum256([]byte(key))))
}

// Get returns the entry for key if it exists and has not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	filePath := c.file(key)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data under key. The write goes through a temp file so a reader
// never sees a partial entry.
func (c *Cache) Set(key string, data []byte) error {
	tmp, err := os.CreateTemp(c.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.file(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
