// Package caching keeps global tallies of unchanged datasets on disk so a repeated
// run can skip the scan.
package caching

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/MrDoghead/COMP90024-project1/models"
)

// Cache provides a simple file-based cache with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// DatasetKey identifies a dataset's content and every setting that changes its tally.
// The worker count is not part of it: the global tally does not depend on it.
func DatasetKey(dataset string, size int64, modTime time.Time, trim string, detectLanguage bool) string {
	abs, err := filepath.Abs(dataset)
	if err != nil {
		abs = dataset
	}
	return abs + "|" + strconv.FormatInt(size, 10) + "|" + strconv.FormatInt(modTime.UnixNano(), 10) +
		"|" + trim + "|" + strconv.FormatBool(detectLanguage)
}

// key generates a SHA256 hash of the dataset key to use as a filename.
func (c *Cache) key(k string) string {
	hash := sha256.Sum256([]byte(k))
	return fmt.Sprintf("%x.json", hash)
}

// Get retrieves a tally from the cache.
// It returns the tally and true if the item is found, not expired and decodable.
func (c *Cache) Get(k string) (*models.Tally, bool) {
	filePath := filepath.Join(c.path, c.key(k))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false // Cache miss
	}

	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false // Cache miss (expired)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false // Cache miss (read error)
	}

	t := models.NewTally()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, false // Cache miss (corrupt entry)
	}
	if t.Hashtags == nil {
		t.Hashtags = make(models.FrequencyMap)
	}
	if t.Languages == nil {
		t.Languages = make(models.FrequencyMap)
	}
	return t, true // Cache hit
}

// Set adds a tally to the cache.
func (c *Cache) Set(k string, t *models.Tally) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tally: %w", err)
	}
	filePath := filepath.Join(c.path, c.key(k))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
