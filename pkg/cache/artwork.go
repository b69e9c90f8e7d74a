package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketArtwork = []byte("artwork")

// ArtworkCache keeps processed podcast artwork between runs so each podcast's
// image is fetched once. With an empty path it only caches in memory.
type ArtworkCache struct {
	db *bolt.DB

	mu  sync.RWMutex
	mem map[string][]byte
}

func OpenArtworkCache(path string) (*ArtworkCache, error) {
	c := &ArtworkCache{mem: make(map[string][]byte)}
	if path == "" {
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketArtwork)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	c.db = db
	return c, nil
}

func (c *ArtworkCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached artwork for a podcast.
func (c *ArtworkCache) Get(podcastID string) ([]byte, bool) {
	c.mu.RLock()
	data, ok := c.mem[podcastID]
	c.mu.RUnlock()
	if ok {
		return data, true
	}
	if c.db == nil {
		return nil, false
	}

	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketArtwork).Get([]byte(podcastID))
		if v != nil {
			// bolt values are only valid inside the transaction
			data = bytes.Clone(v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, false
	}

	c.mu.Lock()
	c.mem[podcastID] = data
	c.mu.Unlock()
	return data, true
}

// Put stores artwork for a podcast.
func (c *ArtworkCache) Put(podcastID string, data []byte) error {
	if podcastID == "" || len(data) == 0 {
		return nil
	}

	c.mu.Lock()
	c.mem[podcastID] = data
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketArtwork).Put([]byte(podcastID), data)
	})
}

// Clear drops every cached entry.
func (c *ArtworkCache) Clear() error {
	c.mu.Lock()
	c.mem = make(map[string][]byte)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketArtwork); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketArtwork)
		return err
	})
}
