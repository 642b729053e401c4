package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"influence-tracker/internal/models"
)

// StaleAfter is how old a post may be before upsert drops it when ignoring old posts.
const StaleAfter = 7 * 24 * time.Hour

const storeFileName = "posts.json"

// PostStore keeps every analyzed post in a single JSON file. It is the only
// writer of that file: Upsert appends, Clear wipes, nothing else mutates it.
type PostStore struct {
	filePath string
	mu       sync.Mutex
	now      func() time.Time
}

// NewPostStore creates the data directory if needed and returns a store backed by
// <dataDir>/posts.json.
func NewPostStore(dataDir string) (*PostStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &PostStore{
		filePath: filepath.Join(dataDir, storeFileName),
		now:      time.Now,
	}, nil
}

// Path returns the location of the backing file.
func (s *PostStore) Path() string {
	return s.filePath
}

// Load reads the persisted store. A missing, unreadable or corrupt file yields
// an empty store; the error is logged and never returned.
func (s *PostStore) Load() *models.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *PostStore) load() *models.Store {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Failed to read post store %s, starting empty: %v", s.filePath, err)
		}
		return models.NewStore()
	}

	store := models.NewStore()
	if err := json.Unmarshal(data, store); err != nil {
		log.Printf("Warning: Post store %s is corrupt, starting empty: %v", s.filePath, err)
		return models.NewStore()
	}
	if store.Posts == nil {
		store.Posts = []models.Post{}
	}

	return store
}

// Save recomputes the metadata and persists the store.
func (s *PostStore) Save(store *models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(store)
}

// save writes to a temp file next to the target and renames it into place so
// a failed write never leaves a half-written store behind.
func (s *PostStore) save(store *models.Store) error {
	if store.Posts == nil {
		store.Posts = []models.Post{}
	}
	store.Meta.TotalPosts = len(store.Posts)
	store.Meta.LastUpdated = stamp(s.now())

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode post store: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, storeFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write post store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync post store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close post store: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace post store: %w", err)
	}
	return nil
}

// Upsert appends the posts whose IDs are not yet stored. With ignoreOld, posts
// published more than StaleAfter ago are skipped too; posts whose date cannot
// be parsed are always kept.
func (s *PostStore) Upsert(posts []models.Post, ignoreOld bool) (models.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.load()
	now := s.now()
	cutoff := now.Add(-StaleAfter)

	seen := make(map[string]struct{}, len(store.Posts)+len(posts))
	for _, p := range store.Posts {
		seen[p.PostID] = struct{}{}
	}

	var result models.UpsertResult
	for _, post := range posts {
		if _, dup := seen[post.PostID]; dup {
			result.Skipped++
			continue
		}

		if ignoreOld {
			if published, ok := post.PublishedTime(); ok && published.Before(cutoff) {
				result.Skipped++
				continue
			}
		}

		seen[post.PostID] = struct{}{}
		store.Posts = append(store.Posts, post)
		result.Added++
	}

	store.Meta.LastRun = stamp(now)

	if err := s.save(store); err != nil {
		return result, fmt.Errorf("failed to save post store: %w", err)
	}

	if result.Skipped > 0 {
		log.Printf("Skipped %d duplicate/old posts", result.Skipped)
	}

	return result, nil
}

// Recent returns posts published within the last hours hours, in store order.
// Posts with an unparseable publish date are included.
func (s *PostStore) Recent(hours int) []models.Post {
	store := s.Load()
	cutoff := s.now().Add(-time.Duration(hours) * time.Hour)

	recent := make([]models.Post, 0, len(store.Posts))
	for _, post := range store.Posts {
		published, ok := post.PublishedTime()
		if ok && published.Before(cutoff) {
			continue
		}
		recent = append(recent, post)
	}

	return recent
}

// Clear deletes the persisted store. It reports whether a file was removed;
// clearing an empty store is not an error.
func (s *PostStore) Clear() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove post store: %w", err)
	}
	return true, nil
}

func stamp(t time.Time) *string {
	s := t.Format(time.RFC3339Nano)
	return &s
}
