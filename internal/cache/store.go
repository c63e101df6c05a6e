package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DocumentStore persists annotated documents under
// <dir>/<TYPE>/<entity>/<entity>.custom.<n>.json with a per-entity
// sequential index n that continues after files already on disk
type DocumentStore struct {
	dir string

	mu   sync.Mutex
	next map[string]int
}

// Entry is the on-disk envelope of a stored document
type Entry struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	EntityType string          `json:"entity_type"`
	Index      int             `json:"index"`
	CreatedAt  time.Time       `json:"created_at"`
	Data       json.RawMessage `json:"data"`
}

// NewDocumentStore creates a store rooted at dir
func NewDocumentStore(dir string) *DocumentStore {
	return &DocumentStore{
		dir:  dir,
		next: make(map[string]int),
	}
}

// Save writes payload (JSON) for entity and returns the file path
func (s *DocumentStore) Save(entity, entityType string, payload []byte) (string, error) {
	name := safeName(entity)
	dir := filepath.Join(s.dir, entityType, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := entityType + ":" + entity
	idx, ok := s.next[key]
	if !ok {
		var err error
		if idx, err = nextFreeIndex(dir, name); err != nil {
			return "", err
		}
	}

	entry := Entry{
		ID:         uuid.NewString(),
		Entity:     entity,
		EntityType: entityType,
		CreatedAt:  time.Now().UTC(),
		Data:       payload,
	}

	for {
		entry.Index = idx
		path := filepath.Join(dir, fmt.Sprintf("%s.custom.%d.json", name, idx))
		err := writeExclusive(path, entry)
		if errors.Is(err, os.ErrExist) {
			idx++
			continue
		}
		if err != nil {
			return "", err
		}
		s.next[key] = idx + 1
		return path, nil
	}
}

// Load reads an entry written by Save
func (s *DocumentStore) Load(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

func writeExclusive(path string, entry Entry) (err error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close cache file: %w", closeErr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// nextFreeIndex scans dir for name.custom.<n>.json and returns max n + 1
func nextFreeIndex(dir, name string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scan cache dir: %w", err)
	}
	prefix := name + ".custom."
	next := 0
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(rest, ".json"))
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return next, nil
}

// safeName sanitizes an entity name for use as a file name
func safeName(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
