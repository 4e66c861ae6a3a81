package faq

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Sentinel errors for store operations.
var (
	// ErrCorruptData indicates the persisted file exists but does not parse
	// as a FAQ entry array. The store fails loudly instead of silently
	// bootstrapping an empty collection over unreadable data.
	ErrCorruptData = errors.New("faq: corrupt data file")
)

const defaultCacheTTL = 60 * time.Second

// defaultReserved are words that can never be assigned as tags because the
// command surface claims them.
var defaultReserved = []string{"list", "all", "faqs", "help"}

// StoreOptions tunes a Store.
type StoreOptions struct {
	// Reserved words that can never become tags. Nil means the default set.
	Reserved []string

	// CacheTTL bounds the staleness of AllTags projections. Zero or
	// negative disables the cache. Defaults to 60 s when unset via
	// NewStore.
	CacheTTL time.Duration
}

// Store is the mutable, mutex-guarded collection of FAQ entries backed by a
// single JSON file. Entries are kept sorted by title; every tag is unique
// across the whole store.
type Store struct {
	mu       sync.RWMutex
	path     string
	entries  []*Entry
	reserved map[string]struct{}
	cache    *tagCache
}

// NewStore creates a Store for the given file path. Call Load before use.
func NewStore(path string, opts StoreOptions) *Store {
	reserved := opts.Reserved
	if reserved == nil {
		reserved = defaultReserved
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	rs := make(map[string]struct{}, len(reserved))
	for _, w := range reserved {
		rs[NormalizeTag(w)] = struct{}{}
	}

	return &Store{
		path:     path,
		reserved: rs,
		cache:    newTagCache(ttl),
	}
}

// Load reads the persisted entries. A missing file bootstraps an empty
// store and creates an empty persisted array. Malformed content returns
// ErrCorruptData; unreadable files return the wrapped I/O error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.entries = nil
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("faq: reading %s: %w", s.path, err)
	}

	var entries []*Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptData, s.path, err)
	}

	for i, e := range entries {
		if e == nil || e.Title == "" || len(e.Tags) == 0 {
			return fmt.Errorf("%w: %s: entry %d missing title or tags", ErrCorruptData, s.path, i)
		}
		e.Tags = NormalizeTags(e.Tags)
	}

	s.entries = entries
	s.sortLocked()
	return nil
}

// Save atomically rewrites the persisted file with the full collection,
// pretty-printed and sorted by title.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked sorts, marshals, and writes via temp-file-then-rename so a
// crash mid-write never truncates the live file. Caller holds the lock.
func (s *Store) saveLocked() error {
	s.sortLocked()

	entries := s.entries
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("faq: marshal entries: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(s.path, data)
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Title < s.entries[j].Title
	})
}

// FindByTag returns a copy of the entry owning the exact tag, or nil.
func (s *Store) FindByTag(tag string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e := s.findLocked(tag); e != nil {
		return e.clone()
	}
	return nil
}

func (s *Store) findLocked(tag string) *Entry {
	for _, e := range s.entries {
		if e.HasTag(tag) {
			return e
		}
	}
	return nil
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns copies of all live entries in title order.
func (s *Store) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// IsReserved reports whether the normalized word can never become a tag.
func (s *Store) IsReserved(tag string) bool {
	_, ok := s.reserved[NormalizeTag(tag)]
	return ok
}

// AllTags returns the sorted list of every tag across every entry (one
// element per tag, not deduplicated per entry), sliced by offset and
// limit. limit -1 means no limit; out-of-range values are clamped.
// Results are cached per (limit, offset) for the store's cache TTL.
func (s *Store) AllTags(limit, offset int) []string {
	if limit < -1 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	key := tagKey{limit: limit, offset: offset}
	if tags, ok := s.cache.get(key); ok {
		return tags
	}

	s.mu.RLock()
	var tags []string
	for _, e := range s.entries {
		tags = append(tags, e.Tags...)
	}
	s.mu.RUnlock()

	sort.Strings(tags)

	if limit != -1 {
		if offset >= len(tags) {
			tags = nil
		} else {
			end := min(offset+limit, len(tags))
			tags = tags[offset:end]
		}
	}

	s.cache.put(key, tags)
	return tags
}

// Path returns the persisted file path (used by the download surface).
func (s *Store) Path() string {
	return s.path
}

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("faq: create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("faq: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("faq: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("faq: rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
