package faq

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// RecycleStore is the append-only archive of deleted entries. Snapshots
// land here before the live entry is removed, so a delete is always
// recoverable by hand. Nothing ever reads entries back automatically.
type RecycleStore struct {
	mu      sync.Mutex
	path    string
	entries []*Entry
}

// NewRecycleStore creates a RecycleStore for the given file path.
// Call Load before use.
func NewRecycleStore(path string) *RecycleStore {
	return &RecycleStore{path: path}
}

// Load reads the persisted archive, creating an empty file if absent.
// Malformed content returns ErrCorruptData.
func (r *RecycleStore) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.entries = nil
		return r.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("faq: reading %s: %w", r.path, err)
	}

	var entries []*Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptData, r.path, err)
	}

	r.entries = entries
	return nil
}

// Append archives a snapshot and persists the archive. The snapshot is
// stored as given; callers pass a copy, never a live store pointer.
func (r *RecycleStore) Append(e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e)
	if err := r.saveLocked(); err != nil {
		r.entries = r.entries[:len(r.entries)-1]
		return err
	}
	return nil
}

// Entries returns copies of all archived snapshots in append order.
func (r *RecycleStore) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of archived snapshots.
func (r *RecycleStore) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *RecycleStore) saveLocked() error {
	entries := r.entries
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("faq: marshal recycle entries: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(r.path, data)
}
