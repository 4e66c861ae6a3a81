package faq

import (
	"fmt"
	"time"
)

// Outcome classifies the result of a lifecycle mutation. Expected
// conditions are outcomes, not errors; errors are reserved for I/O
// failures of the underlying store.
type Outcome int

const (
	// OutcomeOK means the mutation succeeded and was persisted.
	OutcomeOK Outcome = iota

	// OutcomeNotFound means no entry owns the given tag.
	OutcomeNotFound

	// OutcomeTagConflict means a tag is reserved or already owned by
	// another entry. The store is left untouched.
	OutcomeTagConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTagConflict:
		return "tag_conflict"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Manager performs the add/edit/remove lifecycle over a Store and its
// recycle archive. Each mutation is a single critical section: check,
// modify, persist under one lock, with in-memory rollback when the
// persist fails.
type Manager struct {
	store   *Store
	recycle *RecycleStore
	now     func() time.Time
}

// NewManager creates a Manager over the given live store and recycle
// archive.
func NewManager(store *Store, recycle *RecycleStore) *Manager {
	return &Manager{
		store:   store,
		recycle: recycle,
		now:     time.Now,
	}
}

// Add normalizes the tags, rejects the insert with OutcomeTagConflict if
// any tag is reserved or already owned by an existing entry, and otherwise
// inserts a new entry stamped with the current time and persists the
// store. On success the returned entry is a copy of what was stored.
func (m *Manager) Add(tags []string, title, description, image string) (*Entry, Outcome, error) {
	norm := NormalizeTags(tags)
	if len(norm) == 0 || title == "" {
		return nil, OutcomeTagConflict, fmt.Errorf("faq: add requires at least one tag and a title")
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, tag := range norm {
		if m.store.IsReserved(tag) || m.store.findLocked(tag) != nil {
			return nil, OutcomeTagConflict, nil
		}
	}

	e := &Entry{
		Tags:             norm,
		Title:            title,
		Description:      description,
		Image:            image,
		ModificationTime: m.now().Unix(),
	}
	m.store.entries = append(m.store.entries, e)

	if err := m.store.saveLocked(); err != nil {
		m.store.entries = removeEntry(m.store.entries, e)
		return nil, OutcomeOK, err
	}
	return e.clone(), OutcomeOK, nil
}

// Edit locates an entry by the first of its old tags, then replaces its
// tags, title, description, and image, refreshing the timestamp. Tags the
// entry already owns are never a conflict with itself; only genuinely new
// tags are checked against the reserved set and the rest of the store.
func (m *Manager) Edit(oldTags, newTags []string, title, description, image string) (*Entry, Outcome, error) {
	oldNorm := NormalizeTags(oldTags)
	norm := NormalizeTags(newTags)
	if len(oldNorm) == 0 {
		return nil, OutcomeNotFound, nil
	}
	if len(norm) == 0 || title == "" {
		return nil, OutcomeTagConflict, fmt.Errorf("faq: edit requires at least one tag and a title")
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	target := m.store.findLocked(oldNorm[0])
	if target == nil {
		return nil, OutcomeNotFound, nil
	}

	for _, tag := range norm {
		if target.HasTag(tag) {
			continue
		}
		if m.store.IsReserved(tag) || m.store.findLocked(tag) != nil {
			return nil, OutcomeTagConflict, nil
		}
	}

	previous := target.clone()
	target.Tags = norm
	target.Title = title
	target.Description = description
	target.Image = image
	target.ModificationTime = m.now().Unix()

	if err := m.store.saveLocked(); err != nil {
		*target = *previous
		return nil, OutcomeOK, err
	}
	return target.clone(), OutcomeOK, nil
}

// Remove locates an entry by tag, archives a snapshot in the recycle
// store first, then deletes the live entry and persists. If archiving
// fails the live store is left untouched; if the live persist fails the
// entry is restored in memory (the archived snapshot remains, which is
// harmless for an append-only bin).
func (m *Manager) Remove(tag string) (*Entry, Outcome, error) {
	norm := NormalizeTag(tag)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	target := m.store.findLocked(norm)
	if target == nil {
		return nil, OutcomeNotFound, nil
	}

	snapshot := target.clone()
	if err := m.recycle.Append(snapshot.clone()); err != nil {
		return nil, OutcomeOK, err
	}

	m.store.entries = removeEntry(m.store.entries, target)
	if err := m.store.saveLocked(); err != nil {
		m.store.entries = append(m.store.entries, target)
		m.store.sortLocked()
		return nil, OutcomeOK, err
	}
	return snapshot, OutcomeOK, nil
}

func removeEntry(entries []*Entry, target *Entry) []*Entry {
	for i, e := range entries {
		if e == target {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}
