// Package faq implements the FAQ entry store, the fuzzy resolver, the
// entry lifecycle manager, and the paginated tag lister. The store owns
// all entries; every mutation goes through the Manager and persists the
// full collection.
package faq

import (
	"slices"
	"strings"
)

// Entry is one FAQ record. Tags are normalized (lowercase, hyphenated)
// and unique across the whole store. ModificationTime is unix seconds;
// 0 means the entry has never been stamped (display only).
type Entry struct {
	Tags             []string `json:"tags"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Image            string   `json:"image,omitempty"`
	ModificationTime int64    `json:"modification_time"`
}

// HasTag reports whether the entry owns the given tag (exact match).
func (e *Entry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// DisplayTag returns the longest tag of the entry, favoring readability
// in tag listings. Ties resolve to the earlier tag.
func (e *Entry) DisplayTag() string {
	best := ""
	for _, t := range e.Tags {
		if len(t) > len(best) {
			best = t
		}
	}
	return best
}

// clone returns a deep copy so callers never hold a mutable reference
// into the store.
func (e *Entry) clone() *Entry {
	cp := *e
	cp.Tags = slices.Clone(e.Tags)
	return &cp
}

// NormalizeTag canonicalizes a tag or free-text query: trimmed,
// internal spaces replaced with hyphens, lowercased.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// NormalizeTags canonicalizes every tag, dropping empties and duplicates
// while preserving order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
