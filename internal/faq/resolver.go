package faq

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Resolver tuning constants. Distances are "lower is better" on a 0–100
// scale derived from Levenshtein similarity, with fixed reductions when
// the query appears verbatim inside an entry's title or description.
const (
	// distanceFloor is the threshold a candidate must beat for the
	// single-result form to return it.
	distanceFloor = 75

	// titleBoost is subtracted from an entry's distance when the query is
	// a case-insensitive substring of its title.
	titleBoost = 40

	// descriptionBoost is subtracted when the query appears inside the
	// entry's description.
	descriptionBoost = 20

	// maxCandidates caps the multi-result form.
	maxCandidates = 8
)

// Resolver maps a free-text query to the best-matching entry, or a ranked
// candidate list. It has no side effects and is deterministic for a fixed
// store state: ties keep store (title) order via stable sorting.
type Resolver struct {
	store *Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

type scored struct {
	entry    *Entry
	distance int
}

// Resolve returns the single best-matching entry for the query, or nil if
// nothing clears the distance floor and no containment fallback applies.
// An exact tag match always wins and short-circuits the fuzzy pass.
func (r *Resolver) Resolve(query string) *Entry {
	norm := NormalizeTag(query)
	if norm == "" {
		return nil
	}

	if e := r.store.FindByTag(norm); e != nil {
		return e
	}

	candidates := r.score(norm)
	if len(candidates) > 0 && candidates[0].distance < distanceFloor {
		return candidates[0].entry
	}

	// Containment fallback: title first, then description.
	text := strings.ToLower(strings.ReplaceAll(norm, "-", " "))
	entries := r.store.Entries()
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), text) {
			return e
		}
	}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Description), text) {
			return e
		}
	}
	return nil
}

// ResolveMany returns up to n entries ranked by ascending distance. No
// floor applies: the best available candidates are always returned, even
// when every match is weak.
func (r *Resolver) ResolveMany(query string, n int) []*Entry {
	norm := NormalizeTag(query)
	if norm == "" || n <= 0 {
		return nil
	}
	if n > maxCandidates {
		n = maxCandidates
	}

	candidates := r.score(norm)
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]*Entry, len(candidates))
	for i, c := range candidates {
		out[i] = c.entry
	}
	return out
}

// score computes one distance per entry: the best (lowest) tag distance,
// reduced by fixed boosts for title and description containment. Multiple
// matching tags never stack — only the single best counts.
func (r *Resolver) score(norm string) []scored {
	text := strings.ToLower(strings.ReplaceAll(norm, "-", " "))

	entries := r.store.Entries()
	candidates := make([]scored, 0, len(entries))

	for _, e := range entries {
		best := 100
		for _, tag := range e.Tags {
			if d := 100 - similarity(tag, norm); d < best {
				best = d
			}
		}

		if strings.Contains(strings.ToLower(e.Title), text) {
			best -= titleBoost
		}
		if strings.Contains(strings.ToLower(e.Description), text) {
			best -= descriptionBoost
		}

		candidates = append(candidates, scored{entry: e, distance: best})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	return candidates
}

// similarity is a Levenshtein ratio on a 0–100 scale: 100 for identical
// strings, decreasing with edit distance normalized by the longer length.
func similarity(a, b string) int {
	if a == b {
		return 100
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 - (100*d)/longest
}
