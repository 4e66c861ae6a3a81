// Package report implements bug and feedback intake: a per-user cooldown
// gate, runtime-mutable settings that survive restarts, and the submit
// service in front of the storage module.
package report

import (
	"context"
	"time"
)

// Kind distinguishes the two intake streams.
type Kind string

const (
	KindBug      Kind = "bug"
	KindFeedback Kind = "feedback"
)

// Report is one persisted submission.
type Report struct {
	ID        string
	Kind      Kind
	User      string
	Chat      string
	Body      string
	CreatedAt time.Time
}

// Store persists submissions. Implemented by the SQLite report module.
type Store interface {
	Insert(ctx context.Context, r *Report) error
	List(ctx context.Context, kind Kind, limit int) ([]*Report, error)
}
