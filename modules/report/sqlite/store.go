package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/faqbot/faqbot/internal/report"
)

// reportStore implements report.Store backed by SQLite.
type reportStore struct {
	db *sql.DB
}

// Insert stores one report row. CreatedAt is persisted as RFC 3339 UTC.
func (s *reportStore) Insert(ctx context.Context, r *report.Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, kind, user, chat, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Kind), r.User, r.Chat, r.Body, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert report %s: %w", r.ID, err)
	}
	return nil
}

// List returns the most recent reports of a kind, newest first.
func (s *reportStore) List(ctx context.Context, kind report.Kind, limit int) ([]*report.Report, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, user, chat, body, created_at FROM reports
		 WHERE kind = ? ORDER BY created_at DESC LIMIT ?`,
		string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %s reports: %w", kind, err)
	}
	defer rows.Close()

	var out []*report.Report
	for rows.Next() {
		var r report.Report
		var kindStr, createdAt string
		if err := rows.Scan(&r.ID, &kindStr, &r.User, &r.Chat, &r.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan report: %w", err)
		}
		r.Kind = report.Kind(kindStr)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate reports: %w", err)
	}
	return out, nil
}
