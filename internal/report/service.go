package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of a submission attempt.
type Status int

const (
	// Accepted means the report was stored.
	Accepted Status = iota

	// Disabled means bug intake is switched off.
	Disabled

	// OnCooldown means the user submitted too recently.
	OnCooldown
)

// Service accepts submissions, enforcing the settings and the cooldown
// gate before handing them to storage. Feedback bypasses the
// allow_bug_reports toggle but not the cooldown.
type Service struct {
	store    Store
	settings *Settings
	gate     *Gate
	now      func() time.Time
}

// NewService creates a Service. The gate's cooldown is synced from the
// settings on creation and after every cooldown change.
func NewService(store Store, settings *Settings, gate *Gate) *Service {
	gate.SetCooldown(time.Duration(settings.CooldownSeconds()) * time.Second)
	return &Service{
		store:    store,
		settings: settings,
		gate:     gate,
		now:      time.Now,
	}
}

// Submit stores one report. The returned remaining duration is only
// meaningful for OnCooldown.
func (s *Service) Submit(ctx context.Context, kind Kind, user, chat, body string) (Status, time.Duration, error) {
	if kind == KindBug && !s.settings.AllowBugReports() {
		return Disabled, 0, nil
	}
	if remaining := s.gate.Remaining(user); remaining > 0 {
		return OnCooldown, remaining, nil
	}
	if !s.gate.Allow(user) {
		return OnCooldown, s.gate.Remaining(user), nil
	}

	r := &Report{
		ID:        uuid.NewString(),
		Kind:      kind,
		User:      user,
		Chat:      chat,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, r); err != nil {
		return Accepted, 0, fmt.Errorf("report: store %s report: %w", kind, err)
	}
	return Accepted, 0, nil
}

// SetAllowBugReports toggles bug intake, persisting the change.
func (s *Service) SetAllowBugReports(allow bool) error {
	return s.settings.SetAllowBugReports(allow)
}

// AllowBugReports reports whether bug intake is enabled.
func (s *Service) AllowBugReports() bool {
	return s.settings.AllowBugReports()
}

// SetCooldownSeconds updates the cooldown window, persisting the change
// and applying it to the gate immediately.
func (s *Service) SetCooldownSeconds(seconds int) error {
	if err := s.settings.SetCooldownSeconds(seconds); err != nil {
		return err
	}
	s.gate.SetCooldown(time.Duration(seconds) * time.Second)
	return nil
}

// CooldownSeconds returns the current cooldown window in seconds.
func (s *Service) CooldownSeconds() int {
	return s.settings.CooldownSeconds()
}

// List returns the most recent reports of a kind, newest first.
func (s *Service) List(ctx context.Context, kind Kind, limit int) ([]*Report, error) {
	return s.store.List(ctx, kind, limit)
}
