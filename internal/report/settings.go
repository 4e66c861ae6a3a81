package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const defaultCooldownSeconds = 300

// Settings are the runtime-mutable report options. Toggling them through
// the management commands persists immediately, so they survive restarts.
type Settings struct {
	mu   sync.Mutex
	path string

	allowBugReports bool
	cooldownSeconds int
}

type settingsFile struct {
	AllowBugReports   bool `json:"allow_bug_reports"`
	BugReportCooldown int  `json:"bug_report_cooldown"`
}

// NewSettings creates Settings persisted at path. Call Load before use.
func NewSettings(path string) *Settings {
	return &Settings{
		path:            path,
		allowBugReports: true,
		cooldownSeconds: defaultCooldownSeconds,
	}
}

// SeedAllowBugReports overrides the built-in bug-report default before
// Load. A value persisted in the settings file still wins.
func (s *Settings) SeedAllowBugReports(allow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowBugReports = allow
}

// SeedCooldownSeconds overrides the built-in cooldown default before
// Load, same precedence as SeedAllowBugReports. Negative values are
// ignored.
func (s *Settings) SeedCooldownSeconds(seconds int) {
	if seconds < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldownSeconds = seconds
}

// Load reads the persisted settings. A missing file keeps the defaults
// and writes them out. Unknown keys in the file are ignored; missing
// keys keep their defaults.
func (s *Settings) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("report: reading %s: %w", s.path, err)
	}

	file := settingsFile{
		AllowBugReports:   s.allowBugReports,
		BugReportCooldown: s.cooldownSeconds,
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("report: parse %s: %w", s.path, err)
	}

	s.allowBugReports = file.AllowBugReports
	if file.BugReportCooldown >= 0 {
		s.cooldownSeconds = file.BugReportCooldown
	}
	return nil
}

// AllowBugReports reports whether bug intake is currently enabled.
func (s *Settings) AllowBugReports() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowBugReports
}

// SetAllowBugReports toggles bug intake and persists.
func (s *Settings) SetAllowBugReports(allow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowBugReports = allow
	return s.saveLocked()
}

// CooldownSeconds returns the per-user cooldown in seconds.
func (s *Settings) CooldownSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldownSeconds
}

// SetCooldownSeconds updates the cooldown and persists. Negative values
// are rejected.
func (s *Settings) SetCooldownSeconds(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("report: cooldown must be non-negative, got %d", seconds)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldownSeconds = seconds
	return s.saveLocked()
}

func (s *Settings) saveLocked() error {
	data, err := json.MarshalIndent(settingsFile{
		AllowBugReports:   s.allowBugReports,
		BugReportCooldown: s.cooldownSeconds,
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("report: marshal settings: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("report: create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("report: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("report: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("report: rename %s: %w", tmpName, err)
	}
	return nil
}
