package cron

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// testPruner implements CooldownPruner for job tests.
type testPruner struct {
	calls atomic.Int32
	count int
}

func (p *testPruner) Prune() int {
	p.calls.Add(1)
	return p.count
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestStoreBackupJob_Defaults(t *testing.T) {
	t.Parallel()
	j := &StoreBackupJob{Logger: slog.Default()}
	if j.Name() != "store_backup" {
		t.Errorf("name = %q, want %q", j.Name(), "store_backup")
	}
	if j.Schedule() != "0 4 * * *" {
		t.Errorf("schedule = %q, want %q", j.Schedule(), "0 4 * * *")
	}
}

func TestStoreBackupJob_Run(t *testing.T) {
	t.Parallel()

	src := writeSource(t, `[{"title":"Setup","tags":["setup"]}]`)
	dir := filepath.Join(t.TempDir(), "backups")

	j := &StoreBackupJob{
		Source: src,
		Dir:    dir,
		Logger: slog.Default(),
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names, err := filepath.Glob(filepath.Join(dir, "faq-*.json"))
	if err != nil || len(names) != 1 {
		t.Fatalf("backups = %v (err %v), want exactly one", names, err)
	}

	got, err := os.ReadFile(names[0])
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(got) != `[{"title":"Setup","tags":["setup"]}]` {
		t.Errorf("backup content mismatch: %s", got)
	}
}

func TestStoreBackupJob_TrimsOldBackups(t *testing.T) {
	t.Parallel()

	src := writeSource(t, `[]`)
	dir := t.TempDir()

	// Pre-seed more backups than the retention count, oldest first.
	stamps := []string{
		"20240101-000000", "20240102-000000", "20240103-000000",
		"20240104-000000", "20240105-000000",
	}
	for _, s := range stamps {
		name := filepath.Join(dir, "faq-"+s+".json")
		if err := os.WriteFile(name, []byte("[]"), 0o644); err != nil {
			t.Fatalf("seed backup: %v", err)
		}
	}

	j := &StoreBackupJob{
		Source: src,
		Dir:    dir,
		Keep:   3,
		Logger: slog.Default(),
		now:    func() time.Time { return time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC) },
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names, _ := filepath.Glob(filepath.Join(dir, "faq-*.json"))
	if len(names) != 3 {
		t.Fatalf("backups after trim = %d, want 3: %v", len(names), names)
	}

	// The newest seeds and the fresh backup survive.
	for _, name := range names {
		base := filepath.Base(name)
		if base == "faq-20240101-000000.json" || base == "faq-20240102-000000.json" {
			t.Errorf("stale backup %s survived trim", base)
		}
	}
}

func TestStoreBackupJob_MissingSource(t *testing.T) {
	t.Parallel()

	j := &StoreBackupJob{
		Source: filepath.Join(t.TempDir(), "absent.json"),
		Dir:    t.TempDir(),
		Logger: slog.Default(),
	}

	if err := j.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestStoreBackupJob_CancelledContext(t *testing.T) {
	t.Parallel()

	j := &StoreBackupJob{Source: "x", Dir: t.TempDir(), Logger: slog.Default()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCooldownPruneJob(t *testing.T) {
	t.Parallel()

	pruner := &testPruner{count: 2}
	j := &CooldownPruneJob{Gate: pruner, Logger: slog.Default()}

	if j.Name() != "cooldown_prune" {
		t.Errorf("name = %q, want %q", j.Name(), "cooldown_prune")
	}
	if j.Schedule() != "0 * * * *" {
		t.Errorf("schedule = %q, want %q", j.Schedule(), "0 * * * *")
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pruner.calls.Load() != 1 {
		t.Errorf("prune calls = %d, want 1", pruner.calls.Load())
	}
}
