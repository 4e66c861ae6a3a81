package cron

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// CooldownPruner is the subset of report.Gate needed by cron jobs.
// Defined here to avoid a circular dependency on the report package.
type CooldownPruner interface {
	Prune() int
}

// StoreBackupJob copies the FAQ store file into a timestamped backup and
// trims old backups beyond Keep.
type StoreBackupJob struct {
	Source       string // path of the live FAQ store file
	Dir          string // backup directory, created on first run
	Keep         int    // backups to retain; <= 0 means keep 7
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 4 * * *"

	now func() time.Time // test seam
}

// Compile-time interface check.
var _ Job = (*StoreBackupJob)(nil)

// Name implements Job.
func (j *StoreBackupJob) Name() string { return "store_backup" }

// Schedule implements Job.
func (j *StoreBackupJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 4 * * *"
}

// Run copies the store file and prunes stale backups.
func (j *StoreBackupJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: store backup cancelled: %w", ctx.Err())
	}

	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return fmt.Errorf("cron: creating backup dir: %w", err)
	}

	clock := j.now
	if clock == nil {
		clock = time.Now
	}
	stamp := clock().UTC().Format("20060102-150405")
	dst := filepath.Join(j.Dir, "faq-"+stamp+".json")

	if err := copyFile(j.Source, dst); err != nil {
		return fmt.Errorf("cron: backing up store: %w", err)
	}
	j.Logger.Info("cron: store backed up", "dest", dst)

	removed, err := j.trim()
	if err != nil {
		return err
	}
	if removed > 0 {
		j.Logger.Info("cron: pruned old backups", "count", removed)
	}
	return nil
}

// trim removes the oldest backups beyond the retention count.
func (j *StoreBackupJob) trim() (int, error) {
	keep := j.Keep
	if keep <= 0 {
		keep = 7
	}

	names, err := filepath.Glob(filepath.Join(j.Dir, "faq-*.json"))
	if err != nil {
		return 0, fmt.Errorf("cron: listing backups: %w", err)
	}
	if len(names) <= keep {
		return 0, nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(names)
	stale := names[:len(names)-keep]
	for _, name := range stale {
		if err := os.Remove(name); err != nil {
			return 0, fmt.Errorf("cron: removing backup %s: %w", name, err)
		}
	}
	return len(stale), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

// CooldownPruneJob drops expired report cooldown stamps so the gate's map
// does not grow with every user who ever filed a report.
type CooldownPruneJob struct {
	Gate         CooldownPruner
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"
}

// Compile-time interface check.
var _ Job = (*CooldownPruneJob)(nil)

// Name implements Job.
func (j *CooldownPruneJob) Name() string { return "cooldown_prune" }

// Schedule implements Job.
func (j *CooldownPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run prunes expired cooldown stamps.
func (j *CooldownPruneJob) Run(_ context.Context) error {
	pruned := j.Gate.Prune()
	if pruned > 0 {
		j.Logger.Info("cron: pruned expired cooldowns", "count", pruned)
	}
	return nil
}
