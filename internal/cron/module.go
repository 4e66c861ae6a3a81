package cron

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/faqbot/faqbot/internal/core"
	"github.com/faqbot/faqbot/internal/faq"
	"github.com/faqbot/faqbot/internal/report"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config holds scheduler configuration.
type Config struct {
	BackupDir      string `yaml:"backup_dir"`
	BackupKeep     int    `yaml:"backup_keep"`
	BackupSchedule string `yaml:"backup_schedule"`
	PruneSchedule  string `yaml:"prune_schedule"`
}

// Module runs the periodic maintenance jobs. It resolves the FAQ store and
// report gate from the service registry at Start, so it degrades to a no-op
// scheduler when neither is present.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	scheduler *Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.scheduler = NewScheduler(ctx.Logger)
	if m.config.BackupDir == "" {
		m.config.BackupDir = filepath.Join(ctx.DataDir, "backups")
	}
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	if svc, ok := m.appCtx.Service("faq.store"); ok {
		store, ok := svc.(*faq.Store)
		if !ok {
			return errors.New("cron: faq.store service has unexpected type")
		}
		err := m.scheduler.RegisterJob(&StoreBackupJob{
			Source:       store.Path(),
			Dir:          m.config.BackupDir,
			Keep:         m.config.BackupKeep,
			Logger:       m.logger,
			ScheduleExpr: m.config.BackupSchedule,
		})
		if err != nil {
			return err
		}
	}

	if svc, ok := m.appCtx.Service("report.gate"); ok {
		gate, ok := svc.(*report.Gate)
		if !ok {
			return errors.New("cron: report.gate service has unexpected type")
		}
		err := m.scheduler.RegisterJob(&CooldownPruneJob{
			Gate:         gate,
			Logger:       m.logger,
			ScheduleExpr: m.config.PruneSchedule,
		})
		if err != nil {
			return err
		}
	}

	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}

// Interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)
