// Package bot implements the command surface: it consumes inbound
// messages from channels, routes them through the session broker and the
// command handlers, and produces replies via the dispatcher.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/faqbot/faqbot/internal/channel"
	"github.com/faqbot/faqbot/internal/core"
	"github.com/faqbot/faqbot/internal/faq"
	"github.com/faqbot/faqbot/internal/report"
	"github.com/faqbot/faqbot/internal/session"
	"github.com/faqbot/faqbot/internal/wiki"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module is the bot core. It owns the FAQ store and its collaborators,
// and publishes the dispatcher and inbox services that channel modules
// attach to.
type Module struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext

	store      *faq.Store
	recycle    *faq.RecycleStore
	manager    *faq.Manager
	resolver   *faq.Resolver
	lister     *faq.Lister
	broker     *session.Broker
	flows      *session.Flows
	allow      *channel.AllowList
	dispatcher *channel.Dispatcher
	search     *wiki.Client
	results    *wiki.ResultCache
	settings   *report.Settings
	gate       *report.Gate
	reports    *report.Service

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "bot",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("bot: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It builds the FAQ collaborators
// and publishes "channel.dispatcher" and "bot.inbox" for channel modules,
// plus "faq.store" and "report.gate" for the gateway and scheduler.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	m.appCtx = ctx

	if m.config.FAQFile == "" {
		m.config.FAQFile = filepath.Join(ctx.DataDir, defaultFAQFile)
	}
	if m.config.RecycleFile == "" {
		m.config.RecycleFile = filepath.Join(ctx.DataDir, defaultRecycleFile)
	}
	if m.config.SettingsFile == "" {
		m.config.SettingsFile = filepath.Join(ctx.DataDir, defaultSettingsFile)
	}

	// First run: the data directory may not exist yet, and the stores
	// bootstrap their files with an atomic write into it.
	for _, p := range []string{m.config.FAQFile, m.config.RecycleFile, m.config.SettingsFile} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("bot: create directory %s: %w", dir, err)
			}
		}
	}

	m.store = faq.NewStore(m.config.FAQFile, faq.StoreOptions{
		Reserved: m.config.ReservedTags,
		CacheTTL: m.config.TagCacheTTL,
	})
	if err := m.store.Load(); err != nil {
		return err
	}
	entryStore.Store(m.store)

	m.recycle = faq.NewRecycleStore(m.config.RecycleFile)
	if err := m.recycle.Load(); err != nil {
		return err
	}

	m.manager = faq.NewManager(m.store, m.recycle)
	m.resolver = faq.NewResolver(m.store)
	m.lister = faq.NewLister(m.store)

	m.broker = session.NewBroker()
	m.flows = session.NewFlows(m.broker, m.store, m.manager)
	m.allow = channel.NewAllowList(m.config.Managers)

	if m.config.Algolia.configured() {
		m.search = wiki.NewClient(m.config.Algolia.AppID, m.config.Algolia.AuthKey, m.config.Algolia.IndexName, "")
		m.results = wiki.NewResultCache(0)
	}

	m.settings = report.NewSettings(m.config.SettingsFile)
	if m.config.AllowBugReports != nil {
		m.settings.SeedAllowBugReports(*m.config.AllowBugReports)
	}
	if m.config.BugReportCooldown != nil {
		m.settings.SeedCooldownSeconds(*m.config.BugReportCooldown)
	}
	if err := m.settings.Load(); err != nil {
		return err
	}
	m.gate = report.NewGate(time.Duration(m.settings.CooldownSeconds()) * time.Second)

	m.dispatcher = channel.NewDispatcher()
	ctx.RegisterService("channel.dispatcher", m.dispatcher)
	ctx.RegisterService("bot.inbox", channel.InboxFunc(m.Inbox))
	ctx.RegisterService("faq.store", m.store)
	ctx.RegisterService("report.gate", m.gate)

	m.logger.Info("bot provisioned",
		"faq_file", m.config.FAQFile,
		"entries", m.store.Len(),
		"search", m.search != nil,
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if m.config.Prefix == m.config.QueryPrefix {
		return fmt.Errorf("bot: prefix and query_prefix must differ, both are %q", m.config.Prefix)
	}
	if m.config.BugReportCooldown != nil && *m.config.BugReportCooldown < 0 {
		return fmt.Errorf("bot: bug_report_cooldown must be non-negative, got %d", *m.config.BugReportCooldown)
	}
	return nil
}

// Start implements core.Starter. The report store module provisions
// after the bot, so its service is wired here; without it the report
// commands answer that intake is unavailable.
func (m *Module) Start() error {
	m.ctx, m.cancel = context.WithCancel(context.Background())

	if svc, ok := m.appCtx.Service("report.store"); ok {
		store, isStore := svc.(report.Store)
		if !isStore {
			return fmt.Errorf("bot: service report.store has unexpected type %T", svc)
		}
		m.reports = report.NewService(store, m.settings, m.gate)
		m.appCtx.RegisterService("report.service", m.reports)
	} else {
		m.logger.Warn("no report store module loaded, report intake disabled")
	}

	m.logger.Info("bot started", "prefix", m.config.Prefix)
	return nil
}

// Stop implements core.Stopper. In-flight interactive sessions are
// cancelled and waited for.
func (m *Module) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("bot stopped")
	return nil
}
