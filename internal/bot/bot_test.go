package bot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/faqbot/faqbot/internal/channel"
	"github.com/faqbot/faqbot/internal/core"
	"github.com/faqbot/faqbot/internal/faq"
	"github.com/faqbot/faqbot/internal/report"
	"github.com/faqbot/faqbot/pkg/message"
)

const testManager = "manager-1"

func TestConfigSeedsReportSettings(t *testing.T) {
	t.Parallel()

	var node yaml.Node
	raw := "allow_bug_reports: false\nbug_report_cooldown: 42\n"
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("yaml: %v", err)
	}

	m := &Module{}
	if err := m.Configure(&node); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), t.TempDir())
	if err := m.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if m.settings.AllowBugReports() {
		t.Error("AllowBugReports = true, want config seed false")
	}
	if got := m.settings.CooldownSeconds(); got != 42 {
		t.Errorf("CooldownSeconds = %d, want config seed 42", got)
	}
}

func TestPersistedSettingsWinOverConfigSeed(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	persisted := `{"allow_bug_reports": true, "bug_report_cooldown": 600}`
	if err := os.WriteFile(filepath.Join(dataDir, defaultSettingsFile), []byte(persisted), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	allow := false
	cooldown := 42
	m := &Module{config: Config{AllowBugReports: &allow, BugReportCooldown: &cooldown}}
	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), dataDir)
	if err := m.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if !m.settings.AllowBugReports() {
		t.Error("AllowBugReports = false, want persisted true")
	}
	if got := m.settings.CooldownSeconds(); got != 600 {
		t.Errorf("CooldownSeconds = %d, want persisted 600", got)
	}
}

func TestValidateRejectsNegativeCooldown(t *testing.T) {
	t.Parallel()

	cooldown := -1
	m := &Module{config: Config{BugReportCooldown: &cooldown}}
	m.config.defaults()
	if err := m.Validate(); err == nil {
		t.Fatal("Validate accepted a negative bug_report_cooldown")
	}
}

func TestProvisionCreatesDataDir(t *testing.T) {
	t.Parallel()

	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	m := &Module{}
	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), dataDir)

	if err := m.Provision(appCtx); err != nil {
		t.Fatalf("Provision with missing data dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, defaultFAQFile)); err != nil {
		t.Errorf("FAQ file not bootstrapped: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, defaultSettingsFile)); err != nil {
		t.Errorf("settings file not bootstrapped: %v", err)
	}
}

func newTestBot(t *testing.T, reportStore report.Store) (*Module, *channel.MockChannel) {
	t.Helper()

	m := &Module{config: Config{Managers: []string{testManager}}}

	appCtx := core.NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), t.TempDir())
	if reportStore != nil {
		appCtx.RegisterService("report.store", reportStore)
	}

	if err := m.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Stop(ctx)
	})

	mock := channel.NewMockChannel("mock")
	if err := m.dispatcher.Register("mock", mock); err != nil {
		t.Fatalf("Register: %v", err)
	}
	mock.SetInbox(m.Inbox)
	return m, mock
}

func inbound(user, text string) message.InboundMessage {
	return message.InboundMessage{
		ID:        "msg-1",
		Timestamp: time.Now(),
		Sender:    message.Sender{ID: user},
		Chat:      message.Chat{ID: "chat-1", Type: message.ChatGroup},
		Text:      text,
	}
}

// waitForReply polls the mock channel until a sent message contains
// substr. Command handling runs on its own goroutine.
func waitForReply(t *testing.T, mock *channel.MockChannel, substr string) message.OutboundMessage {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, sent := range mock.SentMessages() {
			if strings.Contains(sent.TextContent(), substr) {
				return sent
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no reply containing %q; sent: %v", substr, mock.SentMessages())
	return message.OutboundMessage{}
}

func seedEntry(t *testing.T, m *Module, tags []string, title, description string) {
	t.Helper()
	if _, outcome, err := m.manager.Add(tags, title, description, ""); err != nil || outcome != faq.OutcomeOK {
		t.Fatalf("seeding %q: (%v, %v)", title, outcome, err)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)
	if err := mock.SimulateMessage(inbound("alice", "!ping")); err != nil {
		t.Fatal(err)
	}
	waitForReply(t, mock, "pong")
}

func TestHelpListsCommands(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)
	_ = mock.SimulateMessage(inbound("alice", "!help"))
	reply := waitForReply(t, mock, "FAQ bot commands")
	for _, want := range []string{"!faq get", "!faq list", "!bug", "!feedback"} {
		if !strings.Contains(reply.TextContent(), want) {
			t.Errorf("help misses %q", want)
		}
	}
}

func TestBareQueryResolvesEntry(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)
	seedEntry(t, m, []string{"setup", "install"}, "Setup Guide", "run the installer")

	_ = mock.SimulateMessage(inbound("alice", "?setup"))
	reply := waitForReply(t, mock, "Setup Guide")
	if reply.Embed == nil || reply.Embed.Title != "Setup Guide" {
		t.Errorf("reply = %+v, want embed", reply)
	}
	if !strings.Contains(reply.Embed.Footer, "setup") {
		t.Errorf("embed footer = %q, want tags", reply.Embed.Footer)
	}
}

func TestBareQueryTypo(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)
	seedEntry(t, m, []string{"setup"}, "Setup Guide", "")

	_ = mock.SimulateMessage(inbound("alice", "?steup"))
	waitForReply(t, mock, "Setup Guide")
}

func TestQueryMiss(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)
	_ = mock.SimulateMessage(inbound("alice", "?zzzzzzzzzz"))
	waitForReply(t, mock, "No FAQ matches")
}

func TestFaqGet(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)
	seedEntry(t, m, []string{"docker"}, "Running in Docker", "")

	_ = mock.SimulateMessage(inbound("alice", "!faq get docker"))
	waitForReply(t, mock, "Running in Docker")
}

func TestFaqList(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)
	seedEntry(t, m, []string{"setup"}, "Setup Guide", "")
	seedEntry(t, m, []string{"api"}, "API Reference", "")

	_ = mock.SimulateMessage(inbound("alice", "!faq list"))
	reply := waitForReply(t, mock, "page 1 of 1 (2 total faq entries)")
	for _, want := range []string{"setup - Setup Guide", "api - API Reference"} {
		if !strings.Contains(reply.TextContent(), want) {
			t.Errorf("listing misses %q:\n%s", want, reply.TextContent())
		}
	}
}

func TestFaqListEmpty(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)
	_ = mock.SimulateMessage(inbound("alice", "!faq list"))
	waitForReply(t, mock, "no FAQ entries yet")
}

func TestManagementDeniedForNonManagers(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)
	seedEntry(t, m, []string{"setup"}, "Setup Guide", "")

	for _, cmd := range []string{"!faq add", "!faq edit setup", "!faq delete setup", "!faq allow_reports", "!faq report_cooldown"} {
		mock.Reset()
		_ = mock.SimulateMessage(inbound("alice", cmd))
		waitForReply(t, mock, "not allowed")
	}
	if m.store.Len() != 1 {
		t.Errorf("store mutated by denied commands")
	}
}

func TestAddFlowOverChannel(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)

	_ = mock.SimulateMessage(inbound(testManager, "!faq add"))
	waitForReply(t, mock, "enter FAQ tags")

	_ = mock.SimulateMessage(inbound(testManager, "setup, install"))
	waitForReply(t, mock, "enter the FAQ title")

	_ = mock.SimulateMessage(inbound(testManager, "Setup Guide"))
	waitForReply(t, mock, "enter the FAQ description")

	_ = mock.SimulateMessage(inbound(testManager, "Run the installer."))
	waitForReply(t, mock, "Successfully created")

	e := m.store.FindByTag("setup")
	if e == nil || e.Title != "Setup Guide" || e.Description != "Run the installer." {
		t.Errorf("entry = %+v", e)
	}
}

func TestDeleteFlowOverChannel(t *testing.T) {
	t.Parallel()

	m, mock := newTestBot(t, nil)
	seedEntry(t, m, []string{"setup"}, "Setup Guide", "")

	_ = mock.SimulateMessage(inbound(testManager, "!faq delete setup"))
	waitForReply(t, mock, "Type yes to continue")

	_ = mock.SimulateMessage(inbound(testManager, "yes"))
	waitForReply(t, mock, "has been deleted")

	if m.store.FindByTag("setup") != nil {
		t.Error("entry still live")
	}
	if m.recycle.Len() != 1 {
		t.Errorf("recycle archive has %d entries, want 1", m.recycle.Len())
	}
}

func TestSessionReplyNotParsedAsCommand(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)

	_ = mock.SimulateMessage(inbound(testManager, "!faq add"))
	waitForReply(t, mock, "enter FAQ tags")

	// A reply that looks like a command must feed the session, not the
	// parser.
	_ = mock.SimulateMessage(inbound(testManager, "!ping"))
	waitForReply(t, mock, "enter the FAQ title")
	for _, sent := range mock.SentMessages() {
		if sent.TextContent() == "pong" {
			t.Error("session reply was parsed as a command")
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)
	_ = mock.SimulateMessage(inbound("alice", "!frobnicate"))
	waitForReply(t, mock, "Unknown command")
}

func TestPlainMessagesIgnored(t *testing.T) {
	t.Parallel()

	_, mock := newTestBot(t, nil)
	_ = mock.SimulateMessage(inbound("alice", "just chatting"))

	time.Sleep(30 * time.Millisecond)
	if sent := mock.SentMessages(); len(sent) != 0 {
		t.Errorf("bot replied to plain chatter: %v", sent)
	}
}
