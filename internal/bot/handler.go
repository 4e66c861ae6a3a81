package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/faqbot/faqbot/internal/report"
	"github.com/faqbot/faqbot/internal/session"
	"github.com/faqbot/faqbot/pkg/message"
)

const (
	msgNotAllowed      = "You are not allowed to use FAQ management commands."
	msgInternalError   = "Something went wrong, please try again."
	msgSearchDisabled  = "Documentation search is not configured."
	msgReportsDisabled = "Report intake is not available right now."
)

// Inbox receives every inbound message. Messages answering a pending
// interactive session are consumed by the broker; everything else goes
// through command parsing in its own goroutine, so a suspended builder
// never blocks other users.
func (m *Module) Inbox(msg message.InboundMessage) error {
	key := session.Key{Channel: msg.Channel, Chat: msg.Chat.ID, User: msg.Sender.ID}
	if m.broker.Deliver(key, msg.Text) {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, m.config.Prefix) && len(text) > len(m.config.Prefix):
	case strings.HasPrefix(text, m.config.QueryPrefix) && len(text) > len(m.config.QueryPrefix):
	default:
		return nil
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.handle(m.ctx, msg, text)
	}()
	return nil
}

// handle parses and executes one command or bare query.
func (m *Module) handle(ctx context.Context, msg message.InboundMessage, text string) {
	if strings.HasPrefix(text, m.config.QueryPrefix) && !strings.HasPrefix(text, m.config.Prefix) {
		m.handleQuery(ctx, msg, strings.TrimSpace(text[len(m.config.QueryPrefix):]))
		return
	}

	fields := strings.Fields(text[len(m.config.Prefix):])
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	ctx, span := otel.Tracer("faqbot/bot").Start(ctx, "bot.command",
		trace.WithAttributes(
			attribute.String("command", command),
			attribute.String("channel", msg.Channel),
		))
	defer span.End()

	commandsHandled.WithLabelValues(command).Inc()

	var err error
	switch command {
	case "ping":
		err = m.reply(ctx, msg, "pong")
	case "help":
		err = m.reply(ctx, msg, m.helpText())
	case "bug":
		err = m.handleReport(ctx, msg, report.KindBug, args)
	case "feedback":
		err = m.handleReport(ctx, msg, report.KindFeedback, args)
	case "faq":
		err = m.handleFaq(ctx, msg, args)
	default:
		err = m.reply(ctx, msg, fmt.Sprintf("Unknown command %q. Try %shelp.", command, m.config.Prefix))
	}
	if err != nil {
		m.logger.Error("command failed", "command", command, "user", msg.Sender.ID, "error", err)
		_ = m.reply(ctx, msg, msgInternalError)
	}
}

// handleFaq dispatches the faq subcommands.
func (m *Module) handleFaq(ctx context.Context, msg message.InboundMessage, args []string) error {
	if len(args) == 0 {
		return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq <get|list|add|edit|delete|download|search|details|allow_reports|report_cooldown>", m.config.Prefix))
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]

	switch sub {
	case "get":
		if len(rest) == 0 {
			return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq get <tag>", m.config.Prefix))
		}
		m.handleQuery(ctx, msg, strings.Join(rest, " "))
		return nil

	case "list":
		page := 1
		if len(rest) > 0 {
			if n, err := strconv.Atoi(rest[0]); err == nil {
				page = n
			}
		}
		return m.sendList(ctx, msg, page)

	case "download":
		return m.sendDownload(ctx, msg)

	case "search":
		return m.handleSearch(ctx, msg, rest)

	case "details":
		return m.handleDetails(ctx, msg, rest)

	case "add", "edit", "delete", "allow_reports", "report_cooldown":
		if !m.allow.IsAllowed(msg) {
			return m.reply(ctx, msg, msgNotAllowed)
		}
		return m.handleManagement(ctx, msg, sub, rest)

	default:
		return m.reply(ctx, msg, fmt.Sprintf("Unknown faq subcommand %q. Try %shelp.", sub, m.config.Prefix))
	}
}

// handleManagement runs the allow-listed subcommands. The interactive
// flows block on user replies; they already run on a per-message
// goroutine.
func (m *Module) handleManagement(ctx context.Context, msg message.InboundMessage, sub string, rest []string) error {
	key := session.Key{Channel: msg.Channel, Chat: msg.Chat.ID, User: msg.Sender.ID}
	send := func(ctx context.Context, text string) error {
		return m.reply(ctx, msg, text)
	}

	switch sub {
	case "add":
		return m.flows.Add(ctx, key, send)

	case "edit":
		if len(rest) == 0 {
			return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq edit <tag>", m.config.Prefix))
		}
		return m.flows.Edit(ctx, key, strings.Join(rest, " "), send)

	case "delete":
		if len(rest) == 0 {
			return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq delete <tag>", m.config.Prefix))
		}
		return m.flows.Delete(ctx, key, strings.Join(rest, " "), send)

	case "allow_reports":
		if m.reports == nil {
			return m.reply(ctx, msg, msgReportsDisabled)
		}
		if len(rest) == 0 {
			return m.reply(ctx, msg, fmt.Sprintf("Bug reports are currently %s.", onOff(m.reports.AllowBugReports())))
		}
		allow, err := strconv.ParseBool(rest[0])
		if err != nil {
			return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq allow_reports <true|false>", m.config.Prefix))
		}
		if err := m.reports.SetAllowBugReports(allow); err != nil {
			return err
		}
		return m.reply(ctx, msg, fmt.Sprintf("Bug reports are now %s.", onOff(allow)))

	case "report_cooldown":
		if m.reports == nil {
			return m.reply(ctx, msg, msgReportsDisabled)
		}
		if len(rest) == 0 {
			return m.reply(ctx, msg, fmt.Sprintf("The report cooldown is %d seconds.", m.reports.CooldownSeconds()))
		}
		seconds, err := strconv.Atoi(rest[0])
		if err != nil || seconds < 0 {
			return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq report_cooldown <seconds>", m.config.Prefix))
		}
		if err := m.reports.SetCooldownSeconds(seconds); err != nil {
			return err
		}
		return m.reply(ctx, msg, fmt.Sprintf("The report cooldown is now %d seconds.", seconds))
	}
	return nil
}

// handleQuery resolves free text against the store and renders the best
// entry, or says nothing matched.
func (m *Module) handleQuery(ctx context.Context, msg message.InboundMessage, query string) {
	if query == "" {
		return
	}

	entry := m.resolver.Resolve(query)
	if entry == nil {
		resolverQueries.WithLabelValues("miss").Inc()
		_ = m.reply(ctx, msg, fmt.Sprintf("No FAQ matches %q. Use %sfaq list to browse the tags.", query, m.config.Prefix))
		return
	}
	resolverQueries.WithLabelValues("hit").Inc()

	if err := m.dispatcher.Send(ctx, message.NewEmbedMessage(msg.Channel, msg.Chat, entryEmbed(entry))); err != nil {
		m.logger.Error("sending faq entry", "tag", entry.DisplayTag(), "error", err)
	}
}

// handleReport submits a bug or feedback report.
func (m *Module) handleReport(ctx context.Context, msg message.InboundMessage, kind report.Kind, args []string) error {
	if m.reports == nil {
		return m.reply(ctx, msg, msgReportsDisabled)
	}
	body := strings.TrimSpace(strings.Join(args, " "))
	if body == "" {
		return m.reply(ctx, msg, fmt.Sprintf("Usage: %s%s <description>", m.config.Prefix, kind))
	}

	status, remaining, err := m.reports.Submit(ctx, kind, msg.Sender.ID, msg.Chat.ID, body)
	if err != nil {
		return err
	}

	switch status {
	case report.Disabled:
		reportsSubmitted.WithLabelValues(string(kind), "disabled").Inc()
		return m.reply(ctx, msg, "Bug reports are currently disabled.")
	case report.OnCooldown:
		reportsSubmitted.WithLabelValues(string(kind), "cooldown").Inc()
		return m.reply(ctx, msg, fmt.Sprintf("You submitted a report recently. Try again in %s.", remaining.Round(time.Second)))
	default:
		reportsSubmitted.WithLabelValues(string(kind), "accepted").Inc()
		return m.reply(ctx, msg, fmt.Sprintf("Thanks, your %s report was recorded.", kind))
	}
}

// handleSearch queries the documentation index and caches the results
// for detail lookups.
func (m *Module) handleSearch(ctx context.Context, msg message.InboundMessage, args []string) error {
	if m.search == nil {
		return m.reply(ctx, msg, msgSearchDisabled)
	}
	if len(args) == 0 {
		return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq search <query> [max]", m.config.Prefix))
	}

	max := 5
	query := args
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			max = n
			query = args[:len(args)-1]
		}
	}

	results, err := m.search.Search(ctx, strings.Join(query, " "), max)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return m.reply(ctx, msg, "The documentation search returned nothing.")
	}

	m.results.Put(msg.Sender.ID, results)
	return m.reply(ctx, msg, renderResults(results, m.config.Prefix))
}

// handleDetails expands one of the user's cached search results.
func (m *Module) handleDetails(ctx context.Context, msg message.InboundMessage, args []string) error {
	if m.search == nil {
		return m.reply(ctx, msg, msgSearchDisabled)
	}
	if len(args) == 0 {
		return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq details <result number>", m.config.Prefix))
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return m.reply(ctx, msg, fmt.Sprintf("Usage: %sfaq details <result number>", m.config.Prefix))
	}

	result, ok := m.results.At(msg.Sender.ID, n)
	if !ok {
		return m.reply(ctx, msg, fmt.Sprintf("No cached result %d. Run %sfaq search first.", n, m.config.Prefix))
	}

	meta, err := m.search.Metadata(ctx, result.URL)
	if err != nil {
		m.logger.Warn("fetching page metadata", "url", result.URL, "error", err)
		return m.reply(ctx, msg, result.URL)
	}

	return m.dispatcher.Send(ctx, message.NewEmbedMessage(msg.Channel, msg.Chat, metadataEmbed(result, meta)))
}

// sendList renders one page of the tag listing.
func (m *Module) sendList(ctx context.Context, msg message.InboundMessage, page int) error {
	p := m.lister.Page(page, m.config.ListPageSize)
	return m.reply(ctx, msg, renderPage(p, m.config.Prefix))
}

// sendDownload points at the full store file served by the gateway.
func (m *Module) sendDownload(ctx context.Context, msg message.InboundMessage) error {
	return m.reply(ctx, msg, fmt.Sprintf("The full FAQ collection (%d entries) is served at /faq.json on the gateway.", m.store.Len()))
}

func (m *Module) reply(ctx context.Context, msg message.InboundMessage, text string) error {
	return m.dispatcher.Send(ctx, message.NewTextMessage(msg.Channel, msg.Chat, text))
}

func (m *Module) helpText() string {
	p := m.config.Prefix
	return strings.Join([]string{
		"**FAQ bot commands**",
		fmt.Sprintf("%sfaq get <tag> - show the FAQ for a tag (or just %s<query>)", p, m.config.QueryPrefix),
		fmt.Sprintf("%sfaq list [page] - browse all tags", p),
		fmt.Sprintf("%sfaq search <query> [max] - search the documentation", p),
		fmt.Sprintf("%sfaq details <n> - expand a search result", p),
		fmt.Sprintf("%sfaq download - where to fetch the full collection", p),
		fmt.Sprintf("%sbug <text> - report a bug", p),
		fmt.Sprintf("%sfeedback <text> - send feedback", p),
		fmt.Sprintf("%sping - check the bot is alive", p),
		"Managers also have: faq add, faq edit <tag>, faq delete <tag>, faq allow_reports, faq report_cooldown.",
	}, "\n")
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}
