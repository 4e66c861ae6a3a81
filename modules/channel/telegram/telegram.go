package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/faqbot/faqbot/internal/channel"
	"github.com/faqbot/faqbot/internal/core"
	"github.com/faqbot/faqbot/pkg/message"
)

func init() {
	core.RegisterModule(&Telegram{})
}

// ChannelName is the dispatcher key and the Channel field stamped on
// inbound messages.
const ChannelName = "telegram"

// Telegram implements the Telegram Bot API channel for faqbot.
type Telegram struct {
	config  Config
	client  *Client
	logger  *slog.Logger
	inbox   func(message.InboundMessage) error
	botUser *User
	appCtx  *core.AppContext
	poller  *Poller
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.telegram",
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	t.appCtx = ctx
	t.logger = ctx.Logger
	t.client = NewClient(t.config.Token, t.config.APIURL)
	return nil
}

// Validate implements core.Validator. An empty token leaves the channel
// disabled rather than failing startup.
func (t *Telegram) Validate() error {
	return t.config.validate()
}

// Start implements core.Starter. It binds to the bot's inbox, validates
// the token, registers with the dispatcher, and starts polling.
func (t *Telegram) Start() error {
	if t.config.Token == "" {
		t.logger.Debug("telegram disabled, no token configured")
		return nil
	}

	if t.inbox == nil {
		svc, ok := t.appCtx.Service("bot.inbox")
		if !ok {
			return errors.New("telegram: bot.inbox service not available")
		}
		fn, ok := svc.(channel.InboxFunc)
		if !ok {
			return errors.New("telegram: bot.inbox service has unexpected type")
		}
		t.inbox = fn
	}

	user, err := t.client.GetMe(context.Background())
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.botUser = user
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	if svc, ok := t.appCtx.Service("channel.dispatcher"); ok {
		d, ok := svc.(*channel.Dispatcher)
		if !ok {
			return errors.New("telegram: channel.dispatcher service has unexpected type")
		}
		if err := d.Register(ChannelName, t); err != nil {
			return fmt.Errorf("telegram: registering channel: %w", err)
		}
	}

	t.poller = NewPoller(t.client, t.inbox, t.logger, ChannelName, t.config)
	t.poller.Start()
	t.logger.Info("telegram polling started", "timeout", t.config.PollingTimeout)
	return nil
}

// Stop implements core.Stopper.
func (t *Telegram) Stop(_ context.Context) error {
	if t.poller != nil {
		t.poller.Stop()
	}
	return nil
}

// Send implements channel.Channel.
func (t *Telegram) Send(ctx context.Context, msg message.OutboundMessage) error {
	photo, text, err := buildOutbound(msg, t.config.MaxMessageLength)
	if err != nil {
		return err
	}
	if photo != nil {
		_, err = t.client.SendPhoto(ctx, *photo)
		return err
	}
	_, err = t.client.SendMessage(ctx, *text)
	return err
}

// SetInbox implements channel.Channel.
func (t *Telegram) SetInbox(fn func(msg message.InboundMessage) error) {
	t.inbox = fn
}

// Interface guards.
var (
	_ channel.Channel   = (*Telegram)(nil)
	_ core.Configurable = (*Telegram)(nil)
	_ core.Provisioner  = (*Telegram)(nil)
	_ core.Validator    = (*Telegram)(nil)
	_ core.Starter      = (*Telegram)(nil)
	_ core.Stopper      = (*Telegram)(nil)
)
