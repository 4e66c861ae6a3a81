// Package channel defines the bridge between messaging platforms and the bot.
// It provides the Channel interface, the outbound Dispatcher, and allow-list
// filtering for management commands.
package channel

import (
	"context"

	"github.com/faqbot/faqbot/internal/core"
	"github.com/faqbot/faqbot/pkg/message"
)

// Channel is the bridge between a messaging platform and the bot.
// Every concrete channel (WebSocket chat, Discord, Telegram, ...) must
// implement this interface.
//
// A channel receives messages from its platform and pushes them to the bot
// via the inbox callback. It also receives outbound messages from the bot
// via Send().
type Channel interface {
	core.Module

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg message.OutboundMessage) error

	// SetInbox gives the channel a function to push inbound messages to the
	// bot. The bot calls this during wiring, before Start().
	SetInbox(fn func(msg message.InboundMessage) error)
}

// InboxFunc is the inbound delivery callback published by the bot in the
// service registry; channel modules pass it to SetInbox.
type InboxFunc func(msg message.InboundMessage) error
