// Package wschat implements the built-in WebSocket chat channel. Every
// connection is its own direct-message chat: clients send JSON frames
// {"user": ..., "text": ...} and receive rendered bot replies as
// {"text": ...} frames. The gateway mounts the handler at /ws/chat.
package wschat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/faqbot/faqbot/internal/channel"
	"github.com/faqbot/faqbot/internal/core"
	"github.com/faqbot/faqbot/pkg/message"
)

func init() {
	core.RegisterModule(&WSChat{})
}

// ChannelName is the dispatcher key and the Channel field stamped on
// inbound messages.
const ChannelName = "wschat"

// inFrame is a client-to-bot frame.
type inFrame struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// outFrame is a bot-to-client frame.
type outFrame struct {
	Text string `json:"text"`
}

// conn is one live chat connection.
type conn struct {
	mu sync.Mutex // serializes writes
	ws *websocket.Conn
}

func (c *conn) write(ctx context.Context, timeout time.Duration, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

// WSChat implements channel.Channel over WebSocket connections.
type WSChat struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext
	inbox  func(message.InboundMessage) error

	mu     sync.Mutex
	conns  map[string]*conn // chat ID -> connection
	ctx    context.Context
	cancel context.CancelFunc
}

// ModuleInfo implements core.Module.
func (m *WSChat) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.wschat",
		New: func() core.Module { return &WSChat{} },
	}
}

// Configure implements core.Configurable.
func (m *WSChat) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("wschat: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The HTTP handler is published
// here so the gateway can mount it during its own Start.
func (m *WSChat) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.conns = make(map[string]*conn)
	ctx.RegisterService("chat.handler", http.HandlerFunc(m.handleWebSocket))
	return nil
}

// Start implements core.Starter. It binds to the bot's inbox and registers
// itself with the outbound dispatcher.
func (m *WSChat) Start() error {
	if m.inbox == nil {
		svc, ok := m.appCtx.Service("bot.inbox")
		if !ok {
			return errors.New("wschat: bot.inbox service not available")
		}
		fn, ok := svc.(channel.InboxFunc)
		if !ok {
			return errors.New("wschat: bot.inbox service has unexpected type")
		}
		m.inbox = fn
	}

	if svc, ok := m.appCtx.Service("channel.dispatcher"); ok {
		d, ok := svc.(*channel.Dispatcher)
		if !ok {
			return errors.New("wschat: channel.dispatcher service has unexpected type")
		}
		if err := d.Register(ChannelName, m); err != nil {
			return fmt.Errorf("wschat: registering channel: %w", err)
		}
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	return nil
}

// Stop implements core.Stopper. It closes every live connection.
func (m *WSChat) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.conns {
		_ = c.ws.Close(websocket.StatusGoingAway, "server shutting down")
		delete(m.conns, id)
	}
	return nil
}

// Send implements channel.Channel. Embeds are flattened to plain text;
// card rendering is a platform-channel concern.
func (m *WSChat) Send(ctx context.Context, msg message.OutboundMessage) error {
	m.mu.Lock()
	c, ok := m.conns[msg.Chat.ID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("wschat: no connection for chat %s", msg.Chat.ID)
	}

	text := msg.Text
	if !msg.Embed.IsZero() {
		if text != "" {
			text += "\n"
		}
		text += msg.Embed.Flatten()
	}

	data, err := json.Marshal(outFrame{Text: text})
	if err != nil {
		return fmt.Errorf("wschat: marshal frame: %w", err)
	}
	if err := c.write(ctx, m.config.WriteTimeout, data); err != nil {
		return fmt.Errorf("wschat: write to chat %s: %w", msg.Chat.ID, err)
	}
	return nil
}

// SetInbox implements channel.Channel.
func (m *WSChat) SetInbox(fn func(msg message.InboundMessage) error) {
	m.inbox = fn
}

// handleWebSocket runs one connection's lifecycle: accept, read loop,
// cleanup on disconnect.
func (m *WSChat) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	if len(m.conns) >= m.config.MaxConnections {
		m.mu.Unlock()
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	m.mu.Unlock()

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		m.logger.Error("websocket accept failed", "error", err)
		return
	}

	chatID := uuid.NewString()
	c := &conn{ws: ws}

	m.mu.Lock()
	m.conns[chatID] = c
	m.mu.Unlock()

	m.logger.Info("chat connected", "chat", chatID)
	m.readLoop(r.Context(), chatID, c)

	m.mu.Lock()
	delete(m.conns, chatID)
	m.mu.Unlock()

	_ = ws.Close(websocket.StatusNormalClosure, "")
	m.logger.Info("chat disconnected", "chat", chatID)
}

func (m *WSChat) readLoop(reqCtx context.Context, chatID string, c *conn) {
	ctx, cancel := context.WithCancel(reqCtx)
	defer cancel()
	if m.ctx != nil {
		stop := context.AfterFunc(m.ctx, cancel)
		defer stop()
	}

	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return
		}

		var frame inFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			m.logger.Warn("invalid frame", "chat", chatID, "error", err)
			continue
		}
		if frame.User == "" || frame.Text == "" {
			continue
		}

		msg := message.InboundMessage{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Channel:   ChannelName,
			Sender:    message.Sender{ID: frame.User, Username: frame.User},
			Chat:      message.Chat{ID: chatID, Type: message.ChatDM},
			Text:      frame.Text,
		}
		if err := m.inbox(msg); err != nil {
			m.logger.Warn("inbox rejected message", "chat", chatID, "error", err)
		}
	}
}

// Interface guards.
var (
	_ channel.Channel   = (*WSChat)(nil)
	_ core.Configurable = (*WSChat)(nil)
	_ core.Provisioner  = (*WSChat)(nil)
	_ core.Starter      = (*WSChat)(nil)
	_ core.Stopper      = (*WSChat)(nil)
)
