package wschat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/faqbot/faqbot/pkg/message"
)

func newTestChannel(t *testing.T) (*WSChat, *httptest.Server, *inboxRecorder) {
	t.Helper()

	rec := &inboxRecorder{}
	m := &WSChat{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		conns:  make(map[string]*conn),
		inbox:  rec.deliver,
	}
	m.config.defaults()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	srv := httptest.NewServer(http.HandlerFunc(m.handleWebSocket))
	t.Cleanup(srv.Close)

	return m, srv, rec
}

type inboxRecorder struct {
	mu   sync.Mutex
	msgs []message.InboundMessage
}

func (r *inboxRecorder) deliver(msg message.InboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *inboxRecorder) wait(t *testing.T) message.InboundMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.msgs) > 0 {
			msg := r.msgs[len(r.msgs)-1]
			r.mu.Unlock()
			return msg
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for inbound message")
	return message.InboundMessage{}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close(websocket.StatusNormalClosure, "") })
	return ws
}

func TestInboundFrameReachesInbox(t *testing.T) {
	t.Parallel()

	_, srv, rec := newTestChannel(t)
	ws := dial(t, srv)

	ctx := context.Background()
	if err := ws.Write(ctx, websocket.MessageText, []byte(`{"user":"alice","text":"!ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := rec.wait(t)
	if msg.Channel != ChannelName {
		t.Errorf("Channel = %q, want %q", msg.Channel, ChannelName)
	}
	if msg.Sender.ID != "alice" || msg.Text != "!ping" {
		t.Errorf("got sender %q text %q", msg.Sender.ID, msg.Text)
	}
	if !msg.IsDirectMessage() {
		t.Error("wschat chats should be direct messages")
	}
	if msg.Chat.ID == "" || msg.ID == "" {
		t.Error("chat and message IDs should be populated")
	}
}

func TestSendDeliversToConnection(t *testing.T) {
	t.Parallel()

	m, srv, rec := newTestChannel(t)
	ws := dial(t, srv)

	ctx := context.Background()
	if err := ws.Write(ctx, websocket.MessageText, []byte(`{"user":"bob","text":"hi"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	inMsg := rec.wait(t)

	out := message.OutboundMessage{
		Channel: ChannelName,
		Chat:    inMsg.Chat,
		Embed:   &message.Embed{Title: "Setup Guide", Description: "How to install"},
	}
	if err := m.Send(ctx, out); err != nil {
		t.Fatalf("Send: %v", err)
	}

	readCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, data, err := ws.Read(readCtx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var frame outFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(frame.Text, "Setup Guide") || !strings.Contains(frame.Text, "How to install") {
		t.Errorf("frame text = %q, want flattened embed", frame.Text)
	}
}

func TestSendUnknownChat(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestChannel(t)
	err := m.Send(context.Background(), message.OutboundMessage{
		Channel: ChannelName,
		Chat:    message.Chat{ID: "absent", Type: message.ChatDM},
		Text:    "hello",
	})
	if err == nil {
		t.Fatal("expected error for unknown chat")
	}
}

func TestMalformedAndEmptyFramesIgnored(t *testing.T) {
	t.Parallel()

	_, srv, rec := newTestChannel(t)
	ws := dial(t, srv)

	ctx := context.Background()
	for _, payload := range []string{"not json", `{"user":"","text":"x"}`, `{"user":"u","text":""}`} {
		if err := ws.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// A valid frame after the garbage proves the loop survived.
	if err := ws.Write(ctx, websocket.MessageText, []byte(`{"user":"carol","text":"ok"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	msg := rec.wait(t)
	if msg.Sender.ID != "carol" {
		t.Errorf("sender = %q, want carol", msg.Sender.ID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.msgs) != 1 {
		t.Errorf("inbox received %d messages, want 1", len(rec.msgs))
	}
}

func TestMaxConnections(t *testing.T) {
	t.Parallel()

	m, srv, _ := newTestChannel(t)
	m.config.MaxConnections = 1

	dial(t, srv)

	// Wait for the first connection to be registered.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		n := len(m.conns)
		m.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.Dial(ctx, url, nil)
	if err == nil {
		t.Fatal("expected second dial to be rejected")
	}
	if resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
