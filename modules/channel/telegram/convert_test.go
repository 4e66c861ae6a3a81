package telegram

import (
	"strings"
	"testing"

	"github.com/faqbot/faqbot/pkg/message"
)

func TestConvertInbound(t *testing.T) {
	t.Parallel()

	update := &Update{
		UpdateID: 3,
		Message: &Message{
			MessageID: 21,
			Date:      1700000000,
			Text:      "?setup",
			From:      &User{ID: 1001, Username: "alice", FirstName: "Alice", LastName: "B"},
			Chat:      Chat{ID: -500, Type: "group", Title: "Support"},
		},
	}

	msg, err := convertInbound(update, ChannelName)
	if err != nil {
		t.Fatalf("convertInbound: %v", err)
	}

	if msg.ID != "21" || msg.Channel != ChannelName || msg.Text != "?setup" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.Sender.ID != "1001" || msg.Sender.Username != "alice" || msg.Sender.DisplayName != "Alice B" {
		t.Errorf("unexpected sender: %+v", msg.Sender)
	}
	if msg.Chat.ID != "-500" || !msg.IsGroup() || msg.Chat.Title != "Support" {
		t.Errorf("unexpected chat: %+v", msg.Chat)
	}
	if msg.Timestamp.Unix() != 1700000000 {
		t.Errorf("timestamp = %v", msg.Timestamp)
	}
}

func TestConvertInboundPrivateChat(t *testing.T) {
	t.Parallel()

	update := &Update{
		Message: &Message{
			MessageID: 1,
			Text:      "!help",
			Chat:      Chat{ID: 9, Type: "private"},
		},
	}
	msg, err := convertInbound(update, ChannelName)
	if err != nil {
		t.Fatalf("convertInbound: %v", err)
	}
	if !msg.IsDirectMessage() {
		t.Error("private chat should map to a direct message")
	}
}

func TestConvertInboundSkipsNonText(t *testing.T) {
	t.Parallel()

	for _, update := range []*Update{
		{UpdateID: 1},
		{UpdateID: 2, Message: &Message{MessageID: 5, Chat: Chat{ID: 1}}},
	} {
		if _, err := convertInbound(update, ChannelName); err == nil {
			t.Errorf("update %d: expected error for missing text", update.UpdateID)
		}
	}
}

func TestBuildOutboundText(t *testing.T) {
	t.Parallel()

	photo, text, err := buildOutbound(message.OutboundMessage{
		Chat: message.Chat{ID: "42"},
		Text: "pong",
	}, 4096)
	if err != nil {
		t.Fatalf("buildOutbound: %v", err)
	}
	if photo != nil {
		t.Fatal("plain text should not produce a photo request")
	}
	if text.ChatID != 42 || text.Text != "pong" {
		t.Errorf("unexpected request: %+v", text)
	}
}

func TestBuildOutboundEmbedWithImage(t *testing.T) {
	t.Parallel()

	photo, text, err := buildOutbound(message.OutboundMessage{
		Chat: message.Chat{ID: "42"},
		Embed: &message.Embed{
			Title:       "Setup Guide",
			Description: "How to install",
			Image:       "https://example.com/setup.png",
			Footer:      "tags: setup",
		},
	}, 4096)
	if err != nil {
		t.Fatalf("buildOutbound: %v", err)
	}
	if text != nil {
		t.Fatal("image embed should produce a photo request")
	}
	if photo.Photo != "https://example.com/setup.png" {
		t.Errorf("Photo = %q", photo.Photo)
	}
	if !strings.Contains(photo.Caption, "Setup Guide") || !strings.Contains(photo.Caption, "tags: setup") {
		t.Errorf("caption = %q", photo.Caption)
	}
	if strings.Contains(photo.Caption, "example.com/setup.png") {
		t.Error("caption should not repeat the image URL")
	}
}

func TestBuildOutboundTruncates(t *testing.T) {
	t.Parallel()

	_, text, err := buildOutbound(message.OutboundMessage{
		Chat: message.Chat{ID: "1"},
		Text: strings.Repeat("x", 5000),
	}, 4096)
	if err != nil {
		t.Fatalf("buildOutbound: %v", err)
	}
	if got := len([]rune(text.Text)); got != 4096 {
		t.Errorf("text length = %d, want 4096", got)
	}
}

func TestBuildOutboundBadChatID(t *testing.T) {
	t.Parallel()

	_, _, err := buildOutbound(message.OutboundMessage{
		Chat: message.Chat{ID: "not-numeric"},
		Text: "x",
	}, 4096)
	if err == nil {
		t.Fatal("expected error for non-numeric chat ID")
	}
}
