package channel

import (
	"testing"

	"github.com/faqbot/faqbot/pkg/message"
)

func dmMsg(senderID string) message.InboundMessage {
	return message.InboundMessage{
		Sender: message.Sender{ID: senderID},
		Chat:   message.Chat{ID: "chat-1", Type: message.ChatDM},
	}
}

func TestAllowList_NilDeniesAll(t *testing.T) {
	t.Parallel()
	var a *AllowList
	if a.IsAllowed(dmMsg("alice")) {
		t.Error("nil AllowList should deny everyone")
	}
}

func TestAllowList_EmptyDeniesAll(t *testing.T) {
	t.Parallel()
	a := NewAllowList(nil)
	if a.IsAllowed(dmMsg("alice")) {
		t.Error("empty AllowList should deny everyone")
	}
}

func TestAllowList_Users(t *testing.T) {
	t.Parallel()
	a := NewAllowList([]string{"alice", " Bob "})

	tests := []struct {
		name    string
		sender  string
		allowed bool
	}{
		{"allowed user", "alice", true},
		{"normalized entry", "bob", true},
		{"normalized sender", " ALICE ", true},
		{"unknown user", "charlie", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := a.IsAllowed(dmMsg(tc.sender))
			if got != tc.allowed {
				t.Errorf("IsAllowed(%q) = %v, want %v", tc.sender, got, tc.allowed)
			}
		})
	}
}
