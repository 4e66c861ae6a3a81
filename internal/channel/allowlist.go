package channel

import (
	"strings"

	"github.com/faqbot/faqbot/pkg/message"
)

// AllowList controls which users are permitted to use FAQ management
// commands. An empty or nil AllowList denies everyone — the platform's
// own role system is outside this process, so management rights must be
// granted explicitly.
type AllowList struct {
	users map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Keys are trimmed and
// lowercased at construction time so that IsAllowed can use direct map lookups.
func NewAllowList(users []string) *AllowList {
	a := &AllowList{
		users: make(map[string]struct{}, len(users)),
	}
	for _, u := range users {
		a.users[normalize(u)] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the message sender is permitted.
//
// Rules:
//   - If the list is nil or empty → deny (no one is allowed).
//   - If the sender's ID matches an entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(msg message.InboundMessage) bool {
	if a == nil || len(a.users) == 0 {
		return false
	}

	_, ok := a.users[normalize(msg.Sender.ID)]
	return ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
