// Package session implements the conversational builder: a waiter broker
// that suspends a command handler until the same user's next message in
// the same chat, plus the multi-step add/edit/delete flows built on it.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrSessionActive is returned when a user already has a pending builder
// session in the same chat. The first session must resolve before a new
// one can start.
var ErrSessionActive = errors.New("session: another session is already active for this user in this chat")

// cancelSentinel aborts any awaited step, case-insensitively.
const cancelSentinel = "x"

// Kind classifies how an awaited step resolved.
type Kind int

const (
	// Replied means the user answered with regular text.
	Replied Kind = iota

	// Cancelled means the user sent the cancel sentinel.
	Cancelled

	// TimedOut means no reply arrived in time.
	TimedOut
)

// Reply is the resolution of one awaited step. Text is set only for
// Replied.
type Reply struct {
	Kind Kind
	Text string
}

// Key identifies a session: one user in one chat on one channel. The same
// user may hold independent sessions in different chats.
type Key struct {
	Channel string
	Chat    string
	User    string
}

// Broker routes inbound messages to suspended sessions. The dispatcher
// offers every inbound message via Deliver before command parsing; a
// consumed message never reaches the command router.
type Broker struct {
	mu      sync.Mutex
	active  map[Key]struct{}
	waiters map[Key]chan string
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{
		active:  make(map[Key]struct{}),
		waiters: make(map[Key]chan string),
	}
}

// Acquire claims the session slot for key. It fails with ErrSessionActive
// if a session is already pending. Callers must Release when the flow
// resolves, normally via defer.
func (b *Broker) Acquire(key Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, busy := b.active[key]; busy {
		return ErrSessionActive
	}
	b.active[key] = struct{}{}
	return nil
}

// Release frees the session slot for key.
func (b *Broker) Release(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, key)
	if ch, ok := b.waiters[key]; ok {
		delete(b.waiters, key)
		close(ch)
	}
}

// Deliver offers an inbound message to a suspended session. It reports
// whether the message was consumed by a waiter.
func (b *Broker) Deliver(key Key, text string) bool {
	b.mu.Lock()
	ch, ok := b.waiters[key]
	if ok {
		delete(b.waiters, key)
	}
	b.mu.Unlock()

	if !ok {
		return false
	}
	ch <- text
	return true
}

// Waiter is one registered await point. Registration and waiting are
// split so a flow can register before sending its prompt: a reply can
// never race past an unregistered waiter.
type Waiter struct {
	broker *Broker
	key    Key
	ch     chan string
}

// Register installs a waiter for the user's next message. Registering
// while another waiter is pending for the same key replaces it; the
// session slot prevents that in practice.
func (b *Broker) Register(key Key) *Waiter {
	ch := make(chan string, 1)

	b.mu.Lock()
	b.waiters[key] = ch
	b.mu.Unlock()

	return &Waiter{broker: b, key: key, ch: ch}
}

// Wait suspends until the user's next message, the timeout, or context
// cancellation. Timeouts and context cancellation both resolve as
// TimedOut; the cancel sentinel resolves as Cancelled. Wait never
// returns an error-typed result: aborts are ordinary Reply kinds.
func (w *Waiter) Wait(ctx context.Context, timeout time.Duration) Reply {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var text string
	var ok bool
	select {
	case text, ok = <-w.ch:
		if !ok {
			return Reply{Kind: TimedOut}
		}
	case <-timer.C:
		w.broker.abandon(w.key, w.ch)
		return Reply{Kind: TimedOut}
	case <-ctx.Done():
		w.broker.abandon(w.key, w.ch)
		return Reply{Kind: TimedOut}
	}

	if strings.EqualFold(strings.TrimSpace(text), cancelSentinel) {
		return Reply{Kind: Cancelled}
	}
	return Reply{Kind: Replied, Text: text}
}

// Await registers and waits in one step, for steps whose prompt was
// already delivered.
func (b *Broker) Await(ctx context.Context, key Key, timeout time.Duration) Reply {
	return b.Register(key).Wait(ctx, timeout)
}

// abandon removes the waiter unless a Deliver already claimed it, in
// which case the raced message is drained so the sender never blocks.
func (b *Broker) abandon(key Key, ch chan string) {
	b.mu.Lock()
	_, pending := b.waiters[key]
	if pending {
		delete(b.waiters, key)
	}
	b.mu.Unlock()

	if !pending {
		select {
		case <-ch:
		default:
		}
	}
}
