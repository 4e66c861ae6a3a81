package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testKey() Key {
	return Key{Channel: "mock", Chat: "chat-1", User: "user-1"}
}

// deliver retries until a waiter is registered, since Await runs in
// another goroutine.
func deliver(t *testing.T, b *Broker, key Key, text string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Deliver(key, text) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Errorf("no waiter consumed %q", text)
}

func TestBrokerAwaitReplied(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	key := testKey()

	done := make(chan Reply, 1)
	go func() { done <- b.Await(context.Background(), key, time.Second) }()

	deliver(t, b, key, "hello")
	if got := <-done; got.Kind != Replied || got.Text != "hello" {
		t.Errorf("Await = %+v, want Replied hello", got)
	}
}

func TestBrokerAwaitCancelSentinel(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	key := testKey()

	for _, sentinel := range []string{"x", "X", " x "} {
		done := make(chan Reply, 1)
		go func() { done <- b.Await(context.Background(), key, time.Second) }()

		deliver(t, b, key, sentinel)
		if got := <-done; got.Kind != Cancelled {
			t.Errorf("Await(%q) = %+v, want Cancelled", sentinel, got)
		}
	}
}

func TestBrokerAwaitTimeout(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	if got := b.Await(context.Background(), testKey(), 10*time.Millisecond); got.Kind != TimedOut {
		t.Errorf("Await = %+v, want TimedOut", got)
	}

	// The abandoned waiter must not swallow later messages.
	if b.Deliver(testKey(), "late") {
		t.Error("Deliver consumed a message after the waiter timed out")
	}
}

func TestBrokerAwaitContextCancelled(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := b.Await(ctx, testKey(), time.Minute); got.Kind != TimedOut {
		t.Errorf("Await with cancelled context = %+v, want TimedOut", got)
	}
}

func TestBrokerDeliverWithoutWaiter(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	if b.Deliver(testKey(), "hello") {
		t.Error("Deliver consumed a message with no waiter")
	}
}

func TestBrokerAcquireReleasesSlot(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	key := testKey()

	if err := b.Acquire(key); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := b.Acquire(key); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second Acquire = %v, want ErrSessionActive", err)
	}

	// A different chat is an independent session.
	other := key
	other.Chat = "chat-2"
	if err := b.Acquire(other); err != nil {
		t.Errorf("Acquire in another chat = %v, want nil", err)
	}

	b.Release(key)
	if err := b.Acquire(key); err != nil {
		t.Errorf("Acquire after Release = %v, want nil", err)
	}
}
