package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func testHub(replay ReplayFunc) *Hub {
	return NewHub(slog.Default(), replay)
}

func TestHub_Stats_Initial(t *testing.T) {
	h := testHub(nil)

	stats := h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients, got %v", stats["connectedClients"])
	}
	if stats["totalMessages"].(int64) != 0 {
		t.Errorf("Expected 0 total messages, got %v", stats["totalMessages"])
	}
}

func TestHub_BroadcastAndStats(t *testing.T) {
	h := testHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	h.Broadcast(MessageStats, map[string]any{"total_transactions": 1})
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["totalMessages"].(int64) != 1 {
		t.Errorf("Expected 1 total message, got %v", stats["totalMessages"])
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := testHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	stats := h.Stats()
	if stats["connectedClients"].(int) != 1 {
		t.Errorf("Expected 1 connected client, got %v", stats["connectedClients"])
	}
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak 1, got %v", stats["peakClients"])
	}

	h.unregister <- client
	time.Sleep(50 * time.Millisecond)

	stats = h.Stats()
	if stats["connectedClients"].(int) != 0 {
		t.Errorf("Expected 0 connected clients after unregister, got %v", stats["connectedClients"])
	}
	// Peak should still be 1
	if stats["peakClients"].(int64) != 1 {
		t.Errorf("Expected peak still 1, got %v", stats["peakClients"])
	}
}

func TestHub_BroadcastToClient(t *testing.T) {
	h := testHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	h.Broadcast(MessageNewTransaction, map[string]any{"transaction_id": "txn_1", "amount": 5.0})

	select {
	case msg := <-client.send:
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("Broadcast payload not valid JSON: %v", err)
		}
		if env.Type != MessageNewTransaction {
			t.Errorf("Expected type %q, got %q", MessageNewTransaction, env.Type)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestHub_ReplayOnRegister(t *testing.T) {
	replay := func() []Envelope {
		return []Envelope{
			{Type: MessageStats, Data: map[string]any{"total_transactions": 7}},
			{Type: MessageRealtimeTransaction, Data: map[string]any{"transaction_id": "txn_old"}},
		}
	}
	h := testHub(replay)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	client := &Client{
		hub:  h,
		send: make(chan []byte, 256),
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	for _, want := range []string{MessageStats, MessageRealtimeTransaction} {
		select {
		case msg := <-client.send:
			var env Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				t.Fatalf("Replay payload not valid JSON: %v", err)
			}
			if env.Type != want {
				t.Errorf("Expected replay type %q, got %q", want, env.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for replay message %q", want)
		}
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := testHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Zero-capacity buffer: the first broadcast cannot be queued.
	client := &Client{
		hub:  h,
		send: make(chan []byte),
	}

	h.register <- client
	time.Sleep(50 * time.Millisecond)

	h.Broadcast(MessageStats, map[string]any{})
	time.Sleep(100 * time.Millisecond)

	if n := h.SubscriberCount(); n != 0 {
		t.Errorf("Expected slow client to be dropped, still have %d", n)
	}
}

func TestHub_ContextCancellation(t *testing.T) {
	h := testHub(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Hub stopped
	case <-time.After(2 * time.Second):
		t.Error("Hub did not stop after context cancellation")
	}
}
