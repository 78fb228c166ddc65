package ws

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHubRunStopsOnContextCancel(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	// The loop is serving before we cancel.
	hub.Broadcast(Event{Type: "chat", SquadID: 1, Content: "hello"})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
