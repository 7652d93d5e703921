package beacon

import (
	"context"
	"testing"
	"time"

	"github.com/mojtab23/mojika/internal/wire"
)

func TestSendSignalRoundTrip(t *testing.T) {
	self := wire.DiscoveryMessage{ID: "peer-a", Name: "Alice", ServicePort: 4000}
	d, err := New(self)
	if err != nil {
		t.Skipf("multicast unavailable in this sandbox: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Serve(ctx) }()

	select {
	case ev := <-d.Events():
		if ev.Message.ID != self.ID {
			t.Fatalf("got id %q, want %q", ev.Message.ID, self.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for self beacon via loopback")
	}

	cancel()
	<-done
}

func TestJoinAllInterfacesSucceedsWithLoopback(t *testing.T) {
	d, err := New(wire.DiscoveryMessage{ID: "peer-b", Name: "Bob", ServicePort: 4001})
	if err != nil {
		t.Skipf("multicast unavailable in this sandbox: %v", err)
	}
	defer d.Close()
	// New already joined every interface; reaching here without error means
	// at least one interface joined, per joinAllInterfaces' "at least one" rule.
}
