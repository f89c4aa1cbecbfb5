package reactor_test

import (
	"testing"
	"time"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/reactor"
	"github.com/momentics/ioplane/transport"
)

func newPipeObject(t *testing.T) (*object.IO, *transport.Socket) {
	t.Helper()
	local, peer, err := transport.NewSocketPair(transport.StreamSocket, 64)
	if err != nil {
		t.Fatalf("NewSocketPair failed: %v", err)
	}
	io, err := backend.PipeInit(&object.Storage{}, local)
	if err != nil {
		t.Fatalf("PipeInit failed: %v", err)
	}
	return io, peer
}

// TestReactor_DeliversReadableEvent: a registration fires once the
// peer makes the object readable.
func TestReactor_DeliversReadableEvent(t *testing.T) {
	io, peer := newPipeObject(t)
	defer io.Close()
	defer peer.Close()

	r := reactor.New()
	events := make(chan reactor.Event, 1)
	err := r.Register(io, api.SignalReadable, func(ev reactor.Event) {
		events <- ev
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := peer.Write([]byte("event")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	select {
	case ev := <-events:
		if ev.IO != io {
			t.Error("Event must carry the registered object")
		}
		if ev.Signals&api.SignalReadable == 0 {
			t.Errorf("Expected readable, got %v", ev.Signals)
		}
	case <-time.After(time.Second):
		t.Fatal("No event delivered")
	}
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

// TestReactor_ImmediateConditionFires: a condition already asserted at
// registration time is delivered without a new edge.
func TestReactor_ImmediateConditionFires(t *testing.T) {
	io, peer := newPipeObject(t)
	defer io.Close()
	defer peer.Close()

	if _, err := peer.Write([]byte("already there")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r := reactor.New()
	defer r.Shutdown()
	events := make(chan reactor.Event, 1)
	if err := r.Register(io, api.SignalReadable, func(ev reactor.Event) { events <- ev }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("Pre-asserted condition never fired")
	}
}

func TestReactor_RejectsBadRegistrations(t *testing.T) {
	io, peer := newPipeObject(t)
	defer io.Close()
	defer peer.Close()

	r := reactor.New()
	defer r.Shutdown()

	if err := r.Register(nil, api.SignalReadable, func(reactor.Event) {}); err != api.ErrInvalidArgument {
		t.Errorf("nil object: expected ErrInvalidArgument, got %v", err)
	}
	if err := r.Register(io, api.SignalReadable, nil); err != api.ErrInvalidArgument {
		t.Errorf("nil handler: expected ErrInvalidArgument, got %v", err)
	}
}

// TestReactor_WaitlessObjectNotSupported: objects outside the wait
// capability cannot be registered.
func TestReactor_WaitlessObjectNotSupported(t *testing.T) {
	region, err := transport.NewRegion(1)
	if err != nil {
		t.Fatalf("NewRegion failed: %v", err)
	}
	io, err := backend.MemFileInit(&object.Storage{}, region)
	if err != nil {
		t.Fatalf("MemFileInit failed: %v", err)
	}
	defer io.Close()

	r := reactor.New()
	defer r.Shutdown()
	if err := r.Register(io, api.SignalReadable, func(reactor.Event) {}); err == nil {
		t.Fatal("Expected registration to fail on a waitless object")
	}
}

// TestReactor_ShutdownDrainsWaiters: shutdown returns even while a
// registration is still blocked.
func TestReactor_ShutdownDrainsWaiters(t *testing.T) {
	io, peer := newPipeObject(t)
	defer io.Close()
	defer peer.Close()

	r := reactor.New()
	if err := r.Register(io, api.SignalReadable, func(reactor.Event) {
		t.Error("Handler must not run after shutdown")
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = r.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown hung on a blocked waiter")
	}
}
