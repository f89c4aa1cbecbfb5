// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Readiness multiplexer over I/O objects. The reactor is the external
// waiter the wait pair was designed for: wait_begin on the caller's
// thread, block elsewhere, wait_end to decode what fired. One
// goroutine per registration keeps the layer itself free of any
// internal scheduling.

package reactor

import (
	"context"
	"fmt"
	"sync"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
)

// Event reports which abstract signals fired on a registered object.
type Event struct {
	IO      *object.IO
	Signals api.Signals
}

// Handler consumes readiness events.
type Handler func(Event)

// Reactor drives readiness waits for registered I/O objects.
type Reactor struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	cancel context.CancelFunc
	ctx    context.Context
}

// New creates an idle reactor.
func New() *Reactor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reactor{ctx: ctx, cancel: cancel}
}

// Register begins waiting for signals on io and invokes handler every
// time any of them fires. The object's own I/O may proceed from other
// goroutines; only the wait pair is exercised here.
func (r *Reactor) Register(io *object.IO, signals api.Signals, handler Handler) error {
	if io == nil || handler == nil {
		return api.ErrInvalidArgument
	}
	target, err := io.WaitBegin(signals)
	if err != nil {
		return fmt.Errorf("wait begin: %w", err)
	}
	if target.Signaler == nil {
		return api.ErrNotSupported
	}

	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		observed, err := target.Signaler.Wait(ctx, target.Mask)
		if err != nil {
			return
		}
		// One-shot delivery: signals are level-triggered, so looping
		// here would spin while the condition stays asserted. The
		// handler re-registers when it wants the next edge.
		handler(Event{IO: io, Signals: io.WaitEnd(observed)})
	}()
	return nil
}

// Shutdown cancels every outstanding wait and blocks until the wait
// goroutines drain.
func (r *Reactor) Shutdown() error {
	r.cancel()
	r.wg.Wait()
	return nil
}
