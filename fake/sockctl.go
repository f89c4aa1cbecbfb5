// File: fake/sockctl.go
// Author: momentics <momentics@gmail.com>
//
// Recording socket-configuration control for tests.

package fake

import (
	"sync"

	"github.com/momentics/ioplane/api"
)

// SocketControl is a fake implementation of api.SocketControl that
// records every verb it receives.
type SocketControl struct {
	mu         sync.Mutex
	connected  []string
	bound      []string
	options    map[api.SocketOption]int
	connectErr error
	bindErr    error
	closed     bool
}

// NewSocketControl creates an empty recording control.
func NewSocketControl() *SocketControl {
	return &SocketControl{options: make(map[api.SocketOption]int)}
}

// Connect implements api.SocketControl.
func (c *SocketControl) Connect(addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = append(c.connected, addr)
	return nil
}

// Bind implements api.SocketControl.
func (c *SocketControl) Bind(addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bindErr != nil {
		return c.bindErr
	}
	c.bound = append(c.bound, addr)
	return nil
}

// GetOption implements api.SocketControl.
func (c *SocketControl) GetOption(opt api.SocketOption) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.options[opt]
	if !ok {
		return 0, api.ErrNotSupported
	}
	return v, nil
}

// SetOption implements api.SocketControl.
func (c *SocketControl) SetOption(opt api.SocketOption, value int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options[opt] = value
	return nil
}

// Close implements api.SocketControl.
func (c *SocketControl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// SetConnectError forces Connect to fail with err.
func (c *SocketControl) SetConnectError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectErr = err
}

// Connected returns the addresses Connect was called with.
func (c *SocketControl) Connected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.connected...)
}

// Bound returns the addresses Bind was called with.
func (c *SocketControl) Bound() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.bound...)
}

// Closed reports whether Close was called.
func (c *SocketControl) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
