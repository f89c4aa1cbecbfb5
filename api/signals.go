// File: api/signals.go
// Author: momentics <momentics@gmail.com>
//
// Abstract readiness signals exposed by I/O objects.
//
// These are the signal bits a POSIX-style layer above reasons about.
// Backends translate them to and from the signal bits of the transport
// object they own (see transport.Signals) in wait_begin/wait_end.

package api

// Signals is a bitmask of abstract readiness conditions.
type Signals uint32

const (
	// SignalReadable means a read will make progress.
	SignalReadable Signals = 1 << iota
	// SignalWritable means a write will make progress.
	SignalWritable
	// SignalReadDisabled means the read direction was shut down.
	SignalReadDisabled
	// SignalWriteDisabled means the write direction was shut down.
	SignalWriteDisabled
	// SignalPeerClosed means the remote side of the transport is gone.
	SignalPeerClosed
	// SignalError means the object observed a terminal transport error.
	SignalError
)

// SignalsAll selects every defined signal bit.
const SignalsAll = SignalReadable | SignalWritable | SignalReadDisabled |
	SignalWriteDisabled | SignalPeerClosed | SignalError

func (s Signals) String() string {
	const names = "readable|writable|read-disabled|write-disabled|peer-closed|error"
	if s == 0 {
		return "none"
	}
	out := ""
	bit := Signals(1)
	for _, name := range splitNames(names) {
		if s&bit != 0 {
			if out != "" {
				out += "+"
			}
			out += name
		}
		bit <<= 1
	}
	return out
}

func splitNames(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
