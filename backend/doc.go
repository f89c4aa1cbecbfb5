// File: backend/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package backend implements the concrete I/O object kinds: remote
// nodes reached over a message-channel protocol, byte pipes, memory-
// region files and read-only views, the log sink, and the socket
// family. Each backend owns exactly one transport handle, placement-
// constructs its state into caller-supplied object storage, and fills
// a static ops table with the operations it supports.
//
// Backends have two states, open and closed. Close releases the
// transport handle exactly once; a second close, or any operation
// after close, is a caller contract violation.
package backend
