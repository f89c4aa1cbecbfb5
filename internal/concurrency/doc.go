// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded buffer primitives for the in-process transport objects.
// The socket pair keeps one ByteRing per direction for stream data;
// datagram directions queue whole records instead (see transport).
package concurrency
