// File: transport/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package transport implements the kernel-style transport objects an
// I/O object takes ownership of at construction time: message channels,
// byte-stream and datagram socket pairs, mmap-backed memory regions,
// a structured-log sink, and wrapped OS descriptors.
//
// Every object is exclusively owned by one I/O object at a time.
// Duplicate produces another owner of the same underlying resource;
// the resource is released when the last owner calls Close.
package transport
