// File: transport/ossocket_stub.go
//go:build !unix

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "github.com/momentics/ioplane/api"

// OSSocket is unavailable on this platform.
type OSSocket struct{}

// NewOSSocketPair reports that OS socket pairs are not supported here.
func NewOSSocketPair() (*OSSocket, *OSSocket, error) {
	return nil, nil, api.ErrNotSupported
}

func (s *OSSocket) FD() int                     { return -1 }
func (s *OSSocket) Read(p []byte) (int, error)  { return 0, api.ErrNotSupported }
func (s *OSSocket) Write(p []byte) (int, error) { return 0, api.ErrNotSupported }
func (s *OSSocket) Close() error                { return api.ErrNotSupported }
func (s *OSSocket) Duplicate() *OSSocket        { return s }
