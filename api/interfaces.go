// File: api/interfaces.go
// Author: momentics <momentics@gmail.com>
//
// Collaborator protocol contracts consumed by the backends.

package api

// ByteStream is the payload contract shared by the in-process socket
// pair and wrapped OS descriptors. Short reads and writes are success.
type ByteStream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// MessageSocketClient carries payload I/O for channel-backed sockets
// (synchronous datagram, raw, packet): each send and receive is one
// synchronous message exchange with the socket service.
type MessageSocketClient interface {
	// SendMsg transmits one payload and returns the bytes accepted.
	SendMsg(p []byte) (int, error)
	// RecvMsg receives one payload into p, truncating to len(p).
	RecvMsg(p []byte) (int, error)
	Close() error
}

// SocketControl is the socket-configuration protocol: connection
// management and options travel over a control channel, independent
// of the payload socket.
type SocketControl interface {
	Connect(addr string) error
	Bind(addr string) error
	GetOption(opt SocketOption) (int, error)
	SetOption(opt SocketOption, value int) error
	Close() error
}
