package backend_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/fake"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
)

func newDgramSocket(t *testing.T, prelude api.PreludeSize) (*object.IO, *transport.Socket) {
	t.Helper()
	local, peer, err := transport.NewSocketPair(transport.DatagramSocket, 4096)
	require.NoError(t, err)
	st := &object.Storage{}
	io, err := backend.DatagramSocketInit(st, local, fake.NewSocketControl(), prelude)
	require.NoError(t, err)
	return io, peer
}

func TestDatagramSocket_RejectsWrongKind(t *testing.T) {
	local, peer, err := transport.NewSocketPair(transport.StreamSocket, 256)
	require.NoError(t, err)
	defer local.Close()
	defer peer.Close()

	_, err = backend.DatagramSocketInit(&object.Storage{}, local, fake.NewSocketControl(), api.PreludeSize{})
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

// TestDatagramSocket_SendFramesPayload: one send puts exactly
// prelude+payload bytes on the wire, prelude zero-filled.
func TestDatagramSocket_SendFramesPayload(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{TX: 8, RX: 8})
	defer io.Close()
	defer peer.Close()

	n, err := io.Write([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, 4, n, "reported count is payload bytes, not wire bytes")

	wire := make([]byte, 64)
	wn, err := peer.Read(wire)
	require.NoError(t, err)
	require.Equal(t, 12, wn)
	require.Equal(t, make([]byte, 8), wire[:8])
	require.Equal(t, "ping", string(wire[8:wn]))
}

// TestDatagramSocket_RecvStripsPrelude: the receive path hides the
// wire header from the caller.
func TestDatagramSocket_RecvStripsPrelude(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{TX: 8, RX: 8})
	defer io.Close()
	defer peer.Close()

	_, err := peer.Write(append(make([]byte, 8), []byte("pong")...))
	require.NoError(t, err)

	p := make([]byte, 16)
	n, err := io.Read(p)
	require.NoError(t, err)
	require.Equal(t, "pong", string(p[:n]))
}

func TestDatagramSocket_ShortFrameIsInvalid(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{TX: 8, RX: 8})
	defer io.Close()
	defer peer.Close()

	_, err := peer.Write(make([]byte, 4))
	require.NoError(t, err)
	_, err = io.Read(make([]byte, 16))
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

// TestDatagramSocket_WriteVectorIsOneDatagram: the descriptor gathers
// into a single frame; entry boundaries never split datagrams.
func TestDatagramSocket_WriteVectorIsOneDatagram(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{TX: 2, RX: 2})
	defer io.Close()
	defer peer.Close()

	n, err := io.WriteVector([][]byte{[]byte("one"), []byte("two")})
	require.NoError(t, err)
	require.Equal(t, 6, n)

	wire := make([]byte, 64)
	wn, err := peer.Read(wire)
	require.NoError(t, err)
	require.Equal(t, 8, wn)
	require.Equal(t, "onetwo", string(wire[2:wn]))
}

// TestDatagramSocket_ReadVectorTruncates: payload beyond the
// descriptor total is discarded with the datagram.
func TestDatagramSocket_ReadVectorTruncates(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{TX: 2, RX: 2})
	defer io.Close()
	defer peer.Close()

	_, err := peer.Write(append([]byte{0, 0}, []byte("abcdefgh")...))
	require.NoError(t, err)

	v1 := make([]byte, 2)
	v2 := make([]byte, 3)
	n, err := io.ReadVector([][]byte{v1, v2})
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.True(t, bytes.Equal(v1, []byte("ab")))
	require.True(t, bytes.Equal(v2, []byte("cde")))

	_, err = io.Read(make([]byte, 16))
	require.ErrorIs(t, err, api.ErrWouldBlock, "truncated tail must be discarded")
}

func TestDatagramSocket_ZeroPrelude(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{})
	defer io.Close()
	defer peer.Close()

	_, err := io.Write([]byte("bare"))
	require.NoError(t, err)
	wire := make([]byte, 16)
	n, err := peer.Read(wire)
	require.NoError(t, err)
	require.Equal(t, "bare", string(wire[:n]))
}

func TestDatagramSocket_Attr(t *testing.T) {
	io, peer := newDgramSocket(t, api.PreludeSize{TX: 8, RX: 8})
	defer io.Close()
	defer peer.Close()

	attr, err := io.AttrGet()
	require.NoError(t, err)
	require.Equal(t, api.NodeDatagramSocket, attr.Kind)
	require.Equal(t, uint64(4096), attr.StorageSize)
}
