package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/fake"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
)

func newStreamSocket(t *testing.T, connected bool) (*object.IO, *transport.Socket, *fake.SocketControl) {
	t.Helper()
	local, peer, err := transport.NewSocketPair(transport.StreamSocket, 256)
	require.NoError(t, err)
	ctl := fake.NewSocketControl()
	st := &object.Storage{}
	io, err := backend.StreamSocketInit(st, local, ctl, connected)
	require.NoError(t, err)
	return io, peer, ctl
}

func TestStreamSocket_RejectsWrongKind(t *testing.T) {
	local, peer, err := transport.NewSocketPair(transport.DatagramSocket, 256)
	require.NoError(t, err)
	defer local.Close()
	defer peer.Close()

	_, err = backend.StreamSocketInit(&object.Storage{}, local, fake.NewSocketControl(), false)
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

// TestStreamSocket_UnconnectedRejectsIO: byte I/O before connect fails
// without touching the transport.
func TestStreamSocket_UnconnectedRejectsIO(t *testing.T) {
	io, peer, _ := newStreamSocket(t, false)
	defer io.Close()
	defer peer.Close()

	_, err := io.Write([]byte("early"))
	require.ErrorIs(t, err, api.ErrNotConnected)
	_, err = io.Read(make([]byte, 4))
	require.ErrorIs(t, err, api.ErrNotConnected)
	_, err = io.WriteVector([][]byte{[]byte("early")})
	require.ErrorIs(t, err, api.ErrNotConnected)
	require.Zero(t, peer.Readiness().State()&transport.Readable)
}

func TestStreamSocket_ConnectEnablesIO(t *testing.T) {
	io, peer, ctl := newStreamSocket(t, false)
	defer io.Close()
	defer peer.Close()

	require.NoError(t, backend.StreamSocketConnect(io, "192.0.2.1:443"))
	require.Equal(t, []string{"192.0.2.1:443"}, ctl.Connected())

	n, err := io.Write([]byte("payload"))
	require.NoError(t, err)
	require.Equal(t, 7, n)

	p := make([]byte, 16)
	n, err = peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "payload", string(p[:n]))
}

// TestStreamSocket_ConnectFailureStaysUnconnected: a failed connect
// verb leaves the object rejecting byte I/O.
func TestStreamSocket_ConnectFailureStaysUnconnected(t *testing.T) {
	io, peer, ctl := newStreamSocket(t, false)
	defer io.Close()
	defer peer.Close()

	ctl.SetConnectError(api.ErrPeerClosed)
	err := backend.StreamSocketConnect(io, "192.0.2.1:443")
	require.ErrorIs(t, err, api.ErrPeerClosed)

	_, err = io.Write([]byte("x"))
	require.ErrorIs(t, err, api.ErrNotConnected)
}

func TestStreamSocket_Bind(t *testing.T) {
	io, peer, ctl := newStreamSocket(t, false)
	defer io.Close()
	defer peer.Close()

	require.NoError(t, backend.StreamSocketBind(io, "0.0.0.0:8080"))
	require.Equal(t, []string{"0.0.0.0:8080"}, ctl.Bound())
}

func TestStreamSocket_PreconnectedIO(t *testing.T) {
	io, peer, _ := newStreamSocket(t, true)
	defer io.Close()
	defer peer.Close()

	_, err := peer.Write([]byte("inbound"))
	require.NoError(t, err)

	v1 := make([]byte, 2)
	v2 := make([]byte, 8)
	n, err := io.ReadVector([][]byte{v1, v2})
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, "in", string(v1))
	require.Equal(t, "bound", string(v2[:5]))
}

func TestStreamSocket_AttrReflectsConnection(t *testing.T) {
	io, peer, _ := newStreamSocket(t, false)
	defer io.Close()
	defer peer.Close()

	attr, err := io.AttrGet()
	require.NoError(t, err)
	require.Equal(t, api.NodeStreamSocket, attr.Kind)
	require.Zero(t, attr.Flags)

	require.NoError(t, backend.StreamSocketConnect(io, "addr"))
	attr, err = io.AttrGet()
	require.NoError(t, err)
	require.Equal(t, uint32(1), attr.Flags)
}

func TestStreamSocket_CloseReleasesBoth(t *testing.T) {
	io, peer, ctl := newStreamSocket(t, true)
	defer peer.Close()

	require.NoError(t, io.Close())
	require.True(t, ctl.Closed())
	require.NotZero(t, peer.Readiness().State()&transport.PeerClosed)
}

func TestStreamSocket_WaitPair(t *testing.T) {
	io, peer, _ := newStreamSocket(t, true)
	defer io.Close()
	defer peer.Close()

	target, err := io.WaitBegin(api.SignalReadable)
	require.NoError(t, err)
	require.Equal(t, transport.Readable, target.Mask)

	_, err = peer.Write([]byte("wake"))
	require.NoError(t, err)
	require.Equal(t, api.SignalReadable, io.WaitEnd(transport.Readable))
}
