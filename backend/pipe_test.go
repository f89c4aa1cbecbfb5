package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
)

func newPipe(t *testing.T) (*object.IO, *transport.Socket) {
	t.Helper()
	local, peer, err := transport.NewSocketPair(transport.StreamSocket, 256)
	require.NoError(t, err)
	st := &object.Storage{}
	io, err := backend.PipeInit(st, local)
	require.NoError(t, err)
	return io, peer
}

func TestPipe_RejectsNilSocket(t *testing.T) {
	_, err := backend.PipeInit(&object.Storage{}, nil)
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestPipe_WriteRead(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()

	n, err := io.Write([]byte("through the pipe"))
	require.NoError(t, err)
	require.Equal(t, 16, n)

	p := make([]byte, 32)
	n, err = peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "through the pipe", string(p[:n]))
}

// TestPipe_WriteVectorGathersInOrder: a multi-entry descriptor arrives
// at the peer as one in-order byte stream.
func TestPipe_WriteVectorGathersInOrder(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()

	n, err := io.WriteVector([][]byte{[]byte("ab"), nil, []byte("cd"), []byte("ef")})
	require.NoError(t, err)
	require.Equal(t, 6, n)

	p := make([]byte, 16)
	n, err = peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "abcdef", string(p[:n]))
}

// TestPipe_ReadVectorScattersAcrossEntries: buffered bytes fill the
// descriptor front to back, crossing entry boundaries.
func TestPipe_ReadVectorScattersAcrossEntries(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()

	_, err := peer.Write([]byte("wxyz"))
	require.NoError(t, err)

	v1 := make([]byte, 1)
	v2 := make([]byte, 3)
	n, err := io.ReadVector([][]byte{v1, v2})
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "w", string(v1))
	require.Equal(t, "xyz", string(v2))
}

// TestPipe_ReadVectorShortStops: when the buffer drains mid-walk the
// remaining entries are left untouched and the partial count is
// success.
func TestPipe_ReadVectorShortStops(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()

	_, err := peer.Write([]byte("abc"))
	require.NoError(t, err)

	v1 := make([]byte, 2)
	v2 := make([]byte, 8)
	v3 := make([]byte, 8)
	n, err := io.ReadVector([][]byte{v1, v2, v3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "ab", string(v1))
	require.Equal(t, byte('c'), v2[0])
}

func TestPipe_EmptyReadWouldBlock(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()
	_, err := io.Read(make([]byte, 4))
	require.ErrorIs(t, err, api.ErrWouldBlock)
}

func TestPipe_WaitPair(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()

	target, err := io.WaitBegin(api.SignalReadable | api.SignalPeerClosed)
	require.NoError(t, err)
	require.NotNil(t, target.Signaler)
	require.Equal(t, transport.Readable|transport.PeerClosed, target.Mask)

	_, err = peer.Write([]byte("wake"))
	require.NoError(t, err)
	require.NotZero(t, target.Signaler.State()&transport.Readable)
	require.Equal(t, api.SignalReadable, io.WaitEnd(transport.Readable))
}

func TestPipe_CloneSharesEndpoint(t *testing.T) {
	io, peer := newPipe(t)
	defer peer.Close()

	st := &object.Storage{}
	clone, err := io.Clone(st)
	require.NoError(t, err)

	require.NoError(t, io.Close())
	_, err = clone.Write([]byte("via clone"))
	require.NoError(t, err)

	p := make([]byte, 16)
	n, err := peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "via clone", string(p[:n]))
	require.NoError(t, clone.Close())
}

// TestPipe_ReleaseHandsBackSocket: the raw endpoint survives the
// object and keeps working.
func TestPipe_ReleaseHandsBackSocket(t *testing.T) {
	io, peer := newPipe(t)
	defer peer.Close()

	h, err := io.Release()
	require.NoError(t, err)
	sock, ok := h.(*transport.Socket)
	require.True(t, ok, "released handle must be the socket endpoint")

	_, err = sock.Write([]byte("raw"))
	require.NoError(t, err)
	p := make([]byte, 8)
	n, err := peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "raw", string(p[:n]))
	require.NoError(t, sock.Close())
}

func TestPipe_Attr(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()

	attr, err := io.AttrGet()
	require.NoError(t, err)
	require.NotZero(t, attr.Has&api.AttrHasKind)
	require.Equal(t, api.NodePipe, attr.Kind)
	require.Equal(t, uint64(256), attr.StorageSize)
}

func TestPipe_SeekNotSupported(t *testing.T) {
	io, peer := newPipe(t)
	defer io.Close()
	defer peer.Close()
	_, err := io.Seek(0, api.SeekStart)
	require.ErrorIs(t, err, api.ErrNotSupported)
}
