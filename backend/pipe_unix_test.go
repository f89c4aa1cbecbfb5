//go:build unix

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
)

// TestPipe_OverOSStream: a wrapped OS descriptor serves the same pipe
// surface as the in-process socket pair.
func TestPipe_OverOSStream(t *testing.T) {
	local, peer, err := transport.NewOSSocketPair()
	require.NoError(t, err)
	defer peer.Close()

	st := &object.Storage{}
	io, err := backend.PipeStreamInit(st, local)
	require.NoError(t, err)
	defer io.Close()

	n, err := io.WriteVector([][]byte{[]byte("kernel "), []byte("pipe")})
	require.NoError(t, err)
	require.Equal(t, 11, n)

	p := make([]byte, 16)
	n, err = peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "kernel pipe", string(p[:n]))

	_, err = peer.Write([]byte("reply"))
	require.NoError(t, err)
	n, err = io.Read(p)
	require.NoError(t, err)
	require.Equal(t, "reply", string(p[:n]))
}

// TestPipe_OSStreamHasNoReadiness: descriptor-backed pipes carry no
// in-process signaler and report no buffer size.
func TestPipe_OSStreamHasNoReadiness(t *testing.T) {
	local, peer, err := transport.NewOSSocketPair()
	require.NoError(t, err)
	defer peer.Close()

	io, err := backend.PipeStreamInit(&object.Storage{}, local)
	require.NoError(t, err)
	defer io.Close()

	_, err = io.WaitBegin(api.SignalReadable)
	require.ErrorIs(t, err, api.ErrNotSupported)

	attr, err := io.AttrGet()
	require.NoError(t, err)
	require.Equal(t, api.NodePipe, attr.Kind)
	require.Zero(t, attr.Has&api.AttrHasStorageSize)
}

func TestPipe_OSStreamClone(t *testing.T) {
	local, peer, err := transport.NewOSSocketPair()
	require.NoError(t, err)
	defer peer.Close()

	io, err := backend.PipeStreamInit(&object.Storage{}, local)
	require.NoError(t, err)

	clone, err := io.Clone(&object.Storage{})
	require.NoError(t, err)
	require.NoError(t, io.Close())

	_, err = clone.Write([]byte("survivor"))
	require.NoError(t, err)
	p := make([]byte, 16)
	n, err := peer.Read(p)
	require.NoError(t, err)
	require.Equal(t, "survivor", string(p[:n]))
	require.NoError(t, clone.Close())
}
