// File: backend/create.go
// Author: momentics <momentics@gmail.com>
//
// Construction factory. The backend choice is made exactly once, from
// the capability-description handshake: a finite switch over node
// kinds mapping to initializer functions, not a type hierarchy.

package backend

import (
	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/object"
)

// Create performs the describe handshake on client and constructs the
// matching backend in st. Handles delivered by the handshake transfer
// into the new object.
func Create(st *object.Storage, client NodeClient) (*object.IO, error) {
	if client == nil {
		return nil, api.ErrInvalidArgument
	}
	info, err := client.Describe()
	if err != nil {
		return nil, err
	}
	return CreateWithInfo(st, client, info)
}

// CreateWithInfo constructs the backend selected by an already
// completed handshake. When no backend can be built — unknown kind or
// a failed initializer — the delivered handles are released, the node
// connection is closed, and st stays untouched.
func CreateWithInfo(st *object.Storage, client NodeClient, info NodeInfo) (*object.IO, error) {
	io, err := createBackend(st, client, info)
	if err != nil {
		info.releaseHandles()
		if client != nil {
			_ = client.Close()
		}
		return nil, err
	}
	return io, nil
}

func createBackend(st *object.Storage, client NodeClient, info NodeInfo) (*object.IO, error) {
	switch info.Kind {
	case api.NodeDirectory:
		return RemoteDirInit(st, client)

	case api.NodeFile:
		return RemoteFileInit(st, client, info.Readiness)

	case api.NodeTTY:
		return RemoteTTYInit(st, client, info.Readiness)

	case api.NodePipe:
		io, err := PipeInit(st, info.Socket)
		return retireClient(client, io, err)

	case api.NodeMemFile:
		io, err := MemFileInit(st, info.Region)
		return retireClient(client, io, err)

	case api.NodeMemFileView:
		length := info.RegionLength
		if length == 0 && info.Region != nil {
			length = info.Region.Size() - info.RegionStart
		}
		return MemFileViewInit(st, info.Region, client, info.RegionStart, length, info.RegionSeek)

	case api.NodeLogSink:
		io, err := LogSinkInit(st, info.Log)
		return retireClient(client, io, err)

	case api.NodeStreamSocket:
		io, err := StreamSocketInit(st, info.Socket, info.Control, info.Connected)
		return retireClient(client, io, err)

	case api.NodeDatagramSocket:
		io, err := DatagramSocketInit(st, info.Socket, info.Control, info.Prelude)
		return retireClient(client, io, err)

	case api.NodeSyncDatagramSocket:
		io, err := SyncDatagramSocketInit(st, info.Message, info.Control, info.Readiness)
		return retireClient(client, io, err)

	case api.NodeRawSocket:
		io, err := RawSocketInit(st, info.Message, info.Control, info.Readiness)
		return retireClient(client, io, err)

	case api.NodePacketSocket:
		io, err := PacketSocketInit(st, info.Message, info.Control, info.Readiness)
		return retireClient(client, io, err)

	default:
		return nil, api.ErrNotSupported
	}
}

// retireClient closes the node connection once a constructed backend
// has no further use for it: the handshake was its only job. Failed
// constructions leave the close to CreateWithInfo.
func retireClient(client NodeClient, io *object.IO, err error) (*object.IO, error) {
	if err == nil && client != nil {
		_ = client.Close()
	}
	return io, err
}
