// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

// Whence selects the reference point of a seek operation.
type Whence int

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

func (w Whence) String() string {
	switch w {
	case SeekStart:
		return "start"
	case SeekCurrent:
		return "current"
	case SeekEnd:
		return "end"
	default:
		return "unknown"
	}
}

// NodeKind enumerates the backend kinds a describe handshake can yield.
// The choice of backend is made exactly once, at construction time.
type NodeKind int

const (
	NodeUnknown NodeKind = iota
	NodeDirectory
	NodeFile
	NodeTTY
	NodePipe
	NodeMemFile
	NodeMemFileView
	NodeLogSink
	NodeSyncDatagramSocket
	NodeDatagramSocket
	NodeStreamSocket
	NodeRawSocket
	NodePacketSocket
)

func (k NodeKind) String() string {
	switch k {
	case NodeDirectory:
		return "directory"
	case NodeFile:
		return "file"
	case NodeTTY:
		return "tty"
	case NodePipe:
		return "pipe"
	case NodeMemFile:
		return "memfile"
	case NodeMemFileView:
		return "memfile-view"
	case NodeLogSink:
		return "logsink"
	case NodeSyncDatagramSocket:
		return "sync-datagram-socket"
	case NodeDatagramSocket:
		return "datagram-socket"
	case NodeStreamSocket:
		return "stream-socket"
	case NodeRawSocket:
		return "raw-socket"
	case NodePacketSocket:
		return "packet-socket"
	default:
		return "unknown"
	}
}

// AttrMask selects which attribute fields are valid in an Attr.
// The attribute set is an extensible contract: backends fill in the
// fields they know about and leave the rest unset.
type AttrMask uint32

const (
	AttrHasKind AttrMask = 1 << iota
	AttrHasContentSize
	AttrHasStorageSize
	AttrHasLinkCount
	AttrHasFlags
)

// Attr carries object attributes across the dispatch boundary.
type Attr struct {
	Has         AttrMask
	Kind        NodeKind
	ContentSize uint64
	StorageSize uint64
	LinkCount   uint64
	Flags       uint32
}

// PreludeSize reports the fixed protocol header sizes a datagram
// backend prepends on send and strips on receive.
type PreludeSize struct {
	TX int
	RX int
}

// SocketOptionLevel/SocketOptionName identify a socket option on the
// configuration channel. Values mirror the usual (level, optname)
// pairing without committing to any OS numbering.
type SocketOption struct {
	Level int
	Name  int
}
