// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the collaborator
// protocols the backends consume.

package fake

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/transport"
)

// Node protocol opcodes. The request is op byte, two u64 arguments,
// then payload; the reply is a status byte, one u64 result, then
// payload. One channel message per direction, strictly request/reply.
const (
	opDescribe byte = iota + 1
	opRead
	opWrite
	opSeek
	opClone
	opAttrGet
	opAttrSet
	opClose
)

// fileState is the node content shared by every clone of the node.
type fileState struct {
	mu      sync.Mutex
	content []byte
	flags   uint32
}

// NodeService serves the remote-node protocol for one client channel.
type NodeService struct {
	ch     *transport.Channel
	file   *fileState
	kind   api.NodeKind
	offset int64

	mu      sync.Mutex
	errRead error // forced error for the next read, test hook
}

// NewFileNode creates an in-memory file node served over a channel
// pair and returns the connected client plus the service for test
// inspection.
func NewFileNode(content []byte) (backend.NodeClient, *NodeService) {
	return newNode(content, api.NodeFile)
}

// NewDirNode creates a directory node.
func NewDirNode() (backend.NodeClient, *NodeService) {
	return newNode(nil, api.NodeDirectory)
}

// NewTTYNode creates a special (tty-like) node.
func NewTTYNode() (backend.NodeClient, *NodeService) {
	return newNode(nil, api.NodeTTY)
}

func newNode(content []byte, kind api.NodeKind) (backend.NodeClient, *NodeService) {
	client, server := transport.NewChannelPair()
	svc := &NodeService{
		ch:   server,
		file: &fileState{content: append([]byte(nil), content...)},
		kind: kind,
	}
	go svc.serve()
	return &nodeClient{ch: client}, svc
}

// Content returns a copy of the node's current content.
func (s *NodeService) Content() []byte {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()
	return append([]byte(nil), s.file.content...)
}

// FailNextRead makes the next read verb answer err.
func (s *NodeService) FailNextRead(err error) {
	s.mu.Lock()
	s.errRead = err
	s.mu.Unlock()
}

func (s *NodeService) serve() {
	for {
		msg, err := s.ch.Read()
		if err == api.ErrWouldBlock {
			if _, werr := s.ch.Readiness().Wait(context.Background(), transport.Readable|transport.PeerClosed); werr != nil {
				return
			}
			continue
		}
		if err != nil {
			return
		}
		if !s.handle(msg) {
			return
		}
	}
}

// handle serves one request and reports whether to keep serving.
func (s *NodeService) handle(msg transport.Message) bool {
	if len(msg.Data) < 17 {
		s.reply(api.ErrCodeInvalidArgument, 0, nil, nil)
		return true
	}
	op := msg.Data[0]
	a := binary.BigEndian.Uint64(msg.Data[1:9])
	payload := msg.Data[17:]

	switch op {
	case opDescribe:
		kind := make([]byte, 8)
		binary.BigEndian.PutUint64(kind, uint64(s.kind))
		s.reply(api.ErrCodeOK, 0, kind, nil)

	case opRead:
		s.mu.Lock()
		forced := s.errRead
		s.errRead = nil
		s.mu.Unlock()
		if forced != nil {
			s.reply(api.CodeOf(forced), 0, nil, nil)
			return true
		}
		s.file.mu.Lock()
		var out []byte
		if s.offset < int64(len(s.file.content)) {
			end := s.offset + int64(a)
			if end > int64(len(s.file.content)) {
				end = int64(len(s.file.content))
			}
			out = append([]byte(nil), s.file.content[s.offset:end]...)
			s.offset = end
		}
		s.file.mu.Unlock()
		s.reply(api.ErrCodeOK, uint64(len(out)), out, nil)

	case opWrite:
		s.file.mu.Lock()
		end := s.offset + int64(len(payload))
		if end > int64(len(s.file.content)) {
			grown := make([]byte, end)
			copy(grown, s.file.content)
			s.file.content = grown
		}
		copy(s.file.content[s.offset:end], payload)
		s.offset = end
		s.file.mu.Unlock()
		s.reply(api.ErrCodeOK, uint64(len(payload)), nil, nil)

	case opSeek:
		offset := int64(a)
		whence := api.Whence(binary.BigEndian.Uint64(msg.Data[9:17]))
		s.file.mu.Lock()
		size := int64(len(s.file.content))
		s.file.mu.Unlock()
		var base int64
		switch whence {
		case api.SeekStart:
			base = 0
		case api.SeekCurrent:
			base = s.offset
		case api.SeekEnd:
			base = size
		default:
			s.reply(api.ErrCodeInvalidArgument, 0, nil, nil)
			return true
		}
		target := base + offset
		if target < 0 {
			s.reply(api.ErrCodeInvalidArgument, 0, nil, nil)
			return true
		}
		s.offset = target
		s.reply(api.ErrCodeOK, uint64(target), nil, nil)

	case opClone:
		clientEnd, serverEnd := transport.NewChannelPair()
		dup := &NodeService{ch: serverEnd, file: s.file, kind: s.kind, offset: s.offset}
		go dup.serve()
		s.reply(api.ErrCodeOK, 0, nil, []transport.Handle{clientEnd})

	case opAttrGet:
		s.file.mu.Lock()
		attr := api.Attr{
			Has:         api.AttrHasContentSize | api.AttrHasLinkCount | api.AttrHasFlags,
			ContentSize: uint64(len(s.file.content)),
			LinkCount:   1,
			Flags:       s.file.flags,
		}
		s.file.mu.Unlock()
		s.reply(api.ErrCodeOK, 0, encodeAttr(attr), nil)

	case opAttrSet:
		attr, ok := decodeAttr(payload)
		if !ok {
			s.reply(api.ErrCodeInvalidArgument, 0, nil, nil)
			return true
		}
		if attr.Has&api.AttrHasFlags != 0 {
			s.file.mu.Lock()
			s.file.flags = attr.Flags
			s.file.mu.Unlock()
		}
		s.reply(api.ErrCodeOK, 0, nil, nil)

	case opClose:
		s.reply(api.ErrCodeOK, 0, nil, nil)
		_ = s.ch.Close()
		return false

	default:
		s.reply(api.ErrCodeNotSupported, 0, nil, nil)
	}
	return true
}

func (s *NodeService) reply(code api.ErrorCode, n uint64, payload []byte, handles []transport.Handle) {
	data := make([]byte, 9+len(payload))
	data[0] = byte(code)
	binary.BigEndian.PutUint64(data[1:9], n)
	copy(data[9:], payload)
	_ = s.ch.Write(transport.Message{Data: data, Handles: handles})
}

// nodeClient implements backend.NodeClient over the channel protocol.
type nodeClient struct {
	ch *transport.Channel
}

func (c *nodeClient) call(op byte, a, b uint64, payload []byte) (uint64, []byte, []transport.Handle, error) {
	data := make([]byte, 17+len(payload))
	data[0] = op
	binary.BigEndian.PutUint64(data[1:9], a)
	binary.BigEndian.PutUint64(data[9:17], b)
	copy(data[17:], payload)
	reply, err := c.ch.Call(context.Background(), transport.Message{Data: data})
	if err != nil {
		return 0, nil, nil, err
	}
	if len(reply.Data) < 9 {
		return 0, nil, nil, api.ErrInvalidArgument
	}
	if code := api.ErrorCode(reply.Data[0]); code != api.ErrCodeOK {
		return 0, nil, nil, api.FromCode(code)
	}
	n := binary.BigEndian.Uint64(reply.Data[1:9])
	return n, reply.Data[9:], reply.Handles, nil
}

func (c *nodeClient) Describe() (backend.NodeInfo, error) {
	_, payload, _, err := c.call(opDescribe, 0, 0, nil)
	if err != nil {
		return backend.NodeInfo{}, err
	}
	if len(payload) < 8 {
		return backend.NodeInfo{}, api.ErrInvalidArgument
	}
	return backend.NodeInfo{
		Kind:      api.NodeKind(binary.BigEndian.Uint64(payload)),
		Readiness: c.ch.Readiness(),
	}, nil
}

func (c *nodeClient) Read(p []byte) (int, error) {
	_, payload, _, err := c.call(opRead, uint64(len(p)), 0, nil)
	if err != nil {
		return 0, err
	}
	return copy(p, payload), nil
}

func (c *nodeClient) Write(p []byte) (int, error) {
	n, _, _, err := c.call(opWrite, 0, 0, p)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (c *nodeClient) Seek(offset int64, whence api.Whence) (int64, error) {
	n, _, _, err := c.call(opSeek, uint64(offset), uint64(whence), nil)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func (c *nodeClient) Clone() (backend.NodeClient, error) {
	_, _, handles, err := c.call(opClone, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	if len(handles) != 1 {
		return nil, api.ErrInvalidArgument
	}
	ch, ok := handles[0].(*transport.Channel)
	if !ok {
		return nil, api.ErrInvalidArgument
	}
	return &nodeClient{ch: ch}, nil
}

func (c *nodeClient) AttrGet() (api.Attr, error) {
	_, payload, _, err := c.call(opAttrGet, 0, 0, nil)
	if err != nil {
		return api.Attr{}, err
	}
	attr, ok := decodeAttr(payload)
	if !ok {
		return api.Attr{}, api.ErrInvalidArgument
	}
	return attr, nil
}

func (c *nodeClient) AttrSet(attr api.Attr) error {
	_, _, _, err := c.call(opAttrSet, 0, 0, encodeAttr(attr))
	return err
}

func (c *nodeClient) Close() error {
	_, _, _, err := c.call(opClose, 0, 0, nil)
	cerr := c.ch.Close()
	if err != nil {
		return err
	}
	return cerr
}

const attrWireSize = 4 + 8 + 8 + 8 + 8 + 4

func encodeAttr(attr api.Attr) []byte {
	out := make([]byte, attrWireSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(attr.Has))
	binary.BigEndian.PutUint64(out[4:12], uint64(attr.Kind))
	binary.BigEndian.PutUint64(out[12:20], attr.ContentSize)
	binary.BigEndian.PutUint64(out[20:28], attr.StorageSize)
	binary.BigEndian.PutUint64(out[28:36], attr.LinkCount)
	binary.BigEndian.PutUint32(out[36:40], attr.Flags)
	return out
}

func decodeAttr(p []byte) (api.Attr, bool) {
	if len(p) < attrWireSize {
		return api.Attr{}, false
	}
	return api.Attr{
		Has:         api.AttrMask(binary.BigEndian.Uint32(p[0:4])),
		Kind:        api.NodeKind(binary.BigEndian.Uint64(p[4:12])),
		ContentSize: binary.BigEndian.Uint64(p[12:20]),
		StorageSize: binary.BigEndian.Uint64(p[20:28]),
		LinkCount:   binary.BigEndian.Uint64(p[28:36]),
		Flags:       binary.BigEndian.Uint32(p[36:40]),
	}, true
}
