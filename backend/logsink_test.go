package backend_test

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ioplane/api"
	"github.com/momentics/ioplane/backend"
	"github.com/momentics/ioplane/object"
	"github.com/momentics/ioplane/transport"
)

func newLogSink(t *testing.T) (*object.IO, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	st := &object.Storage{}
	io, err := backend.LogSinkInit(st, transport.NewLogWithLogger("sink", logger))
	require.NoError(t, err)
	return io, hook
}

func TestLogSink_RejectsNilLog(t *testing.T) {
	_, err := backend.LogSinkInit(&object.Storage{}, nil)
	require.ErrorIs(t, err, api.ErrInvalidArgument)
}

// TestLogSink_OneRecordPerWrite: every write call is exactly one
// record, never split or merged.
func TestLogSink_OneRecordPerWrite(t *testing.T) {
	io, hook := newLogSink(t)
	defer io.Close()

	n, err := io.Write([]byte("first record"))
	require.NoError(t, err)
	require.Equal(t, 12, n)
	n, err = io.Write([]byte("second record"))
	require.NoError(t, err)
	require.Equal(t, 13, n)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	require.Equal(t, "first record", entries[0].Message)
	require.Equal(t, "second record", entries[1].Message)
}

// TestLogSink_WriteVectorIsOneRecord: the whole descriptor gathers
// into a single record with no short transfer.
func TestLogSink_WriteVectorIsOneRecord(t *testing.T) {
	io, hook := newLogSink(t)
	defer io.Close()

	n, err := io.WriteVector([][]byte{[]byte("a "), []byte("gathered "), []byte("record")})
	require.NoError(t, err)
	require.Equal(t, 17, n)

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	require.Equal(t, "a gathered record", entries[0].Message)
}

func TestLogSink_TruncatesLongRecords(t *testing.T) {
	io, hook := newLogSink(t)
	defer io.Close()

	payload := strings.Repeat("x", transport.MaxRecord*2)
	n, err := io.Write([]byte(payload))
	require.NoError(t, err)
	// The caller's bytes are all accepted even when the record is cut.
	require.Equal(t, len(payload), n)
	require.Len(t, hook.LastEntry().Message, transport.MaxRecord)
}

func TestLogSink_IsWriteOnly(t *testing.T) {
	io, hook := newLogSink(t)
	defer io.Close()

	_, err := io.Read(make([]byte, 4))
	require.ErrorIs(t, err, api.ErrNotSupported)
	_, err = io.ReadVector([][]byte{make([]byte, 4)})
	require.ErrorIs(t, err, api.ErrNotSupported)
	_, err = io.Seek(0, api.SeekStart)
	require.ErrorIs(t, err, api.ErrNotSupported)
	require.Empty(t, hook.AllEntries())
}

func TestLogSink_CloneSharesSink(t *testing.T) {
	io, hook := newLogSink(t)

	st := &object.Storage{}
	clone, err := io.Clone(st)
	require.NoError(t, err)

	require.NoError(t, io.Close())
	_, err = clone.Write([]byte("from clone"))
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 1)
	require.NoError(t, clone.Close())
}

func TestLogSink_Attr(t *testing.T) {
	io, _ := newLogSink(t)
	defer io.Close()

	attr, err := io.AttrGet()
	require.NoError(t, err)
	require.Equal(t, api.NodeLogSink, attr.Kind)
}
