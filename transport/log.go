// File: transport/log.go
// Author: momentics <momentics@gmail.com>
//
// Write-only log sink handle. Every Emit produces exactly one
// structured record; there is no notion of a short transfer here.

package transport

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/momentics/ioplane/api"
)

// MaxRecord is the byte cap of a single log record; longer payloads
// are truncated, matching fixed-size kernel log entries.
const MaxRecord = 224

// Log is a handle to a structured record sink.
type Log struct {
	refs   refs
	tag    string
	logger *logrus.Logger
}

// NewLog creates a log handle emitting through a default text logger.
func NewLog(tag string) *Log {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false})
	return NewLogWithLogger(tag, logger)
}

// NewLogWithLogger creates a log handle emitting through the supplied
// logger. Tests install a logger with a capture hook here.
func NewLogWithLogger(tag string, logger *logrus.Logger) *Log {
	l := &Log{tag: tag, logger: logger}
	l.refs.init()
	return l
}

// Emit writes one record. Trailing newlines are stripped; the record
// is truncated to MaxRecord bytes.
func (l *Log) Emit(record []byte) error {
	if l.logger == nil {
		return api.ErrBadState
	}
	if len(record) > MaxRecord {
		record = record[:MaxRecord]
	}
	record = bytes.TrimRight(record, "\n")
	l.logger.WithField("tag", l.tag).Info(string(record))
	return nil
}

// Duplicate adds an owner of the sink.
func (l *Log) Duplicate() *Log {
	l.refs.acquire()
	return l
}

// Close releases ownership; the last owner detaches the logger.
func (l *Log) Close() error {
	if !l.refs.release() {
		return nil
	}
	l.logger = nil
	return nil
}
