// File: control/probes.go
// Author: momentics <momentics@gmail.com>
//
// Built-in probes exposing the dispatch-layer counters.

package control

import "github.com/momentics/ioplane/object"

// RegisterObjectProbes installs the standard dispatch-layer probe and
// publishes its counters into the metrics registry.
func RegisterObjectProbes(dp *DebugProbes, mr *MetricsRegistry) {
	dp.RegisterProbe("object.stats", func() any {
		return object.Snapshot()
	})
	if mr != nil {
		PublishObjectStats(mr)
	}
}

// PublishObjectStats copies the current dispatch counters into mr.
func PublishObjectStats(mr *MetricsRegistry) {
	s := object.Snapshot()
	mr.Set("object.placed", s.Placed)
	mr.Set("object.closes", s.Closes)
	mr.Set("object.bytes_read", s.BytesRead)
	mr.Set("object.bytes_written", s.BytesWritten)
	mr.Set("object.not_supported", s.NotSupported)
}
