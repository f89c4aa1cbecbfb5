// Package pool
// Author: momentics <momentics@gmail.com>
//
// Staging buffer recycling for backends that must frame or gather
// payloads before touching the transport (datagram preludes, log
// records).
package pool
