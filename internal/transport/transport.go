// Package transport states the extension point spec.md §1 reserves for
// cross-host delivery: the core only routes messages across its own
// process's scheduler threads (see HostService.RemoteRoutes), and declares
// no implementation of the interface below. A deployment that needs actors
// to span machines provides its own RemoteTransport and wires it into a
// Plugin that intercepts sends whose target PostCode's host differs from
// the local one.
package transport

import (
	"github.com/infoton-run/actorhost/actor"
)

// RemoteTransport is the stated interface for a cross-host transport
// plugin. No package in this module implements it; user-defined payload
// serialization is likewise out of core scope (spec.md §1) and is this
// interface's problem, not the scheduler's.
type RemoteTransport interface {
	// Send delivers msg to a peer process reachable at target's network-host
	// part. Returning an error does not retry; the caller decides.
	Send(target actor.PostCode, msg actor.Message) error

	// Close releases any connection or resource the transport holds.
	Close() error
}
