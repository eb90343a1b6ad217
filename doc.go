// Package baileys is a demonstration client for a multi-device messaging
// protocol. It owns the session lifecycle: it keeps a session alive across
// transient disconnects, refuses to resurrect a logged-out session, relays
// protocol events to a transcript sink, and persists short-lived artifacts
// (pairing codes) in a Redis-backed key-value cache.
//
// The protocol engine itself is out of scope. It is modelled as the
// [Socket] interface: a socket-like collaborator exposing an ordered event
// stream and a small set of request methods. A [SocketFactory] builds a
// fresh Socket for every connection attempt.
//
// # Architecture boundaries
//
// This package is the public surface. It exposes [Client], [Builder],
// [Config], the event model, and value types. Supporting infrastructure
// lives in subpackages: kvcache/ (cache client and codec), credstore/
// (file credential store), internal/retrycache and internal/transcript.
//
// # Ordering contract
//
// One logical task processes events sequentially, in delivery order.
// Suspending work (cache calls, socket requests, presence delays) blocks
// only the current event; the side effects of a reply are therefore always
// observed in choreography order. A failed per-event operation is logged
// and never halts the dispatch loop.
package baileys
