// Package kvcache provides the Redis-backed key-value cache client used by
// the demonstration client to persist short-lived protocol artifacts such as
// pairing codes.
//
// The client owns exactly one logical connection. Command-level reconnection
// uses a capped backoff inside go-redis; once the retry budget of a command
// is exhausted the connection is marked Failed and stays Failed until a
// caller issues a fresh Connect. Operations attempted while the client is
// not Connected fail fast with [ErrNotConnected] instead of leaking
// transport errors.
//
// Values are serialized through a marker-prefixed JSON codec ([Encode],
// [Decode]) so plain strings and structured values can share the same
// keyspace without decode-time guessing.
package kvcache
